package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

type JournalService interface {
	// Save upserts the date's entry and drops the cached summary of its week.
	Save(ctx context.Context, uid, date, content string) error
	// Get returns the date's content, or "" when there is none.
	Get(ctx context.Context, uid, date string) (string, error)
	WeekEntries(ctx context.Context, uid, weekID string) ([]models.JournalEntry, error)
	All(ctx context.Context, uid string) ([]models.JournalEntry, error)
}

// SummaryRefresher schedules a background rebuild of a week's summary.
type SummaryRefresher interface {
	Enqueue(ctx context.Context, uid, weekID string) error
}

type journalService struct {
	journal   repositories.JournalRepository
	summaries SummaryService
	refresh   SummaryRefresher // optional
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewJournalService(journal repositories.JournalRepository, summaries SummaryService, refresh SummaryRefresher, log logrus.FieldLogger, now func() time.Time) JournalService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &journalService{journal: journal, summaries: summaries, refresh: refresh, log: log, now: now}
}

func (s *journalService) Save(ctx context.Context, uid, date, content string) error {
	const op = "JournalService.Save"

	if uid == "" || date == "" {
		return utils.E(utils.CodeInvalidArgument, op, "uid and date are required", nil)
	}
	weekID, err := utils.WeekIDForDate(date)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "date must be YYYY-MM-DD", err)
	}

	if err := s.journal.SaveJournalEntry(ctx, uid, date, content, s.now().UTC()); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save journal entry", err)
	}
	if s.summaries != nil {
		s.summaries.Invalidate(ctx, uid, weekID)
	}
	if s.refresh != nil {
		if err := s.refresh.Enqueue(ctx, uid, weekID); err != nil {
			s.log.WithFields(logrus.Fields{
				"uid": uid, "week_id": weekID, "error": err,
			}).Warn("summary refresh enqueue failed")
		}
	}
	return nil
}

func (s *journalService) Get(ctx context.Context, uid, date string) (string, error) {
	const op = "JournalService.Get"

	if uid == "" || date == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "uid and date are required", nil)
	}
	e, err := s.journal.GetJournalEntry(ctx, uid, date)
	if errors.Is(err, utils.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to get journal entry", err)
	}
	return e.Content, nil
}

func (s *journalService) WeekEntries(ctx context.Context, uid, weekID string) ([]models.JournalEntry, error) {
	const op = "JournalService.WeekEntries"

	if uid == "" || weekID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "uid and weekId are required", nil)
	}
	from, to, err := utils.WeekDates(weekID)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "weekId must be YYYY-Www", err)
	}
	entries, err := s.journal.ListJournalEntries(ctx, uid, from, to)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list journal entries", err)
	}
	return entries, nil
}

func (s *journalService) All(ctx context.Context, uid string) ([]models.JournalEntry, error) {
	const op = "JournalService.All"

	if uid == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "uid is required", nil)
	}
	entries, err := s.journal.ListAllJournalEntries(ctx, uid)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list journal entries", err)
	}
	return entries, nil
}
