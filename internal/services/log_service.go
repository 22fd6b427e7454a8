package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yoockh/journai/internal/metrics"
	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

const (
	LogTypeVent = "vent"
	LogTypeAll  = "all"
)

// SaveLogRequest finalizes a session. StartTime and DurationMinutes are
// required for vent sessions only.
type SaveLogRequest struct {
	UID             string           `json:"uid"`
	WeekID          string           `json:"weekId"`
	EntryID         string           `json:"entryId"`
	Mode            models.Mode      `json:"mode"`
	Messages        []models.Message `json:"messages"`
	Summary         *string          `json:"summary,omitempty"`
	StartTime       int64            `json:"startTime,omitempty"`
	DurationMinutes int              `json:"durationMinutes,omitempty"`
}

type LogService interface {
	// Save persists the finished session and removes its draft. created is
	// true the first time a vent session id is written.
	Save(ctx context.Context, req SaveLogRequest) (created bool, err error)
	List(ctx context.Context, uid, weekID, typ string) ([]models.ChatEntry, error)
	MentorEntries(ctx context.Context, uid, weekID string) ([]models.ChatEntry, error)
}

type logService struct {
	weeks   repositories.WeekRepository
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewLogService(weeks repositories.WeekRepository, log logrus.FieldLogger, m *metrics.Metrics, now func() time.Time) LogService {
	if now == nil {
		now = time.Now
	}
	return &logService{weeks: weeks, log: log, metrics: m, now: now}
}

func (s *logService) Save(ctx context.Context, req SaveLogRequest) (bool, error) {
	const op = "LogService.Save"

	if req.UID == "" || req.WeekID == "" || req.EntryID == "" || req.Mode == "" || req.Messages == nil {
		return false, utils.E(utils.CodeInvalidArgument, op, "Missing required fields", nil)
	}
	if !req.Mode.Valid() {
		return false, utils.E(utils.CodeInvalidArgument, op, "mode must be vent or mentor", nil)
	}
	if _, _, err := utils.ParseWeekID(req.WeekID); err != nil {
		return false, utils.E(utils.CodeInvalidArgument, op, "weekId must be YYYY-Www", err)
	}
	if err := models.ValidateMessages(req.Messages); err != nil {
		return false, utils.E(utils.CodeInvalidArgument, op, "invalid messages", err)
	}

	now := s.now().UTC()
	var created bool

	switch req.Mode {
	case models.ModeVent:
		if req.StartTime <= 0 || req.DurationMinutes <= 0 {
			return false, utils.E(utils.CodeInvalidArgument, op, "Missing required fields for vent session: startTime, durationMinutes", nil)
		}
		var err error
		created, err = s.weeks.SaveVentSession(ctx, req.UID, req.WeekID, &models.VentSession{
			ID:              req.EntryID,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			Messages:        req.Messages,
		}, now)
		if err != nil {
			return false, utils.E(utils.CodeInternal, op, "Failed to save vent session", err)
		}
		if created {
			s.metrics.VentSessionCreated()
		}

	case models.ModeMentor:
		err := s.weeks.SaveMentorEntry(ctx, req.UID, req.WeekID, &models.MentorEntry{
			UID:       req.UID,
			WeekID:    req.WeekID,
			Messages:  req.Messages,
			Summary:   req.Summary,
			Timestamp: now.UnixMilli(),
		}, now)
		if err != nil {
			return false, utils.E(utils.CodeInternal, op, "Failed to save mentor entry", err)
		}
	}

	if err := s.weeks.DeleteDraft(ctx, req.UID, req.WeekID, req.EntryID); err != nil {
		s.log.WithFields(logrus.Fields{
			"uid": req.UID, "week_id": req.WeekID, "entry_id": req.EntryID, "error": err,
		}).Warn("draft cleanup after save failed")
	}
	return created, nil
}

func ventEntries(sessions []models.VentSession) []models.ChatEntry {
	out := make([]models.ChatEntry, 0, len(sessions))
	for _, vs := range sessions {
		out = append(out, models.ChatEntry{
			ID:        vs.ID,
			Mode:      models.ModeVent,
			Timestamp: vs.StartTime,
			Messages:  vs.Messages,
		})
	}
	return out
}

func mentorEntry(e *models.MentorEntry) models.ChatEntry {
	return models.ChatEntry{
		ID:        models.MentorSlot,
		Mode:      models.ModeMentor,
		Timestamp: e.Timestamp,
		Messages:  e.Messages,
		Summary:   e.Summary,
	}
}

func (s *logService) List(ctx context.Context, uid, weekID, typ string) ([]models.ChatEntry, error) {
	const op = "LogService.List"

	if uid == "" || weekID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required parameters: uid, weekId", nil)
	}
	if typ == "" {
		typ = LogTypeVent
	}
	if typ != LogTypeVent && typ != LogTypeAll {
		return nil, utils.E(utils.CodeInvalidArgument, op, "type must be vent or all", nil)
	}

	if typ == LogTypeVent {
		sessions, err := s.weeks.ListVentSessions(ctx, uid, weekID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to list vent sessions", err)
		}
		return ventEntries(sessions), nil
	}

	var (
		sessions []models.VentSession
		mentor   *models.MentorEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.weeks.ListVentSessions(gctx, uid, weekID)
		return err
	})
	g.Go(func() error {
		e, err := s.weeks.GetMentorEntry(gctx, uid, weekID)
		if errors.Is(err, utils.ErrNotFound) {
			return nil
		}
		mentor = e
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list entries", err)
	}

	out := ventEntries(sessions)
	if mentor != nil {
		out = append(out, mentorEntry(mentor))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *logService) MentorEntries(ctx context.Context, uid, weekID string) ([]models.ChatEntry, error) {
	const op = "LogService.MentorEntries"

	if uid == "" || weekID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing uid or weekId", nil)
	}
	e, err := s.weeks.GetMentorEntry(ctx, uid, weekID)
	if errors.Is(err, utils.ErrNotFound) {
		return []models.ChatEntry{}, nil
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "Failed to fetch mentor sessions", err)
	}
	return []models.ChatEntry{mentorEntry(e)}, nil
}
