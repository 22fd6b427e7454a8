package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories/memory"
)

var (
	testNow  = time.Date(2025, 11, 5, 14, 0, 0, 0, time.UTC) // Wednesday of 2025-W45
	testWeek = "2025-W45"

	errStoreDown = errors.New("store down")
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func nullLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// flakyStore fails selected reads and passes everything else to the memory store.
type flakyStore struct {
	*memory.Store
	failUser    bool
	failWeek    bool
	failJournal bool
	failDraft   bool
}

func (f *flakyStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	if f.failUser {
		return nil, errStoreDown
	}
	return f.Store.GetUser(ctx, uid)
}

func (f *flakyStore) GetWeek(ctx context.Context, uid, weekID string) (*models.Week, error) {
	if f.failWeek {
		return nil, errStoreDown
	}
	return f.Store.GetWeek(ctx, uid, weekID)
}

func (f *flakyStore) ListVentSessions(ctx context.Context, uid, weekID string) ([]models.VentSession, error) {
	if f.failWeek {
		return nil, errStoreDown
	}
	return f.Store.ListVentSessions(ctx, uid, weekID)
}

func (f *flakyStore) ListJournalEntries(ctx context.Context, uid, from, to string) ([]models.JournalEntry, error) {
	if f.failJournal {
		return nil, errStoreDown
	}
	return f.Store.ListJournalEntries(ctx, uid, from, to)
}

func (f *flakyStore) DeleteDraft(ctx context.Context, uid, weekID, entryID string) error {
	if f.failDraft {
		return errStoreDown
	}
	return f.Store.DeleteDraft(ctx, uid, weekID, entryID)
}

// seedVents stores n distinct vent sessions in testWeek.
func seedVents(s *memory.Store, uid string, n int, at time.Time) {
	for i := 0; i < n; i++ {
		start := at.Add(time.Duration(i) * time.Minute)
		_, _ = s.SaveVentSession(context.Background(), uid, testWeek, &models.VentSession{
			ID:              start.UTC().Format("2006-01-02_150405"),
			StartTime:       start.UnixMilli(),
			DurationMinutes: 30,
			Messages:        []models.Message{{Role: models.RoleUser, Content: "hi"}},
		}, start)
	}
}

func userMsg(s string) models.Message { return models.Message{Role: models.RoleUser, Content: s} }
func assistantMsg(s string) models.Message {
	return models.Message{Role: models.RoleAssistant, Content: s}
}
