package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories/memory"
	"github.com/yoockh/journai/internal/session"
	"github.com/yoockh/journai/internal/utils"
)

func newSessions(store *memory.Store, now time.Time) SessionService {
	log, _ := nullLogger()
	gate := NewGateService(store, store, log, nil, fixedClock(now))
	return NewSessionService(store, gate, fixedClock(now))
}

func TestSessionService_StartVent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newSessions(store, testNow)

	res, err := svc.Start(ctx, StartRequest{UID: "u1", Mode: models.ModeVent})
	require.NoError(t, err)
	assert.Equal(t, "2025-11-05_140000", res.EntryID)
	assert.Equal(t, testWeek, res.WeekID)
	assert.Equal(t, "2025-11-05", res.Date)
	assert.Equal(t, session.DefaultVentMinutes, res.DurationMinutes)
	assert.Equal(t, testNow.UnixMilli(), res.StartTime)

	view, err := svc.GetDraft(ctx, "u1", testWeek, res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, models.ModeVent, view.Draft.Mode)
	assert.Empty(t, view.Draft.Messages)
	assert.InDelta(t, 30, view.TimeRemaining, 1e-9)
	assert.False(t, view.Expired)
}

func TestSessionService_StartVentDuringCooldown(t *testing.T) {
	store := memory.NewStore()
	seedVents(store, "u1", 1, testNow.Add(-90*time.Minute))
	svc := newSessions(store, testNow)

	res, err := svc.Start(context.Background(), StartRequest{UID: "u1", Mode: models.ModeVent})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	require.NotNil(t, res)
	require.NotNil(t, res.Cooldown)
	assert.False(t, res.Cooldown.CanStart)
	assert.InDelta(t, 10.5, *res.Cooldown.HoursRemaining, 1e-9)
	assert.Empty(t, res.EntryID)
}

func TestSessionService_StartMentorGated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newSessions(store, testNow)

	res, err := svc.Start(ctx, StartRequest{UID: "u1", Mode: models.ModeMentor})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	require.NotNil(t, res.Availability)
	assert.Equal(t, "Need 5 more vent sessions", res.Availability.Reason)

	seedVents(store, "u1", 5, testNow.Add(-72*time.Hour))
	res, err = svc.Start(ctx, StartRequest{UID: "u1", Mode: models.ModeMentor, DurationMinutes: 45})
	require.NoError(t, err)
	assert.Equal(t, models.MentorSlot, res.EntryID)
	assert.Equal(t, 45, res.DurationMinutes)
}

func TestSessionService_StartValidation(t *testing.T) {
	svc := newSessions(memory.NewStore(), testNow)
	for _, req := range []StartRequest{
		{Mode: models.ModeVent},
		{UID: "u1"},
		{UID: "u1", Mode: "journal"},
		{UID: "u1", Mode: models.ModeVent, DurationMinutes: -5},
	} {
		_, err := svc.Start(context.Background(), req)
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "%+v", req)
	}
}

func TestSessionService_SaveDraftAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newSessions(store, testNow)

	res, err := svc.Start(ctx, StartRequest{UID: "u1", Mode: models.ModeVent})
	require.NoError(t, err)

	first := []models.Message{userMsg("hello"), assistantMsg("hi, what's up?")}
	view, err := svc.SaveDraft(ctx, "u1", testWeek, res.EntryID, models.Draft{Messages: first})
	require.NoError(t, err)
	assert.Len(t, view.Draft.Messages, 2)
	assert.Equal(t, res.StartTime, view.Draft.StartTime, "start time survives restore")

	more := append(append([]models.Message{}, first...), userMsg("work"))
	view, err = svc.SaveDraft(ctx, "u1", testWeek, res.EntryID, models.Draft{Mode: models.ModeVent, Messages: more})
	require.NoError(t, err)
	require.Len(t, view.Draft.Messages, 3)
	assert.Equal(t, "work", view.Draft.Messages[2].Content)

	t.Run("removing messages conflicts", func(t *testing.T) {
		_, err := svc.SaveDraft(ctx, "u1", testWeek, res.EntryID, models.Draft{Messages: first})
		assert.True(t, utils.IsCode(err, utils.CodeConflict))
	})
	t.Run("rewriting messages conflicts", func(t *testing.T) {
		edited := []models.Message{userMsg("HELLO"), assistantMsg("hi, what's up?"), userMsg("work")}
		_, err := svc.SaveDraft(ctx, "u1", testWeek, res.EntryID, models.Draft{Messages: edited})
		assert.True(t, utils.IsCode(err, utils.CodeConflict))
	})
	t.Run("changing mode conflicts", func(t *testing.T) {
		_, err := svc.SaveDraft(ctx, "u1", testWeek, res.EntryID, models.Draft{Mode: models.ModeMentor, Messages: more})
		assert.True(t, utils.IsCode(err, utils.CodeConflict))
	})

	stored, err := store.GetDraft(ctx, "u1", testWeek, res.EntryID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 3, "rejected writes leave the draft untouched")
}

func TestSessionService_SaveDraftWithoutStart(t *testing.T) {
	ctx := context.Background()
	svc := newSessions(memory.NewStore(), testNow)

	_, err := svc.SaveDraft(ctx, "u1", testWeek, "e1", models.Draft{Messages: []models.Message{userMsg("a")}})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	started := testNow.Add(-40 * time.Minute)
	view, err := svc.SaveDraft(ctx, "u1", testWeek, "e1", models.Draft{
		Mode: models.ModeVent, StartTime: started.UnixMilli(), DurationMinutes: 30,
		Messages: []models.Message{userMsg("a")},
	})
	require.NoError(t, err)
	assert.True(t, view.Expired)
	assert.Zero(t, view.TimeRemaining)
}

func TestSessionService_DraftLookup(t *testing.T) {
	ctx := context.Background()
	svc := newSessions(memory.NewStore(), testNow)

	_, err := svc.GetDraft(ctx, "u1", testWeek, "missing")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = svc.GetDraft(ctx, "u1", "", "missing")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	res, err := svc.Start(ctx, StartRequest{UID: "u1", Mode: models.ModeVent})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDraft(ctx, "u1", testWeek, res.EntryID))
	_, err = svc.GetDraft(ctx, "u1", testWeek, res.EntryID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
