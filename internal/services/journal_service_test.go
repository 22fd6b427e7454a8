package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/journai/internal/cache"
	"github.com/yoockh/journai/internal/providers/llm"
	"github.com/yoockh/journai/internal/repositories/memory"
	"github.com/yoockh/journai/internal/utils"
)

type recordingRefresher struct {
	weeks []string
	err   error
}

func (r *recordingRefresher) Enqueue(_ context.Context, uid, weekID string) error {
	r.weeks = append(r.weeks, uid+"/"+weekID)
	return r.err
}

func TestJournalService_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewJournalService(memory.NewStore(), nil, nil, nil, fixedClock(testNow))

	content, err := svc.Get(ctx, "u1", "2025-11-05")
	require.NoError(t, err)
	assert.Equal(t, "", content)

	require.NoError(t, svc.Save(ctx, "u1", "2025-11-05", "first"))
	require.NoError(t, svc.Save(ctx, "u1", "2025-11-05", "second"))
	content, err = svc.Get(ctx, "u1", "2025-11-05")
	require.NoError(t, err)
	assert.Equal(t, "second", content)

	err = svc.Save(ctx, "u1", "11/05/2025", "x")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	err = svc.Save(ctx, "", "2025-11-05", "x")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestJournalService_SaveInvalidatesWeekSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mock := llm.NewMock(
		llm.Reply{Text: `{"noticed":["before"],"focus":[]}`},
		llm.Reply{Text: `{"noticed":["after"],"focus":[]}`},
	)
	log, hook := nullLogger()
	summaries := NewSummaryService(NewConversationService(mock, log, nil), store, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, log, nil)
	refresh := &recordingRefresher{err: errors.New("queue down")}
	svc := NewJournalService(store, summaries, refresh, log, fixedClock(testNow))

	require.NoError(t, svc.Save(ctx, "u1", "2025-11-03", "monday"))
	got, err := summaries.WeeklySummary(ctx, "u1", testWeek)
	require.NoError(t, err)
	assert.Equal(t, []string{"before"}, got.Noticed)

	require.NoError(t, svc.Save(ctx, "u1", "2025-11-09", "sunday"), "refresh failures do not fail the save")
	got, err = summaries.WeeklySummary(ctx, "u1", testWeek)
	require.NoError(t, err)
	assert.Equal(t, []string{"after"}, got.Noticed)

	assert.Equal(t, []string{"u1/2025-W45", "u1/2025-W45"}, refresh.weeks)

	var warned int
	for _, e := range hook.AllEntries() {
		if e.Message == "summary refresh enqueue failed" {
			warned++
			assert.Equal(t, logrus.WarnLevel, e.Level)
			assert.Equal(t, "2025-W45", e.Data["week_id"])
		}
	}
	assert.Equal(t, 2, warned, "every failed enqueue is logged")
}

func TestJournalService_Listings(t *testing.T) {
	ctx := context.Background()
	svc := NewJournalService(memory.NewStore(), nil, nil, nil, fixedClock(testNow))

	for _, d := range []string{"2025-11-02", "2025-11-04", "2025-11-03", "2025-11-10"} {
		require.NoError(t, svc.Save(ctx, "u1", d, "entry"))
	}

	week, err := svc.WeekEntries(ctx, "u1", testWeek)
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, "2025-11-03", week[0].Date)
	assert.Equal(t, "2025-11-04", week[1].Date)

	all, err := svc.All(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2025-11-10", all[0].Date)

	_, err = svc.WeekEntries(ctx, "u1", "bad")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	failing := NewJournalService(&flakyStore{Store: memory.NewStore(), failJournal: true}, nil, nil, nil, fixedClock(testNow))
	_, err = failing.WeekEntries(ctx, "u1", testWeek)
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
}
