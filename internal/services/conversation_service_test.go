package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/journai/internal/metrics"
	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/providers/llm"
	"github.com/yoockh/journai/internal/utils"
)

func newConversation(t *testing.T, replies ...llm.Reply) (ConversationService, *llm.Mock, *metrics.Metrics) {
	t.Helper()
	mock := llm.NewMock(replies...)
	log, _ := nullLogger()
	m := metrics.New(prometheus.NewRegistry())
	return NewConversationService(mock, log, m), mock, m
}

func TestSanitizeHistory(t *testing.T) {
	in := []models.Message{
		assistantMsg("welcome"),
		userMsg("  "),
		assistantMsg("anything on your mind?"),
		userMsg("work"),
		assistantMsg(""),
		assistantMsg("tell me more"),
		userMsg("deadlines"),
	}
	got := SanitizeHistory(in)
	require.Len(t, got, 3)
	assert.Equal(t, "work", got[0].Content)
	assert.Equal(t, "tell me more", got[1].Content)
	assert.Equal(t, "deadlines", got[2].Content)
}

func TestSplitForCompletion(t *testing.T) {
	turns, msg, err := SplitForCompletion([]models.Message{assistantMsg("x"), assistantMsg("y"), userMsg("z")})
	require.NoError(t, err)
	assert.Empty(t, turns)
	assert.Equal(t, "z", msg)

	turns, msg, err = SplitForCompletion([]models.Message{userMsg("a"), assistantMsg("b"), userMsg("c")})
	require.NoError(t, err)
	assert.Equal(t, []llm.Turn{{Role: llm.RoleUser, Text: "a"}, {Role: llm.RoleModel, Text: "b"}}, turns)
	assert.Equal(t, "c", msg)

	_, _, err = SplitForCompletion([]models.Message{userMsg("a"), assistantMsg("b")})
	assert.ErrorIs(t, err, utils.ErrInvalidHistory)

	_, _, err = SplitForCompletion([]models.Message{assistantMsg("a"), userMsg(" ")})
	assert.ErrorIs(t, err, utils.ErrInvalidHistory)

	_, _, err = SplitForCompletion(nil)
	assert.ErrorIs(t, err, utils.ErrInvalidHistory)
}

func TestConverse_RetriesBlankOutput(t *testing.T) {
	conv, mock, m := newConversation(t,
		llm.Reply{Text: ""},
		llm.Reply{Text: "   \n"},
		llm.Reply{Text: "  What happened next?  "},
	)

	reply, err := conv.Converse(context.Background(), models.ModeVent, []models.Message{userMsg("rough day")}, "")
	require.NoError(t, err)
	assert.Equal(t, "What happened next?", reply)

	calls := mock.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, llm.VentScript, c.System)
		assert.Equal(t, "rough day", c.Message)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CompletionAttempts.WithLabelValues("vent", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompletionAttempts.WithLabelValues("vent", "ok")))
}

func TestConverse_EmptyCompletionAfterThreeAttempts(t *testing.T) {
	conv, mock, _ := newConversation(t, llm.Reply{}, llm.Reply{}, llm.Reply{}, llm.Reply{Text: "too late"})

	_, err := conv.Converse(context.Background(), models.ModeVent, []models.Message{userMsg("hi")}, "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeEmptyCompletion))
	assert.ErrorIs(t, err, utils.ErrEmptyCompletion)
	assert.Equal(t, 500, utils.HTTPStatus(err))
	assert.Len(t, mock.Calls(), MaxCompletionAttempts)
}

func TestConverse_ProviderErrorsAreRetried(t *testing.T) {
	boom := errors.New("upstream 503")

	conv, _, _ := newConversation(t, llm.Reply{Err: boom}, llm.Reply{Text: "ok then"})
	reply, err := conv.Converse(context.Background(), models.ModeVent, []models.Message{userMsg("hi")}, "")
	require.NoError(t, err)
	assert.Equal(t, "ok then", reply)

	conv, _, _ = newConversation(t, llm.Reply{Err: boom}, llm.Reply{Err: boom}, llm.Reply{Err: boom})
	_, err = conv.Converse(context.Background(), models.ModeVent, []models.Message{userMsg("hi")}, "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
	assert.ErrorIs(t, err, boom)
}

func TestConverse_SanitizedHistoryReachesProvider(t *testing.T) {
	conv, mock, _ := newConversation(t, llm.Reply{Text: "I hear you."})

	_, err := conv.Converse(context.Background(), models.ModeVent,
		[]models.Message{assistantMsg("x"), assistantMsg("y"), userMsg("z")}, "")
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].History)
	assert.Equal(t, "z", calls[0].Message)
}

func TestConverse_InvalidHistory(t *testing.T) {
	conv, mock, _ := newConversation(t)

	_, err := conv.Converse(context.Background(), models.ModeVent, []models.Message{userMsg("a"), assistantMsg("b")}, "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.ErrorIs(t, err, utils.ErrInvalidHistory)
	assert.Empty(t, mock.Calls(), "nothing is sent for an invalid history")
}

func TestConverse_InvalidMode(t *testing.T) {
	conv, _, _ := newConversation(t)
	_, err := conv.Converse(context.Background(), "journal", []models.Message{userMsg("a")}, "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestConverse_MentorContextAppended(t *testing.T) {
	conv, mock, _ := newConversation(t, llm.Reply{Text: "Let's look at your week."})

	_, err := conv.Converse(context.Background(), models.ModeMentor, []models.Message{userMsg("how was my week?")}, "2025-11-03: tired")
	require.NoError(t, err)

	system := mock.Calls()[0].System
	assert.True(t, strings.HasPrefix(system, llm.MentorScript))
	assert.True(t, strings.HasSuffix(system, llm.ContextDelimiter+"2025-11-03: tired"))
}

func TestConverse_Cancelled(t *testing.T) {
	conv, _, _ := newConversation(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.Converse(ctx, models.ModeVent, []models.Message{userMsg("hi")}, "")
	assert.True(t, utils.IsCode(err, utils.CodeTimeout))
}

func TestElaborate(t *testing.T) {
	conv, mock, _ := newConversation(t, llm.Reply{Text: " What made the meeting feel that way? "})

	reply, err := conv.Elaborate(context.Background(), "Long meeting today.")
	require.NoError(t, err)
	assert.Equal(t, "What made the meeting feel that way?", reply)
	assert.Contains(t, mock.Calls()[0].Prompt, "Long meeting today.")
}

func TestElaborate_FallsBackWhenExhausted(t *testing.T) {
	conv, _, m := newConversation(t, llm.Reply{}, llm.Reply{Err: errors.New("boom")}, llm.Reply{Text: " "})

	reply, err := conv.Elaborate(context.Background(), "Long meeting today.")
	require.NoError(t, err)
	assert.Equal(t, ElaborateFallback, reply)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompletionOutcomes.WithLabelValues("elaborate", "fallback")))
}

func TestElaborate_RequiresContent(t *testing.T) {
	conv, _, _ := newConversation(t)
	_, err := conv.Elaborate(context.Background(), "  ")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
