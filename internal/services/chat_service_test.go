package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/providers/llm"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/repositories/memory"
	"github.com/yoockh/journai/internal/utils"
)

type chatStore interface {
	repositories.UserRepository
	repositories.WeekRepository
	repositories.JournalRepository
}

func newChat(store chatStore, replies ...llm.Reply) (ChatService, *llm.Mock) {
	mock := llm.NewMock(replies...)
	log, _ := nullLogger()
	gate := NewGateService(store, store, log, nil, fixedClock(testNow))
	conv := NewConversationService(mock, log, nil)
	return NewChatService(gate, conv, store, log), mock
}

func TestChat_Vent(t *testing.T) {
	svc, mock := newChat(memory.NewStore(), llm.Reply{Text: "That sounds heavy."})

	reply, err := svc.Chat(context.Background(), ChatRequest{
		Message: "I'm exhausted",
		Mode:    models.ModeVent,
		History: []models.Message{assistantMsg("Welcome back."), userMsg("hi"), assistantMsg("Hello.")},
		UID:     "u1",
		WeekID:  testWeek,
	})
	require.NoError(t, err)
	assert.Equal(t, "That sounds heavy.", reply)

	call := mock.Calls()[0]
	assert.Equal(t, llm.VentScript, call.System)
	assert.Equal(t, "I'm exhausted", call.Message)
	assert.Equal(t, []llm.Turn{{Role: llm.RoleUser, Text: "hi"}, {Role: llm.RoleModel, Text: "Hello."}}, call.History)
}

func TestChat_MentorDeniedBelowThreshold(t *testing.T) {
	store := memory.NewStore()
	seedVents(store, "u1", 4, testNow.Add(-72*time.Hour))
	svc, mock := newChat(store)

	_, err := svc.Chat(context.Background(), ChatRequest{Message: "hi", Mode: models.ModeMentor, UID: "u1", WeekID: testWeek})
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	assert.Empty(t, mock.Calls())
}

func TestChat_MentorGetsJournalContext(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedVents(store, "u1", 5, testNow.Add(-72*time.Hour))
	require.NoError(t, store.SaveJournalEntry(ctx, "u1", "2025-11-03", "presentation nerves", testNow))
	require.NoError(t, store.SaveJournalEntry(ctx, "u1", "2025-11-04", "went well", testNow))
	svc, mock := newChat(store, llm.Reply{Text: "You pushed through."})

	reply, err := svc.Chat(ctx, ChatRequest{Message: "How did I do?", Mode: models.ModeMentor, UID: "u1", WeekID: testWeek})
	require.NoError(t, err)
	assert.Equal(t, "You pushed through.", reply)

	system := mock.Calls()[0].System
	assert.True(t, strings.HasPrefix(system, llm.MentorScript+llm.ContextDelimiter))
	assert.Contains(t, system, "The user's journal entries this week:\n2025-11-03: presentation nerves\n2025-11-04: went well")
}

func TestChat_MentorContextFailureIsNotFatal(t *testing.T) {
	mem := memory.NewStore()
	mem.PutUser(models.User{UID: "u1", Admin: true})
	store := &flakyStore{Store: mem, failJournal: true}
	svc, mock := newChat(store, llm.Reply{Text: "Let's talk."})

	reply, err := svc.Chat(context.Background(), ChatRequest{Message: "hi", Mode: models.ModeMentor, UID: "u1", WeekID: testWeek})
	require.NoError(t, err)
	assert.Equal(t, "Let's talk.", reply)
	assert.Equal(t, llm.MentorScript, mock.Calls()[0].System)
}

func TestChat_Validation(t *testing.T) {
	svc, _ := newChat(memory.NewStore())
	for _, req := range []ChatRequest{
		{Mode: models.ModeVent, UID: "u1", WeekID: testWeek},
		{Message: "  ", Mode: models.ModeVent, UID: "u1", WeekID: testWeek},
		{Message: "hi", UID: "u1", WeekID: testWeek},
		{Message: "hi", Mode: "journal", UID: "u1", WeekID: testWeek},
		{Message: "hi", Mode: models.ModeVent, WeekID: testWeek},
		{Message: "hi", Mode: models.ModeVent, UID: "u1", WeekID: "W45"},
	} {
		_, err := svc.Chat(context.Background(), req)
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "%+v", req)
	}
}
