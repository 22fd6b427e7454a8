package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/journai/internal/metrics"
	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/providers/llm"
	"github.com/yoockh/journai/internal/utils"
)

const (
	MaxCompletionAttempts = 3

	// ElaborateFallback is returned by Elaborate when no attempt produced text.
	ElaborateFallback = "Tell me more about that. What stands out to you most as you look back on it?"

	emptyCompletionMessage = "The assistant was unable to generate a response. Please try again."
)

// ConversationService is the only caller of the completion provider.
type ConversationService interface {
	// Converse answers the last user message in history under the mode's
	// script. extra, when non-blank, is appended to the script.
	Converse(ctx context.Context, mode models.Mode, history []models.Message, extra string) (string, error)
	// Elaborate answers a journal draft with a follow-up question. It falls
	// back to ElaborateFallback instead of failing on blank output.
	Elaborate(ctx context.Context, content string) (string, error)
	// Complete sends a one-shot prompt and returns the first output accept
	// approves, trimmed.
	Complete(ctx context.Context, op, prompt string, accept func(string) bool) (string, error)
}

type conversationService struct {
	provider llm.Provider
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewConversationService(provider llm.Provider, log logrus.FieldLogger, m *metrics.Metrics) ConversationService {
	return &conversationService{provider: provider, log: log, metrics: m}
}

// ModeScript returns the system script for mode.
func ModeScript(mode models.Mode) (string, bool) {
	switch mode {
	case models.ModeVent:
		return llm.VentScript, true
	case models.ModeMentor:
		return llm.MentorScript, true
	}
	return "", false
}

// SanitizeHistory drops blank entries anywhere, then assistant entries
// before the first user entry.
func SanitizeHistory(history []models.Message) []models.Message {
	out := make([]models.Message, 0, len(history))
	for _, m := range history {
		if m.IsBlank() {
			continue
		}
		if len(out) == 0 && m.Role != models.RoleUser {
			continue
		}
		out = append(out, m)
	}
	return out
}

// SplitForCompletion sanitizes history and separates the trailing user
// message from the turns before it.
func SplitForCompletion(history []models.Message) ([]llm.Turn, string, error) {
	clean := SanitizeHistory(history)
	if len(clean) == 0 || clean[len(clean)-1].Role != models.RoleUser {
		return nil, "", utils.ErrInvalidHistory
	}

	last := clean[len(clean)-1]
	turns := make([]llm.Turn, 0, len(clean)-1)
	for _, m := range clean[:len(clean)-1] {
		role := llm.RoleUser
		if m.Role == models.RoleAssistant {
			role = llm.RoleModel
		}
		turns = append(turns, llm.Turn{Role: role, Text: m.Content})
	}
	return turns, last.Content, nil
}

func nonBlank(s string) bool { return strings.TrimSpace(s) != "" }

func (s *conversationService) Converse(ctx context.Context, mode models.Mode, history []models.Message, extra string) (string, error) {
	const op = "ConversationService.Converse"

	script, ok := ModeScript(mode)
	if !ok {
		return "", utils.E(utils.CodeInvalidArgument, op, "mode must be vent or mentor", nil)
	}

	turns, message, err := SplitForCompletion(history)
	if err != nil {
		return "", utils.E(utils.CodeInvalidArgument, op, "last message must be from user", err)
	}

	system := llm.SystemInstruction(script, extra)
	reply, err := s.attempt(ctx, string(mode), func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, system, turns, message)
	}, nonBlank)
	if err != nil {
		return "", s.completionError(op, string(mode), err)
	}
	return strings.TrimSpace(reply), nil
}

func (s *conversationService) Elaborate(ctx context.Context, content string) (string, error) {
	const op = "ConversationService.Elaborate"

	if strings.TrimSpace(content) == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "content is required", nil)
	}

	prompt := llm.ElaboratePrompt(content)
	reply, err := s.attempt(ctx, "elaborate", func(ctx context.Context) (string, error) {
		return s.provider.GenerateOnce(ctx, prompt)
	}, nonBlank)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", utils.E(utils.CodeTimeout, op, "request cancelled", ctxErr)
		}
		s.log.WithFields(logrus.Fields{"operation": "elaborate", "error": err}).Warn("elaborate exhausted attempts, using fallback")
		s.metrics.Outcome("elaborate", "fallback")
		return ElaborateFallback, nil
	}
	return strings.TrimSpace(reply), nil
}

func (s *conversationService) Complete(ctx context.Context, op, prompt string, accept func(string) bool) (string, error) {
	if accept == nil {
		accept = nonBlank
	}
	reply, err := s.attempt(ctx, op, func(ctx context.Context) (string, error) {
		return s.provider.GenerateOnce(ctx, prompt)
	}, accept)
	if err != nil {
		return "", s.completionError("ConversationService.Complete", op, err)
	}
	return strings.TrimSpace(reply), nil
}

func (s *conversationService) attempt(ctx context.Context, label string, call func(context.Context) (string, error), accept func(string) bool) (string, error) {
	out, err := utils.Attempt(ctx, MaxCompletionAttempts, func(ctx context.Context, n int) (string, error) {
		text, err := call(ctx)
		entry := s.log.WithFields(logrus.Fields{"operation": label, "attempt": n})
		switch {
		case err != nil:
			s.metrics.Attempt(label, "error")
			entry.WithError(err).Warn("completion attempt failed")
		case !accept(text):
			s.metrics.Attempt(label, "rejected")
			entry.Warn("completion attempt rejected")
		default:
			s.metrics.Attempt(label, "ok")
		}
		return text, err
	}, accept)
	if err == nil {
		s.metrics.Outcome(label, "accepted")
	}
	return out, err
}

// completionError maps a failed attempt loop onto the error taxonomy.
// Exhaustion where the final attempt returned blank text is EmptyCompletion.
func (s *conversationService) completionError(op, label string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return utils.E(utils.CodeTimeout, op, "request cancelled", err)
	}
	s.metrics.Outcome(label, "exhausted")

	var ex *utils.ExhaustedError
	if errors.As(err, &ex) && ex.Last != nil {
		return utils.E(utils.CodeInternal, op, "completion service failed", err)
	}
	return utils.E(utils.CodeEmptyCompletion, op, emptyCompletionMessage, errors.Join(utils.ErrEmptyCompletion, err))
}
