package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

type ChatRequest struct {
	Message string           `json:"message"`
	Mode    models.Mode      `json:"mode"`
	History []models.Message `json:"history"`
	UID     string           `json:"uid"`
	WeekID  string           `json:"weekId"`
}

// ChatService routes one exchange: gate for mentor, mentor context, then the orchestrator.
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

type chatService struct {
	gate    GateService
	conv    ConversationService
	journal repositories.JournalRepository
	log     logrus.FieldLogger
}

func NewChatService(gate GateService, conv ConversationService, journal repositories.JournalRepository, log logrus.FieldLogger) ChatService {
	return &chatService{gate: gate, conv: conv, journal: journal, log: log}
}

func (s *chatService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	const op = "ChatService.Chat"

	if strings.TrimSpace(req.Message) == "" || req.Mode == "" || req.UID == "" || req.WeekID == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "Missing required fields: message, mode, uid, weekId", nil)
	}
	if !req.Mode.Valid() {
		return "", utils.E(utils.CodeInvalidArgument, op, "mode must be vent or mentor", nil)
	}
	if _, _, err := utils.ParseWeekID(req.WeekID); err != nil {
		return "", utils.E(utils.CodeInvalidArgument, op, "weekId must be YYYY-Www", err)
	}

	var extra string
	if req.Mode == models.ModeMentor {
		av := s.gate.MentorAvailability(ctx, req.UID, req.WeekID)
		if !av.Available {
			return "", utils.E(utils.CodeForbidden, op, "Mentor sessions require 5 completed vent sessions or admin access", nil)
		}
		extra = s.mentorContext(ctx, req.UID, req.WeekID)
	}

	history := make([]models.Message, 0, len(req.History)+1)
	history = append(history, req.History...)
	history = append(history, models.Message{Role: models.RoleUser, Content: req.Message})

	return s.conv.Converse(ctx, req.Mode, history, extra)
}

// mentorContext lists the week's journal entries for the mentor script.
// Read failures are logged and the chat continues without context.
func (s *chatService) mentorContext(ctx context.Context, uid, weekID string) string {
	from, to, err := utils.WeekDates(weekID)
	if err != nil {
		return ""
	}
	entries, err := s.journal.ListJournalEntries(ctx, uid, from, to)
	if err != nil {
		s.log.WithFields(logrus.Fields{"uid": uid, "week_id": weekID, "error": err}).Error("mentor context: journal read failed")
		return ""
	}
	block := FormatEntries(entries)
	if block == "" {
		return ""
	}
	return "The user's journal entries this week:\n" + block
}
