package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/session"
	"github.com/yoockh/journai/internal/utils"
)

type StartRequest struct {
	UID             string      `json:"uid"`
	Mode            models.Mode `json:"mode"`
	DurationMinutes int         `json:"durationMinutes,omitempty"`
}

// StartResult carries the gate outcome even when the start is denied.
type StartResult struct {
	EntryID         string      `json:"entryId,omitempty"`
	WeekID          string      `json:"weekId"`
	Date            string      `json:"date,omitempty"`
	Mode            models.Mode `json:"mode"`
	StartTime       int64       `json:"startTime,omitempty"`
	DurationMinutes int         `json:"durationMinutes,omitempty"`

	Cooldown     *Cooldown           `json:"-"`
	Availability *MentorAvailability `json:"-"`
}

type DraftView struct {
	Draft         models.Draft `json:"draft"`
	TimeRemaining float64      `json:"timeRemaining"`
	Expired       bool         `json:"expired"`
}

type SessionService interface {
	// Start checks the mode's gate, then opens a session and stores its first draft.
	Start(ctx context.Context, req StartRequest) (*StartResult, error)
	GetDraft(ctx context.Context, uid, weekID, entryID string) (*DraftView, error)
	// SaveDraft accepts only appended messages relative to the stored draft.
	SaveDraft(ctx context.Context, uid, weekID, entryID string, d models.Draft) (*DraftView, error)
	DeleteDraft(ctx context.Context, uid, weekID, entryID string) error
}

type sessionService struct {
	weeks repositories.WeekRepository
	gate  GateService
	now   func() time.Time
}

func NewSessionService(weeks repositories.WeekRepository, gate GateService, now func() time.Time) SessionService {
	if now == nil {
		now = time.Now
	}
	return &sessionService{weeks: weeks, gate: gate, now: now}
}

func (s *sessionService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	const op = "SessionService.Start"

	if req.UID == "" || req.Mode == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "uid and mode are required", nil)
	}
	if !req.Mode.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mode must be vent or mentor", nil)
	}
	if req.DurationMinutes < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "durationMinutes must be positive", nil)
	}

	res := &StartResult{WeekID: utils.WeekID(s.now()), Mode: req.Mode}

	switch req.Mode {
	case models.ModeVent:
		cd := s.gate.VentCooldown(ctx, req.UID, res.WeekID)
		res.Cooldown = &cd
		if !cd.CanStart {
			msg := "Vent sessions are limited to one every 12 hours"
			if cd.HoursRemaining != nil {
				msg = fmt.Sprintf("Please wait %.1f more hours before starting another vent session", math.Ceil(*cd.HoursRemaining*10)/10)
			}
			return res, utils.E(utils.CodeForbidden, op, msg, nil)
		}
	case models.ModeMentor:
		av := s.gate.MentorAvailability(ctx, req.UID, res.WeekID)
		res.Availability = &av
		if !av.Available {
			return res, utils.E(utils.CodeForbidden, op, "Mentor sessions require 5 completed vent sessions or admin access", nil)
		}
	}

	lc := session.New(s.now)
	if err := lc.Start(req.Mode, req.DurationMinutes); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "cannot start session", err)
	}

	draft := lc.Snapshot()
	if err := s.weeks.SaveDraft(ctx, req.UID, lc.WeekID(), lc.ID(), &draft); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save draft", err)
	}

	res.EntryID = lc.ID()
	res.WeekID = lc.WeekID()
	res.Date = lc.Date()
	res.StartTime = draft.StartTime
	res.DurationMinutes = draft.DurationMinutes
	return res, nil
}

func (s *sessionService) view(d *models.Draft) *DraftView {
	remaining := session.TimeRemaining(time.UnixMilli(d.StartTime), d.DurationMinutes, s.now())
	return &DraftView{Draft: *d, TimeRemaining: remaining, Expired: remaining <= 0}
}

func draftKeyErr(op, uid, weekID, entryID string) error {
	if uid == "" || weekID == "" || entryID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "uid, weekId and entryId are required", nil)
	}
	return nil
}

func (s *sessionService) GetDraft(ctx context.Context, uid, weekID, entryID string) (*DraftView, error) {
	const op = "SessionService.GetDraft"

	if err := draftKeyErr(op, uid, weekID, entryID); err != nil {
		return nil, err
	}
	d, err := s.weeks.GetDraft(ctx, uid, weekID, entryID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "draft not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get draft", err)
	}
	return s.view(d), nil
}

func sameMessage(a, b models.Message) bool {
	return a.Role == b.Role && a.Content == b.Content
}

func (s *sessionService) SaveDraft(ctx context.Context, uid, weekID, entryID string, in models.Draft) (*DraftView, error) {
	const op = "SessionService.SaveDraft"

	if err := draftKeyErr(op, uid, weekID, entryID); err != nil {
		return nil, err
	}
	if err := models.ValidateMessages(in.Messages); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid messages", err)
	}

	stored, err := s.weeks.GetDraft(ctx, uid, weekID, entryID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to read draft", err)
	}

	lc := session.New(s.now)
	var appended []models.Message

	if stored == nil {
		if !in.Mode.Valid() || in.StartTime <= 0 {
			return nil, utils.E(utils.CodeInvalidArgument, op, "mode and startTime are required for a new draft", nil)
		}
		if err := lc.Restore(in.Mode, in.DurationMinutes, nil, time.UnixMilli(in.StartTime)); err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "cannot restore session", err)
		}
		appended = in.Messages
	} else {
		if in.Mode != "" && in.Mode != stored.Mode {
			return nil, utils.E(utils.CodeConflict, op, "draft mode cannot change", nil)
		}
		if len(in.Messages) < len(stored.Messages) {
			return nil, utils.E(utils.CodeConflict, op, "messages can only be appended", nil)
		}
		for i := range stored.Messages {
			if !sameMessage(stored.Messages[i], in.Messages[i]) {
				return nil, utils.E(utils.CodeConflict, op, "messages can only be appended", nil)
			}
		}
		if err := lc.Restore(stored.Mode, stored.DurationMinutes, stored.Messages, time.UnixMilli(stored.StartTime)); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "cannot restore session", err)
		}
		appended = in.Messages[len(stored.Messages):]
	}

	for _, m := range appended {
		if err := lc.AddMessage(m); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "cannot append message", err)
		}
	}

	d := lc.Snapshot()
	if err := s.weeks.SaveDraft(ctx, uid, weekID, entryID, &d); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save draft", err)
	}
	return s.view(&d), nil
}

func (s *sessionService) DeleteDraft(ctx context.Context, uid, weekID, entryID string) error {
	const op = "SessionService.DeleteDraft"

	if err := draftKeyErr(op, uid, weekID, entryID); err != nil {
		return err
	}
	if err := s.weeks.DeleteDraft(ctx, uid, weekID, entryID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete draft", err)
	}
	return nil
}
