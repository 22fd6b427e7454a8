package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yoockh/journai/internal/metrics"
	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

const (
	// MentorUnlockThreshold is the number of vent sessions in a week that opens mentor mode.
	MentorUnlockThreshold = 5
	VentCooldown          = 12 * time.Hour
)

type MentorAvailability struct {
	Available bool   `json:"available"`
	VentCount int    `json:"ventCount"`
	IsAdmin   bool   `json:"isAdmin"`
	Reason    string `json:"reason"`
}

type Cooldown struct {
	CanStart       bool       `json:"canStart"`
	HoursRemaining *float64   `json:"hoursRemaining,omitempty"`
	LastSessionAt  *time.Time `json:"lastSessionAt,omitempty"`
}

// EvaluateMentorAccess decides mentor eligibility from already-read data.
// A nil user or week counts as non-admin / zero sessions.
func EvaluateMentorAccess(user *models.User, week *models.Week) MentorAvailability {
	isAdmin := user.IsPrivileged()
	count := 0
	if week != nil {
		count = week.VentEntryCount
	}

	out := MentorAvailability{
		Available: isAdmin || count >= MentorUnlockThreshold,
		VentCount: count,
		IsAdmin:   isAdmin,
	}
	switch {
	case isAdmin:
		out.Reason = "Admin access"
	case out.Available:
		out.Reason = "Required vent sessions completed"
	default:
		n := MentorUnlockThreshold - count
		if n == 1 {
			out.Reason = "Need 1 more vent session"
		} else {
			out.Reason = fmt.Sprintf("Need %d more vent sessions", n)
		}
	}
	return out
}

// EvaluateCooldown allows a new vent session once VentCooldown has passed
// since the week's last one.
func EvaluateCooldown(week *models.Week, now time.Time) Cooldown {
	if week == nil || week.LastVentSessionAt == nil {
		return Cooldown{CanStart: true}
	}

	last := *week.LastVentSessionAt
	elapsed := now.Sub(last)
	if elapsed >= VentCooldown {
		return Cooldown{CanStart: true}
	}

	remaining := (VentCooldown - elapsed).Hours()
	if remaining < 0 {
		remaining = 0
	}
	return Cooldown{CanStart: false, HoursRemaining: &remaining, LastSessionAt: &last}
}

type GateService interface {
	// MentorAvailability never fails; unreadable data is treated as
	// non-admin and zero sessions.
	MentorAvailability(ctx context.Context, uid, weekID string) MentorAvailability
	// VentCooldown never fails; an unreadable week denies the start.
	VentCooldown(ctx context.Context, uid, weekID string) Cooldown
}

type gateService struct {
	users   repositories.UserRepository
	weeks   repositories.WeekRepository
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewGateService(users repositories.UserRepository, weeks repositories.WeekRepository, log logrus.FieldLogger, m *metrics.Metrics, now func() time.Time) GateService {
	if now == nil {
		now = time.Now
	}
	return &gateService{users: users, weeks: weeks, log: log, metrics: m, now: now}
}

func (s *gateService) MentorAvailability(ctx context.Context, uid, weekID string) MentorAvailability {
	var (
		user *models.User
		week *models.Week
	)

	var g errgroup.Group
	g.Go(func() error {
		u, err := s.users.GetUser(ctx, uid)
		if err != nil && !errors.Is(err, utils.ErrNotFound) {
			s.log.WithFields(logrus.Fields{"uid": uid, "error": err}).Error("gate: admin check failed, treating as non-admin")
			return nil
		}
		user = u
		return nil
	})
	g.Go(func() error {
		w, err := s.weeks.GetWeek(ctx, uid, weekID)
		if err != nil && !errors.Is(err, utils.ErrNotFound) {
			s.log.WithFields(logrus.Fields{"uid": uid, "week_id": weekID, "error": err}).Error("gate: vent count read failed, treating as 0")
			return nil
		}
		week = w
		return nil
	})
	_ = g.Wait()

	out := EvaluateMentorAccess(user, week)
	s.metrics.Gate("mentor", out.Available)
	return out
}

func (s *gateService) VentCooldown(ctx context.Context, uid, weekID string) Cooldown {
	week, err := s.weeks.GetWeek(ctx, uid, weekID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		s.log.WithFields(logrus.Fields{"uid": uid, "week_id": weekID, "error": err}).Error("gate: cooldown read failed, denying start")
		s.metrics.Gate("cooldown", false)
		return Cooldown{CanStart: false}
	}

	out := EvaluateCooldown(week, s.now())
	s.metrics.Gate("cooldown", out.CanStart)
	return out
}
