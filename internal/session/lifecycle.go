// Package session holds the state machine of a single conversational session.
// It keeps no timers: remaining time is computed on demand from the stored
// start time and the caller's clock.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/utils"
)

type State int

const (
	StateIdle State = iota
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultVentMinutes   = 30
	DefaultMentorMinutes = 60
)

var (
	ErrNotActive     = errors.New("session is not active")
	ErrAlreadyActive = errors.New("session is already active")
	ErrInvalidMode   = errors.New("invalid session mode")
)

// DefaultDuration returns the planned length of a session in the given mode.
func DefaultDuration(mode models.Mode) int {
	if mode == models.ModeMentor {
		return DefaultMentorMinutes
	}
	return DefaultVentMinutes
}

// Lifecycle is not safe for concurrent use; one request owns it at a time.
type Lifecycle struct {
	now func() time.Time

	state           State
	mode            models.Mode
	durationMinutes int
	startTime       time.Time
	messages        []models.Message

	weekID string
	date   string
}

func New(now func() time.Time) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{now: now, state: StateIdle}
}

// Start moves idle/ended to active, clears the log and stamps the start time,
// ISO week and calendar date from the current clock.
func (l *Lifecycle) Start(mode models.Mode, durationMinutes int) error {
	if l.state == StateActive {
		return ErrAlreadyActive
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if durationMinutes <= 0 {
		durationMinutes = DefaultDuration(mode)
	}

	now := l.now()
	l.mode = mode
	l.durationMinutes = durationMinutes
	l.startTime = now
	l.messages = nil
	l.weekID = utils.WeekID(now)
	l.date = utils.DateString(now)
	l.state = StateActive
	return nil
}

// AddMessage appends with a capture timestamp. Messages are never reordered or removed.
func (l *Lifecycle) AddMessage(m models.Message) error {
	if l.state != StateActive {
		return ErrNotActive
	}
	ts := l.now().UnixMilli()
	m.Timestamp = &ts
	l.messages = append(l.messages, m)
	return nil
}

// End moves active to ended. The message log stays readable.
func (l *Lifecycle) End() error {
	if l.state != StateActive {
		return ErrNotActive
	}
	l.state = StateEnded
	return nil
}

// Restore rebuilds an active session from a draft. Week id and date come from
// the current clock; startTime is kept so elapsed time stays correct.
func (l *Lifecycle) Restore(mode models.Mode, durationMinutes int, messages []models.Message, startTime time.Time) error {
	if l.state == StateActive {
		return ErrAlreadyActive
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if durationMinutes <= 0 {
		durationMinutes = DefaultDuration(mode)
	}

	now := l.now()
	l.mode = mode
	l.durationMinutes = durationMinutes
	l.startTime = startTime
	l.messages = append([]models.Message(nil), messages...)
	l.weekID = utils.WeekID(now)
	l.date = utils.DateString(now)
	l.state = StateActive
	return nil
}

func (l *Lifecycle) State() State         { return l.state }
func (l *Lifecycle) Mode() models.Mode    { return l.mode }
func (l *Lifecycle) DurationMinutes() int { return l.durationMinutes }
func (l *Lifecycle) StartTime() time.Time { return l.startTime }
func (l *Lifecycle) WeekID() string       { return l.weekID }
func (l *Lifecycle) Date() string         { return l.date }
func (l *Lifecycle) IsActive() bool       { return l.state == StateActive }

// Messages returns a copy of the log in insertion order.
func (l *Lifecycle) Messages() []models.Message {
	return append([]models.Message(nil), l.messages...)
}

// ID is the session document id, {date}_{time} of the start time in UTC.
// Mentor sessions always use the fixed weekly slot.
func (l *Lifecycle) ID() string {
	if l.mode == models.ModeMentor {
		return models.MentorSlot
	}
	return SessionID(l.startTime)
}

// SessionID formats a start time as {YYYY-MM-DD}_{HHMMSS}.
func SessionID(start time.Time) string {
	start = start.UTC()
	return start.Format(utils.DateLayout) + "_" + start.Format("150405")
}

// TimeRemaining is the remaining minutes at now; zero once the session is not active.
func (l *Lifecycle) TimeRemaining(now time.Time) float64 {
	if l.state != StateActive {
		return 0
	}
	return TimeRemaining(l.startTime, l.durationMinutes, now)
}

// Expired reports whether the planned duration has run out. It does not end the session.
func (l *Lifecycle) Expired(now time.Time) bool {
	return l.TimeRemaining(now) <= 0
}

// Snapshot captures the session as a draft.
func (l *Lifecycle) Snapshot() models.Draft {
	return models.Draft{
		Mode:            l.mode,
		Messages:        l.Messages(),
		StartTime:       l.startTime.UnixMilli(),
		DurationMinutes: l.durationMinutes,
		LastUpdated:     l.now().UTC(),
	}
}

// TimeRemaining returns max(0, duration - elapsed) in minutes.
func TimeRemaining(startTime time.Time, durationMinutes int, now time.Time) float64 {
	elapsed := now.Sub(startTime).Minutes()
	remaining := float64(durationMinutes) - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
