package models

import "time"

type Mode string

const (
	ModeVent   Mode = "vent"   // primary, always available, 12h cooldown
	ModeMentor Mode = "mentor" // privileged, gated
)

func (m Mode) Valid() bool {
	return m == ModeVent || m == ModeMentor
}

// MentorSlot is the fixed entry id of the one mentor entry per week.
const MentorSlot = "mentor"

// VentSession is a completed (or re-saved) primary-mode session, id {date}_{time}.
type VentSession struct {
	ID              string     `bson:"session_id" json:"id"`
	StartTime       int64      `bson:"start_time" json:"startTime"` // epoch millis
	DurationMinutes int        `bson:"duration_minutes" json:"durationMinutes"`
	Messages        []Message  `bson:"messages" json:"messages"`
	CompletedAt     *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"createdAt"`
	LastUpdated     time.Time  `bson:"last_updated" json:"lastUpdated"`
}

// MentorEntry is the week's privileged-mode conversation.
type MentorEntry struct {
	UID         string    `bson:"uid" json:"uid"`
	WeekID      string    `bson:"week_id" json:"weekId"`
	Messages    []Message `bson:"messages" json:"messages"`
	Summary     *string   `bson:"summary,omitempty" json:"summary,omitempty"`
	Timestamp   int64     `bson:"timestamp" json:"timestamp"` // epoch millis
	LastUpdated time.Time `bson:"last_updated" json:"lastUpdated"`
}

// ChatEntry is the listing shape shared by vent sessions and mentor entries.
type ChatEntry struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Timestamp int64     `json:"timestamp"`
	Messages  []Message `json:"messages"`
	Summary   *string   `json:"summary,omitempty"`
}

// Draft is an overwritable snapshot of an in-progress session.
type Draft struct {
	Mode            Mode      `bson:"mode" json:"mode"`
	Messages        []Message `bson:"messages" json:"messages"`
	StartTime       int64     `bson:"start_time" json:"startTime"` // epoch millis
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	LastUpdated     time.Time `bson:"last_updated" json:"lastUpdated"`
}
