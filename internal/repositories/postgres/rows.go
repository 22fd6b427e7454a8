package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/yoockh/journai/internal/models"
)

type userRow struct {
	UID         string         `gorm:"column:uid;primaryKey"`
	Email       string         `gorm:"column:email"`
	DisplayName string         `gorm:"column:display_name"`
	PhotoURL    string         `gorm:"column:photo_url"`
	Admin       datatypes.JSON `gorm:"column:admin;type:jsonb"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null"`
	LastLoginAt time.Time      `gorm:"column:last_login_at;not null"`
}

func (userRow) TableName() string { return "users" }

type weekRow struct {
	UID               string     `gorm:"column:uid;primaryKey"`
	WeekID            string     `gorm:"column:week_id;primaryKey"`
	VentEntryCount    int        `gorm:"column:vent_entry_count;not null;default:0"`
	LastVentSessionAt *time.Time `gorm:"column:last_vent_session_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null"`
	LastUpdated       time.Time  `gorm:"column:last_updated;not null"`
}

func (weekRow) TableName() string { return "weeks" }

type ventSessionRow struct {
	UID             string     `gorm:"column:uid;primaryKey"`
	WeekID          string     `gorm:"column:week_id;primaryKey"`
	SessionID       string     `gorm:"column:session_id;primaryKey"`
	StartTime       int64      `gorm:"column:start_time"`
	DurationMinutes int        `gorm:"column:duration_minutes"`
	Messages        messageLog `gorm:"column:messages;type:jsonb;not null"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;index"`
	LastUpdated     time.Time  `gorm:"column:last_updated;not null"`
}

func (ventSessionRow) TableName() string { return "vent_sessions" }

type mentorEntryRow struct {
	UID         string     `gorm:"column:uid;primaryKey"`
	WeekID      string     `gorm:"column:week_id;primaryKey"`
	Messages    messageLog `gorm:"column:messages;type:jsonb;not null"`
	Summary     *string    `gorm:"column:summary"`
	Timestamp   int64      `gorm:"column:timestamp"`
	LastUpdated time.Time  `gorm:"column:last_updated;not null"`
}

func (mentorEntryRow) TableName() string { return "mentor_entries" }

type draftRow struct {
	UID             string     `gorm:"column:uid;primaryKey"`
	WeekID          string     `gorm:"column:week_id;primaryKey"`
	EntryID         string     `gorm:"column:entry_id;primaryKey"`
	Mode            string     `gorm:"column:mode;not null"`
	Messages        messageLog `gorm:"column:messages;type:jsonb;not null"`
	StartTime       int64      `gorm:"column:start_time"`
	DurationMinutes int        `gorm:"column:duration_minutes"`
	LastUpdated     time.Time  `gorm:"column:last_updated;not null"`
}

func (draftRow) TableName() string { return "drafts" }

type journalRow struct {
	UID         string    `gorm:"column:uid;primaryKey"`
	Date        string    `gorm:"column:date;primaryKey"`
	Content     string    `gorm:"column:content;type:text"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

func (journalRow) TableName() string { return "journal_entries" }

// messageLog is a conversation stored as one jsonb array.
type messageLog = datatypes.JSONSlice[models.Message]

// toMessageLog never writes JSON null for an empty conversation.
func toMessageLog(msgs []models.Message) messageLog {
	if msgs == nil {
		return messageLog{}
	}
	return messageLog(msgs)
}

func fromMessageLog(l messageLog) []models.Message {
	if l == nil {
		return []models.Message{}
	}
	return []models.Message(l)
}

func (r *userRow) toModel() (models.User, error) {
	u := models.User{
		UID:         r.UID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		CreatedAt:   r.CreatedAt,
		LastLoginAt: r.LastLoginAt,
	}
	if len(r.Admin) > 0 {
		if err := json.Unmarshal(r.Admin, &u.Admin); err != nil {
			return u, err
		}
	}
	return u, nil
}

func (r *ventSessionRow) toModel() models.VentSession {
	return models.VentSession{
		ID:              r.SessionID,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		Messages:        fromMessageLog(r.Messages),
		CompletedAt:     r.CompletedAt,
		CreatedAt:       r.CreatedAt,
		LastUpdated:     r.LastUpdated,
	}
}
