// Package repositories defines the persistence boundary. Each backend
// subpackage (memory, mongo, firestore, postgres) implements Store.
//
// Logical document layout:
//
//	users/{uid}
//	users/{uid}/weeks/{weekId}
//	users/{uid}/weeks/{weekId}/ventSessions/{id}
//	users/{uid}/weeks/{weekId}/entries/mentor
//	users/{uid}/weeks/{weekId}/drafts/{entryId}
//	users/{uid}/journal/{date}
//
// Missing documents are reported as utils.ErrNotFound.
package repositories

import (
	"context"
	"time"

	"github.com/yoockh/journai/internal/models"
)

type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	// TouchUser creates the user on first authentication, otherwise refreshes
	// profile fields and the login timestamp. The admin flag is never written.
	TouchUser(ctx context.Context, p models.UserProfile, now time.Time) (created bool, err error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type WeekRepository interface {
	GetWeek(ctx context.Context, uid, weekID string) (*models.Week, error)

	// SaveVentSession writes the session in place. The first save of an id
	// creates the week if needed, bumps VentEntryCount and LastVentSessionAt;
	// later saves keep CreatedAt and only refresh CompletedAt/LastUpdated.
	SaveVentSession(ctx context.Context, uid, weekID string, s *models.VentSession, now time.Time) (created bool, err error)
	GetVentSession(ctx context.Context, uid, weekID, sessionID string) (*models.VentSession, error)
	ListVentSessions(ctx context.Context, uid, weekID string) ([]models.VentSession, error)

	SaveMentorEntry(ctx context.Context, uid, weekID string, e *models.MentorEntry, now time.Time) error
	GetMentorEntry(ctx context.Context, uid, weekID string) (*models.MentorEntry, error)

	SaveDraft(ctx context.Context, uid, weekID, entryID string, d *models.Draft) error
	GetDraft(ctx context.Context, uid, weekID, entryID string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, uid, weekID, entryID string) error
}

type JournalRepository interface {
	// SaveJournalEntry merges content into the date's entry.
	SaveJournalEntry(ctx context.Context, uid, date, content string, now time.Time) error
	GetJournalEntry(ctx context.Context, uid, date string) (*models.JournalEntry, error)
	// ListJournalEntries returns entries with fromDate <= date <= toDate, oldest first.
	ListJournalEntries(ctx context.Context, uid, fromDate, toDate string) ([]models.JournalEntry, error)
	// ListAllJournalEntries returns every entry, newest first.
	ListAllJournalEntries(ctx context.Context, uid string) ([]models.JournalEntry, error)
}

type Store interface {
	UserRepository
	WeekRepository
	JournalRepository
	Close(ctx context.Context) error
}
