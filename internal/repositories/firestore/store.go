package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

// Store keeps the document tree exactly as laid out in package repositories.
type Store struct {
	client *firestore.Client
}

var _ repositories.Store = (*Store)(nil)

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) userDoc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid)
}

func (s *Store) weekDoc(uid, weekID string) *firestore.DocumentRef {
	return s.userDoc(uid).Collection("weeks").Doc(weekID)
}

func (s *Store) ventSessionsCol(uid, weekID string) *firestore.CollectionRef {
	return s.weekDoc(uid, weekID).Collection("ventSessions")
}

func (s *Store) mentorDoc(uid, weekID string) *firestore.DocumentRef {
	return s.weekDoc(uid, weekID).Collection("entries").Doc(models.MentorSlot)
}

func (s *Store) draftDoc(uid, weekID, entryID string) *firestore.DocumentRef {
	return s.weekDoc(uid, weekID).Collection("drafts").Doc(entryID)
}

func (s *Store) journalCol(uid string) *firestore.CollectionRef {
	return s.userDoc(uid).Collection("journal")
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef) (*T, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	var out T
	if err := snap.DataTo(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.Path, err)
	}
	return &out, nil
}

func collect[T any](iter *firestore.DocumentIterator, convert func(id string, d *T) error) error {
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		var d T
		if err := snap.DataTo(&d); err != nil {
			return fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		if err := convert(snap.Ref.ID, &d); err != nil {
			return err
		}
	}
}

func nonNil(msgs []models.Message) []models.Message {
	if msgs == nil {
		return []models.Message{}
	}
	return msgs
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type userDoc struct {
	UID         string    `firestore:"uid"`
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	PhotoURL    string    `firestore:"photoURL"`
	Admin       any       `firestore:"admin,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	LastLoginAt time.Time `firestore:"lastLoginAt"`
}

func (d *userDoc) toModel() models.User {
	return models.User{
		UID:         d.UID,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		PhotoURL:    d.PhotoURL,
		Admin:       d.Admin,
		CreatedAt:   d.CreatedAt,
		LastLoginAt: d.LastLoginAt,
	}
}

type weekDoc struct {
	WeekID            string     `firestore:"weekId"`
	VentEntryCount    int        `firestore:"ventEntryCount"`
	LastVentSessionAt *time.Time `firestore:"lastVentSessionAt,omitempty"`
	CreatedAt         time.Time  `firestore:"createdAt"`
	LastUpdated       time.Time  `firestore:"lastUpdated"`
}

type ventSessionDoc struct {
	StartTime       int64            `firestore:"startTime"`
	DurationMinutes int              `firestore:"durationMinutes"`
	Messages        []models.Message `firestore:"messages"`
	CompletedAt     *time.Time       `firestore:"completedAt,omitempty"`
	CreatedAt       time.Time        `firestore:"createdAt"`
	LastUpdated     time.Time        `firestore:"lastUpdated"`
}

type mentorEntryDoc struct {
	UID         string           `firestore:"uid"`
	WeekID      string           `firestore:"weekId"`
	Mode        string           `firestore:"mode"`
	Messages    []models.Message `firestore:"messages"`
	Summary     *string          `firestore:"summary"`
	Timestamp   int64            `firestore:"timestamp"`
	LastUpdated time.Time        `firestore:"lastUpdated"`
}

type draftDoc struct {
	Mode            string           `firestore:"mode"`
	Messages        []models.Message `firestore:"messages"`
	StartTime       int64            `firestore:"startTime"`
	DurationMinutes int              `firestore:"durationMinutes"`
	LastUpdated     time.Time        `firestore:"lastUpdated"`
}

type journalDoc struct {
	Date        string    `firestore:"date"`
	Content     string    `firestore:"content"`
	LastUpdated time.Time `firestore:"lastUpdated"`
}

// ─────────────────────────────────────────
// UserRepository
// ─────────────────────────────────────────

func (s *Store) GetUser(ctx context.Context, uid string) (*models.User, error) {
	d, err := getDoc[userDoc](ctx, s.userDoc(uid))
	if err != nil {
		return nil, err
	}
	u := d.toModel()
	if u.UID == "" {
		u.UID = uid
	}
	return &u, nil
}

func (s *Store) TouchUser(ctx context.Context, p models.UserProfile, now time.Time) (bool, error) {
	ref := s.userDoc(p.UID)
	var created bool

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && !isNotFound(err) {
			return err
		}
		created = snap == nil || !snap.Exists()

		if created {
			return tx.Set(ref, userDoc{
				UID:         p.UID,
				Email:       p.Email,
				DisplayName: p.DisplayName,
				PhotoURL:    p.PhotoURL,
				CreatedAt:   now,
				LastLoginAt: now,
			})
		}
		return tx.Set(ref, map[string]interface{}{
			"email":       p.Email,
			"displayName": p.DisplayName,
			"photoURL":    p.PhotoURL,
			"lastLoginAt": now,
		}, firestore.MergeAll)
	})
	if err != nil {
		return false, fmt.Errorf("firestore TouchUser: %w", err)
	}
	return created, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := collect(s.client.Collection("users").OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx),
		func(id string, d *userDoc) error {
			u := d.toModel()
			if u.UID == "" {
				u.UID = id
			}
			out = append(out, u)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("firestore ListUsers: %w", err)
	}
	return out, nil
}

// ─────────────────────────────────────────
// WeekRepository
// ─────────────────────────────────────────

func (s *Store) GetWeek(ctx context.Context, uid, weekID string) (*models.Week, error) {
	d, err := getDoc[weekDoc](ctx, s.weekDoc(uid, weekID))
	if err != nil {
		return nil, err
	}
	return &models.Week{
		WeekID:            weekID,
		VentEntryCount:    d.VentEntryCount,
		LastVentSessionAt: d.LastVentSessionAt,
		CreatedAt:         d.CreatedAt,
		LastUpdated:       d.LastUpdated,
	}, nil
}

// SaveVentSession runs in a transaction so the counter bump and the
// "first write of this id" check see the same snapshot.
func (s *Store) SaveVentSession(ctx context.Context, uid, weekID string, vs *models.VentSession, now time.Time) (bool, error) {
	weekRef := s.weekDoc(uid, weekID)
	sessRef := s.ventSessionsCol(uid, weekID).Doc(vs.ID)
	var created bool

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		weekSnap, err := tx.Get(weekRef)
		if err != nil && !isNotFound(err) {
			return err
		}
		sessSnap, err := tx.Get(sessRef)
		if err != nil && !isNotFound(err) {
			return err
		}

		weekExists := weekSnap != nil && weekSnap.Exists()
		created = sessSnap == nil || !sessSnap.Exists()

		createdAt := now
		if !created {
			var prev ventSessionDoc
			if err := sessSnap.DataTo(&prev); err == nil && !prev.CreatedAt.IsZero() {
				createdAt = prev.CreatedAt
			}
		}

		completed := now
		if err := tx.Set(sessRef, ventSessionDoc{
			StartTime:       vs.StartTime,
			DurationMinutes: vs.DurationMinutes,
			Messages:        nonNil(vs.Messages),
			CompletedAt:     &completed,
			CreatedAt:       createdAt,
			LastUpdated:     now,
		}); err != nil {
			return err
		}

		if !weekExists {
			w := weekDoc{WeekID: weekID, CreatedAt: now, LastUpdated: now}
			if created {
				w.VentEntryCount = 1
				w.LastVentSessionAt = &completed
			}
			return tx.Set(weekRef, w)
		}

		if !created {
			return tx.Set(weekRef, map[string]interface{}{"lastUpdated": now}, firestore.MergeAll)
		}

		var w weekDoc
		if err := weekSnap.DataTo(&w); err != nil {
			return fmt.Errorf("decode week: %w", err)
		}
		return tx.Set(weekRef, map[string]interface{}{
			"ventEntryCount":    w.VentEntryCount + 1,
			"lastVentSessionAt": now,
			"lastUpdated":       now,
		}, firestore.MergeAll)
	})
	if err != nil {
		return false, fmt.Errorf("firestore SaveVentSession: %w", err)
	}
	return created, nil
}

func toVentSession(id string, d *ventSessionDoc) models.VentSession {
	return models.VentSession{
		ID:              id,
		StartTime:       d.StartTime,
		DurationMinutes: d.DurationMinutes,
		Messages:        nonNil(d.Messages),
		CompletedAt:     d.CompletedAt,
		CreatedAt:       d.CreatedAt,
		LastUpdated:     d.LastUpdated,
	}
}

func (s *Store) GetVentSession(ctx context.Context, uid, weekID, sessionID string) (*models.VentSession, error) {
	d, err := getDoc[ventSessionDoc](ctx, s.ventSessionsCol(uid, weekID).Doc(sessionID))
	if err != nil {
		return nil, err
	}
	vs := toVentSession(sessionID, d)
	return &vs, nil
}

func (s *Store) ListVentSessions(ctx context.Context, uid, weekID string) ([]models.VentSession, error) {
	out := []models.VentSession{}
	err := collect(s.ventSessionsCol(uid, weekID).OrderBy("createdAt", firestore.Asc).Documents(ctx),
		func(id string, d *ventSessionDoc) error {
			out = append(out, toVentSession(id, d))
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("firestore ListVentSessions: %w", err)
	}
	return out, nil
}

func (s *Store) ensureWeek(ctx context.Context, uid, weekID string, now time.Time) error {
	_, err := s.weekDoc(uid, weekID).Create(ctx, weekDoc{WeekID: weekID, CreatedAt: now, LastUpdated: now})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return err
	}
	return nil
}

func (s *Store) SaveMentorEntry(ctx context.Context, uid, weekID string, e *models.MentorEntry, now time.Time) error {
	if err := s.ensureWeek(ctx, uid, weekID, now); err != nil {
		return fmt.Errorf("firestore SaveMentorEntry: %w", err)
	}
	_, err := s.mentorDoc(uid, weekID).Set(ctx, mentorEntryDoc{
		UID:         uid,
		WeekID:      weekID,
		Mode:        string(models.ModeMentor),
		Messages:    nonNil(e.Messages),
		Summary:     e.Summary,
		Timestamp:   e.Timestamp,
		LastUpdated: now,
	})
	if err != nil {
		return fmt.Errorf("firestore SaveMentorEntry: %w", err)
	}
	return nil
}

func (s *Store) GetMentorEntry(ctx context.Context, uid, weekID string) (*models.MentorEntry, error) {
	d, err := getDoc[mentorEntryDoc](ctx, s.mentorDoc(uid, weekID))
	if err != nil {
		return nil, err
	}
	return &models.MentorEntry{
		UID:         uid,
		WeekID:      weekID,
		Messages:    nonNil(d.Messages),
		Summary:     d.Summary,
		Timestamp:   d.Timestamp,
		LastUpdated: d.LastUpdated,
	}, nil
}

func (s *Store) SaveDraft(ctx context.Context, uid, weekID, entryID string, d *models.Draft) error {
	_, err := s.draftDoc(uid, weekID, entryID).Set(ctx, draftDoc{
		Mode:            string(d.Mode),
		Messages:        nonNil(d.Messages),
		StartTime:       d.StartTime,
		DurationMinutes: d.DurationMinutes,
		LastUpdated:     d.LastUpdated,
	})
	if err != nil {
		return fmt.Errorf("firestore SaveDraft: %w", err)
	}
	return nil
}

func (s *Store) GetDraft(ctx context.Context, uid, weekID, entryID string) (*models.Draft, error) {
	d, err := getDoc[draftDoc](ctx, s.draftDoc(uid, weekID, entryID))
	if err != nil {
		return nil, err
	}
	return &models.Draft{
		Mode:            models.Mode(d.Mode),
		Messages:        nonNil(d.Messages),
		StartTime:       d.StartTime,
		DurationMinutes: d.DurationMinutes,
		LastUpdated:     d.LastUpdated,
	}, nil
}

func (s *Store) DeleteDraft(ctx context.Context, uid, weekID, entryID string) error {
	if _, err := s.draftDoc(uid, weekID, entryID).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteDraft: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// JournalRepository
// ─────────────────────────────────────────

func (s *Store) SaveJournalEntry(ctx context.Context, uid, date, content string, now time.Time) error {
	_, err := s.journalCol(uid).Doc(date).Set(ctx, map[string]interface{}{
		"date":        date,
		"content":     content,
		"lastUpdated": now,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore SaveJournalEntry: %w", err)
	}
	return nil
}

func (s *Store) GetJournalEntry(ctx context.Context, uid, date string) (*models.JournalEntry, error) {
	d, err := getDoc[journalDoc](ctx, s.journalCol(uid).Doc(date))
	if err != nil {
		return nil, err
	}
	return &models.JournalEntry{Date: date, Content: d.Content, LastUpdated: d.LastUpdated}, nil
}

func (s *Store) listJournal(ctx context.Context, q firestore.Query) ([]models.JournalEntry, error) {
	out := []models.JournalEntry{}
	err := collect(q.Documents(ctx), func(id string, d *journalDoc) error {
		date := d.Date
		if date == "" {
			date = id
		}
		out = append(out, models.JournalEntry{Date: date, Content: d.Content, LastUpdated: d.LastUpdated})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore listJournal: %w", err)
	}
	return out, nil
}

func (s *Store) ListJournalEntries(ctx context.Context, uid, fromDate, toDate string) ([]models.JournalEntry, error) {
	q := s.journalCol(uid).
		Where("date", ">=", fromDate).
		Where("date", "<=", toDate).
		OrderBy("date", firestore.Asc)
	return s.listJournal(ctx, q)
}

func (s *Store) ListAllJournalEntries(ctx context.Context, uid string) ([]models.JournalEntry, error) {
	return s.listJournal(ctx, s.journalCol(uid).OrderBy("date", firestore.Desc))
}
