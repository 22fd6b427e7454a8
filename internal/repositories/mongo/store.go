package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ColUsers          = "users"
	ColWeeks          = "weeks"
	ColVentSessions   = "vent_sessions"
	ColChatEntries    = "chat_entries"
	ColDrafts         = "drafts"
	ColJournalEntries = "journal_entries"
)

// Store maps the per-user document tree onto flat collections keyed by
// uid (+ week_id, + entry id). Unique indexes come from config.EnsureMongoIndexes.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	weeks    *mongo.Collection
	sessions *mongo.Collection
	entries  *mongo.Collection
	drafts   *mongo.Collection
	journal  *mongo.Collection
}

var _ repositories.Store = (*Store)(nil)

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:   client,
		users:    db.Collection(ColUsers),
		weeks:    db.Collection(ColWeeks),
		sessions: db.Collection(ColVentSessions),
		entries:  db.Collection(ColChatEntries),
		drafts:   db.Collection(ColDrafts),
		journal:  db.Collection(ColJournalEntries),
	}
}

func (r *Store) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	err := col.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func upsert() *options.UpdateOptions { return options.Update().SetUpsert(true) }

// ─────────────────────────────────────────
// Users
// ─────────────────────────────────────────

func (r *Store) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return findOne[models.User](ctx, r.users, bson.M{"uid": uid})
}

func (r *Store) TouchUser(ctx context.Context, p models.UserProfile, now time.Time) (bool, error) {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"uid": p.UID},
		bson.M{
			"$set": bson.M{
				"email":         p.Email,
				"display_name":  p.DisplayName,
				"photo_url":     p.PhotoURL,
				"last_login_at": now.UTC(),
			},
			"$setOnInsert": bson.M{"created_at": now.UTC()},
		},
		upsert(),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (r *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "uid", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ─────────────────────────────────────────
// Weeks
// ─────────────────────────────────────────

func (r *Store) GetWeek(ctx context.Context, uid, weekID string) (*models.Week, error) {
	return findOne[models.Week](ctx, r.weeks, bson.M{"uid": uid, "week_id": weekID})
}

func (r *Store) ensureWeek(ctx context.Context, uid, weekID string, now time.Time) error {
	_, err := r.weeks.UpdateOne(ctx,
		bson.M{"uid": uid, "week_id": weekID},
		bson.M{
			"$set":         bson.M{"last_updated": now},
			"$setOnInsert": bson.M{"vent_entry_count": 0, "created_at": now},
		},
		upsert(),
	)
	return err
}

func (r *Store) SaveVentSession(ctx context.Context, uid, weekID string, s *models.VentSession, now time.Time) (bool, error) {
	now = now.UTC()
	if err := r.ensureWeek(ctx, uid, weekID, now); err != nil {
		return false, err
	}

	messages := s.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	filter := bson.M{"uid": uid, "week_id": weekID, "session_id": s.ID}
	update := bson.M{
		"$set": bson.M{
			"start_time":       s.StartTime,
			"duration_minutes": s.DurationMinutes,
			"messages":         messages,
			"completed_at":     now,
			"last_updated":     now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	return countNewSession(ctx,
		func(ctx context.Context) (bool, error) {
			res, err := r.sessions.UpdateOne(ctx, filter, update, upsert())
			if mongo.IsDuplicateKeyError(err) {
				// lost the insert race on the unique index; the document exists now
				res, err = r.sessions.UpdateOne(ctx, filter, update)
			}
			if err != nil {
				return false, err
			}
			return res.UpsertedCount == 1, nil
		},
		func(ctx context.Context) error {
			_, err := r.weeks.UpdateOne(ctx,
				bson.M{"uid": uid, "week_id": weekID},
				bson.M{
					"$inc": bson.M{"vent_entry_count": 1},
					"$set": bson.M{"last_vent_session_at": now, "last_updated": now},
				},
			)
			return err
		},
		func(ctx context.Context) error {
			_, err := r.sessions.DeleteOne(ctx, filter)
			return err
		},
	)
}

// countNewSession upserts a session and bumps the week counter when the
// upsert created it. If the counter update fails the new document is removed
// again, so a retry of the same id creates and counts it once.
func countNewSession(
	ctx context.Context,
	upsertSession func(context.Context) (bool, error),
	incrementWeek func(context.Context) error,
	removeSession func(context.Context) error,
) (bool, error) {
	created, err := upsertSession(ctx)
	if err != nil || !created {
		return false, err
	}
	if err := incrementWeek(ctx); err != nil {
		if rmErr := removeSession(context.WithoutCancel(ctx)); rmErr != nil {
			return false, errors.Join(err, fmt.Errorf("remove uncounted session: %w", rmErr))
		}
		return false, err
	}
	return true, nil
}

func (r *Store) GetVentSession(ctx context.Context, uid, weekID, sessionID string) (*models.VentSession, error) {
	return findOne[models.VentSession](ctx, r.sessions, bson.M{"uid": uid, "week_id": weekID, "session_id": sessionID})
}

func (r *Store) ListVentSessions(ctx context.Context, uid, weekID string) ([]models.VentSession, error) {
	cur, err := r.sessions.Find(ctx,
		bson.M{"uid": uid, "week_id": weekID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "session_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.VentSession{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Store) SaveMentorEntry(ctx context.Context, uid, weekID string, e *models.MentorEntry, now time.Time) error {
	now = now.UTC()
	if err := r.ensureWeek(ctx, uid, weekID, now); err != nil {
		return err
	}

	messages := e.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	_, err := r.entries.UpdateOne(ctx,
		bson.M{"uid": uid, "week_id": weekID, "entry_id": models.MentorSlot},
		bson.M{"$set": bson.M{
			"mode":         models.ModeMentor,
			"messages":     messages,
			"summary":      e.Summary,
			"timestamp":    e.Timestamp,
			"last_updated": now,
		}},
		upsert(),
	)
	return err
}

func (r *Store) GetMentorEntry(ctx context.Context, uid, weekID string) (*models.MentorEntry, error) {
	return findOne[models.MentorEntry](ctx, r.entries, bson.M{"uid": uid, "week_id": weekID, "entry_id": models.MentorSlot})
}

// ─────────────────────────────────────────
// Drafts
// ─────────────────────────────────────────

func (r *Store) SaveDraft(ctx context.Context, uid, weekID, entryID string, d *models.Draft) error {
	messages := d.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	_, err := r.drafts.ReplaceOne(ctx,
		bson.M{"uid": uid, "week_id": weekID, "entry_id": entryID},
		bson.M{
			"uid":              uid,
			"week_id":          weekID,
			"entry_id":         entryID,
			"mode":             d.Mode,
			"messages":         messages,
			"start_time":       d.StartTime,
			"duration_minutes": d.DurationMinutes,
			"last_updated":     d.LastUpdated.UTC(),
		},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *Store) GetDraft(ctx context.Context, uid, weekID, entryID string) (*models.Draft, error) {
	return findOne[models.Draft](ctx, r.drafts, bson.M{"uid": uid, "week_id": weekID, "entry_id": entryID})
}

func (r *Store) DeleteDraft(ctx context.Context, uid, weekID, entryID string) error {
	_, err := r.drafts.DeleteOne(ctx, bson.M{"uid": uid, "week_id": weekID, "entry_id": entryID})
	return err
}

// ─────────────────────────────────────────
// Journal
// ─────────────────────────────────────────

func (r *Store) SaveJournalEntry(ctx context.Context, uid, date, content string, now time.Time) error {
	_, err := r.journal.UpdateOne(ctx,
		bson.M{"uid": uid, "date": date},
		bson.M{"$set": bson.M{"content": content, "last_updated": now.UTC()}},
		upsert(),
	)
	return err
}

func (r *Store) GetJournalEntry(ctx context.Context, uid, date string) (*models.JournalEntry, error) {
	return findOne[models.JournalEntry](ctx, r.journal, bson.M{"uid": uid, "date": date})
}

func (r *Store) ListJournalEntries(ctx context.Context, uid, fromDate, toDate string) ([]models.JournalEntry, error) {
	return r.listJournal(ctx,
		bson.M{"uid": uid, "date": bson.M{"$gte": fromDate, "$lte": toDate}},
		1,
	)
}

func (r *Store) ListAllJournalEntries(ctx context.Context, uid string) ([]models.JournalEntry, error) {
	return r.listJournal(ctx, bson.M{"uid": uid}, -1)
}

func (r *Store) listJournal(ctx context.Context, filter bson.M, order int) ([]models.JournalEntry, error) {
	cur, err := r.journal.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: order}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.JournalEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
