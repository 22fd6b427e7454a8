package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

type Store struct {
	db *gorm.DB
}

var _ repositories.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables backing the store.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&userRow{},
		&weekRow{},
		&ventSessionRow{},
		&mentorEntryRow{},
		&draftRow{},
		&journalRow{},
	)
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrNotFound
	}
	return err
}

// ---- users ----

func (s *Store) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).Take(&row).Error; err != nil {
		return nil, notFound(err)
	}
	u, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("decode user %s: %w", uid, err)
	}
	return &u, nil
}

func (s *Store) TouchUser(ctx context.Context, p models.UserProfile, now time.Time) (bool, error) {
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&userRow{
			UID:         p.UID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			PhotoURL:    p.PhotoURL,
			CreatedAt:   now,
			LastLoginAt: now,
		})
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected == 1
		if created {
			return nil
		}
		return tx.Model(&userRow{}).Where("uid = ?", p.UID).Updates(map[string]interface{}{
			"email":         p.Email,
			"display_name":  p.DisplayName,
			"photo_url":     p.PhotoURL,
			"last_login_at": now,
		}).Error
	})
	return created, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("uid ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("decode user %s: %w", rows[i].UID, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// ---- weeks ----

func (s *Store) GetWeek(ctx context.Context, uid, weekID string) (*models.Week, error) {
	var row weekRow
	err := s.db.WithContext(ctx).Where("uid = ? AND week_id = ?", uid, weekID).Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &models.Week{
		WeekID:            row.WeekID,
		VentEntryCount:    row.VentEntryCount,
		LastVentSessionAt: row.LastVentSessionAt,
		CreatedAt:         row.CreatedAt,
		LastUpdated:       row.LastUpdated,
	}, nil
}

func ensureWeek(tx *gorm.DB, uid, weekID string, now time.Time) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&weekRow{
		UID:         uid,
		WeekID:      weekID,
		CreatedAt:   now,
		LastUpdated: now,
	}).Error
}

// SaveVentSession inserts with ON CONFLICT DO NOTHING; only the insert that
// lands bumps the week counter, all inside one transaction.
func (s *Store) SaveVentSession(ctx context.Context, uid, weekID string, vs *models.VentSession, now time.Time) (bool, error) {
	msgs := toMessageLog(vs.Messages)

	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWeek(tx, uid, weekID, now); err != nil {
			return err
		}

		completed := now
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ventSessionRow{
			UID:             uid,
			WeekID:          weekID,
			SessionID:       vs.ID,
			StartTime:       vs.StartTime,
			DurationMinutes: vs.DurationMinutes,
			Messages:        msgs,
			CompletedAt:     &completed,
			CreatedAt:       now,
			LastUpdated:     now,
		})
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected == 1

		weekQ := tx.Model(&weekRow{}).Where("uid = ? AND week_id = ?", uid, weekID)
		if created {
			return weekQ.Updates(map[string]interface{}{
				"vent_entry_count":     gorm.Expr("vent_entry_count + 1"),
				"last_vent_session_at": now,
				"last_updated":         now,
			}).Error
		}

		err := tx.Model(&ventSessionRow{}).
			Where("uid = ? AND week_id = ? AND session_id = ?", uid, weekID, vs.ID).
			Updates(map[string]interface{}{
				"start_time":       vs.StartTime,
				"duration_minutes": vs.DurationMinutes,
				"messages":         msgs,
				"completed_at":     now,
				"last_updated":     now,
			}).Error
		if err != nil {
			return err
		}
		return weekQ.Update("last_updated", now).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Store) GetVentSession(ctx context.Context, uid, weekID, sessionID string) (*models.VentSession, error) {
	var row ventSessionRow
	err := s.db.WithContext(ctx).
		Where("uid = ? AND week_id = ? AND session_id = ?", uid, weekID, sessionID).
		Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	vs := row.toModel()
	return &vs, nil
}

func (s *Store) ListVentSessions(ctx context.Context, uid, weekID string) ([]models.VentSession, error) {
	var rows []ventSessionRow
	err := s.db.WithContext(ctx).
		Where("uid = ? AND week_id = ?", uid, weekID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.VentSession, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (s *Store) SaveMentorEntry(ctx context.Context, uid, weekID string, e *models.MentorEntry, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWeek(tx, uid, weekID, now); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&mentorEntryRow{
			UID:         uid,
			WeekID:      weekID,
			Messages:    toMessageLog(e.Messages),
			Summary:     e.Summary,
			Timestamp:   e.Timestamp,
			LastUpdated: now,
		}).Error
	})
}

func (s *Store) GetMentorEntry(ctx context.Context, uid, weekID string) (*models.MentorEntry, error) {
	var row mentorEntryRow
	err := s.db.WithContext(ctx).Where("uid = ? AND week_id = ?", uid, weekID).Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &models.MentorEntry{
		UID:         uid,
		WeekID:      weekID,
		Messages:    fromMessageLog(row.Messages),
		Summary:     row.Summary,
		Timestamp:   row.Timestamp,
		LastUpdated: row.LastUpdated,
	}, nil
}

// ---- drafts ----

func (s *Store) SaveDraft(ctx context.Context, uid, weekID, entryID string, d *models.Draft) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&draftRow{
		UID:             uid,
		WeekID:          weekID,
		EntryID:         entryID,
		Mode:            string(d.Mode),
		Messages:        toMessageLog(d.Messages),
		StartTime:       d.StartTime,
		DurationMinutes: d.DurationMinutes,
		LastUpdated:     d.LastUpdated,
	}).Error
}

func (s *Store) GetDraft(ctx context.Context, uid, weekID, entryID string) (*models.Draft, error) {
	var row draftRow
	err := s.db.WithContext(ctx).
		Where("uid = ? AND week_id = ? AND entry_id = ?", uid, weekID, entryID).
		Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &models.Draft{
		Mode:            models.Mode(row.Mode),
		Messages:        fromMessageLog(row.Messages),
		StartTime:       row.StartTime,
		DurationMinutes: row.DurationMinutes,
		LastUpdated:     row.LastUpdated,
	}, nil
}

func (s *Store) DeleteDraft(ctx context.Context, uid, weekID, entryID string) error {
	return s.db.WithContext(ctx).
		Where("uid = ? AND week_id = ? AND entry_id = ?", uid, weekID, entryID).
		Delete(&draftRow{}).Error
}

// ---- journal ----

func (s *Store) SaveJournalEntry(ctx context.Context, uid, date, content string, now time.Time) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "last_updated"}),
	}).Create(&journalRow{UID: uid, Date: date, Content: content, LastUpdated: now}).Error
}

func (s *Store) GetJournalEntry(ctx context.Context, uid, date string) (*models.JournalEntry, error) {
	var row journalRow
	if err := s.db.WithContext(ctx).Where("uid = ? AND date = ?", uid, date).Take(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &models.JournalEntry{Date: row.Date, Content: row.Content, LastUpdated: row.LastUpdated}, nil
}

func (s *Store) listJournal(q *gorm.DB) ([]models.JournalEntry, error) {
	var rows []journalRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.JournalEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.JournalEntry{Date: r.Date, Content: r.Content, LastUpdated: r.LastUpdated})
	}
	return out, nil
}

func (s *Store) ListJournalEntries(ctx context.Context, uid, fromDate, toDate string) ([]models.JournalEntry, error) {
	return s.listJournal(s.db.WithContext(ctx).
		Where("uid = ? AND date >= ? AND date <= ?", uid, fromDate, toDate).
		Order("date ASC"))
}

func (s *Store) ListAllJournalEntries(ctx context.Context, uid string) ([]models.JournalEntry, error) {
	return s.listJournal(s.db.WithContext(ctx).Where("uid = ?", uid).Order("date DESC"))
}
