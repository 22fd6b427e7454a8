// Package memory is the in-process Store used for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

type weekData struct {
	week     models.Week
	sessions map[string]models.VentSession
	mentor   *models.MentorEntry
}

type userData struct {
	user    models.User
	exists  bool // user document written (TouchUser/PutUser)
	weeks   map[string]*weekData
	drafts  map[string]models.Draft // keyed weekID/entryID
	journal map[string]models.JournalEntry
}

// Store keeps everything behind one mutex, so the vent counter update is atomic.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userData
}

var _ repositories.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{users: make(map[string]*userData)}
}

func (s *Store) Close(ctx context.Context) error { return nil }

// PutUser replaces a user document as-is, admin flag included.
func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ud := s.userLocked(u.UID)
	ud.user = u
	ud.exists = true
}

func (s *Store) userLocked(uid string) *userData {
	ud, ok := s.users[uid]
	if !ok {
		ud = &userData{
			user:    models.User{UID: uid},
			weeks:   make(map[string]*weekData),
			drafts:  make(map[string]models.Draft),
			journal: make(map[string]models.JournalEntry),
		}
		s.users[uid] = ud
	}
	return ud
}

func (s *Store) weekLocked(uid, weekID string, now time.Time) *weekData {
	ud := s.userLocked(uid)
	wd, ok := ud.weeks[weekID]
	if !ok {
		wd = &weekData{
			week:     models.Week{WeekID: weekID, CreatedAt: now, LastUpdated: now},
			sessions: make(map[string]models.VentSession),
		}
		ud.weeks[weekID] = wd
	}
	return wd
}

func (s *Store) findWeek(uid, weekID string) (*weekData, bool) {
	ud, ok := s.users[uid]
	if !ok {
		return nil, false
	}
	wd, ok := ud.weeks[weekID]
	return wd, ok
}

func copyMessages(in []models.Message) []models.Message {
	if in == nil {
		return []models.Message{}
	}
	return append([]models.Message(nil), in...)
}

// ─────────────────────────────────────────
// Users
// ─────────────────────────────────────────

func (s *Store) GetUser(ctx context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ud, ok := s.users[uid]
	if !ok || !ud.exists {
		return nil, utils.ErrNotFound
	}
	u := ud.user
	return &u, nil
}

func (s *Store) TouchUser(ctx context.Context, p models.UserProfile, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud := s.userLocked(p.UID)
	created := !ud.exists
	if created || ud.user.CreatedAt.IsZero() {
		ud.user.CreatedAt = now
	}
	ud.exists = true
	ud.user.Email = p.Email
	ud.user.DisplayName = p.DisplayName
	ud.user.PhotoURL = p.PhotoURL
	ud.user.LastLoginAt = now
	return created, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, ud := range s.users {
		if !ud.exists {
			continue
		}
		out = append(out, ud.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

// ─────────────────────────────────────────
// Weeks, sessions, mentor entries, drafts
// ─────────────────────────────────────────

func (s *Store) GetWeek(ctx context.Context, uid, weekID string) (*models.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wd, ok := s.findWeek(uid, weekID)
	if !ok {
		return nil, utils.ErrNotFound
	}
	w := wd.week
	return &w, nil
}

func (s *Store) SaveVentSession(ctx context.Context, uid, weekID string, vs *models.VentSession, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wd := s.weekLocked(uid, weekID, now)
	wd.week.LastUpdated = now

	prev, exists := wd.sessions[vs.ID]
	createdAt := now
	if exists {
		createdAt = prev.CreatedAt
	}
	completed := now
	wd.sessions[vs.ID] = models.VentSession{
		ID:              vs.ID,
		StartTime:       vs.StartTime,
		DurationMinutes: vs.DurationMinutes,
		Messages:        copyMessages(vs.Messages),
		CompletedAt:     &completed,
		CreatedAt:       createdAt,
		LastUpdated:     now,
	}

	if !exists {
		last := now
		wd.week.VentEntryCount++
		wd.week.LastVentSessionAt = &last
	}
	return !exists, nil
}

func (s *Store) GetVentSession(ctx context.Context, uid, weekID, sessionID string) (*models.VentSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wd, ok := s.findWeek(uid, weekID)
	if !ok {
		return nil, utils.ErrNotFound
	}
	vs, ok := wd.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	vs.Messages = copyMessages(vs.Messages)
	return &vs, nil
}

func (s *Store) ListVentSessions(ctx context.Context, uid, weekID string) ([]models.VentSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wd, ok := s.findWeek(uid, weekID)
	if !ok {
		return []models.VentSession{}, nil
	}
	out := make([]models.VentSession, 0, len(wd.sessions))
	for _, vs := range wd.sessions {
		vs.Messages = copyMessages(vs.Messages)
		out = append(out, vs)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) SaveMentorEntry(ctx context.Context, uid, weekID string, e *models.MentorEntry, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wd := s.weekLocked(uid, weekID, now)
	cp := *e
	cp.UID = uid
	cp.WeekID = weekID
	cp.Messages = copyMessages(e.Messages)
	cp.LastUpdated = now
	wd.mentor = &cp
	return nil
}

func (s *Store) GetMentorEntry(ctx context.Context, uid, weekID string) (*models.MentorEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wd, ok := s.findWeek(uid, weekID)
	if !ok || wd.mentor == nil {
		return nil, utils.ErrNotFound
	}
	cp := *wd.mentor
	cp.Messages = copyMessages(cp.Messages)
	return &cp, nil
}

func draftKey(weekID, entryID string) string { return weekID + "/" + entryID }

func (s *Store) SaveDraft(ctx context.Context, uid, weekID, entryID string, d *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *d
	cp.Messages = copyMessages(d.Messages)
	s.userLocked(uid).drafts[draftKey(weekID, entryID)] = cp
	return nil
}

func (s *Store) GetDraft(ctx context.Context, uid, weekID, entryID string) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ud, ok := s.users[uid]
	if !ok {
		return nil, utils.ErrNotFound
	}
	d, ok := ud.drafts[draftKey(weekID, entryID)]
	if !ok {
		return nil, utils.ErrNotFound
	}
	d.Messages = copyMessages(d.Messages)
	return &d, nil
}

func (s *Store) DeleteDraft(ctx context.Context, uid, weekID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ud, ok := s.users[uid]; ok {
		delete(ud.drafts, draftKey(weekID, entryID))
	}
	return nil
}

// ─────────────────────────────────────────
// Journal
// ─────────────────────────────────────────

func (s *Store) SaveJournalEntry(ctx context.Context, uid, date, content string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ud := s.userLocked(uid)
	ud.journal[date] = models.JournalEntry{Date: date, Content: content, LastUpdated: now}
	return nil
}

func (s *Store) GetJournalEntry(ctx context.Context, uid, date string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ud, ok := s.users[uid]
	if !ok {
		return nil, utils.ErrNotFound
	}
	e, ok := ud.journal[date]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &e, nil
}

func (s *Store) ListJournalEntries(ctx context.Context, uid, fromDate, toDate string) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.JournalEntry{}
	ud, ok := s.users[uid]
	if !ok {
		return out, nil
	}
	for date, e := range ud.journal {
		if date >= fromDate && date <= toDate {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) ListAllJournalEntries(ctx context.Context, uid string) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.JournalEntry{}
	ud, ok := s.users[uid]
	if !ok {
		return out, nil
	}
	for _, e := range ud.journal {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
