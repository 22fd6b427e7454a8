package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/journai/internal/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 11, 5, 14, 30, 15, 0, time.UTC)}
}

func TestLifecycle_StartStampsWeekAndDate(t *testing.T) {
	c := newClock()
	l := New(c.now)
	assert.Equal(t, StateIdle, l.State())

	require.NoError(t, l.Start(models.ModeVent, 0))
	assert.True(t, l.IsActive())
	assert.Equal(t, "2025-W45", l.WeekID())
	assert.Equal(t, "2025-11-05", l.Date())
	assert.Equal(t, DefaultVentMinutes, l.DurationMinutes())
	assert.Equal(t, "2025-11-05_143015", l.ID())
	assert.Empty(t, l.Messages())
}

func TestLifecycle_MentorUsesFixedSlot(t *testing.T) {
	l := New(newClock().now)
	require.NoError(t, l.Start(models.ModeMentor, 0))
	assert.Equal(t, DefaultMentorMinutes, l.DurationMinutes())
	assert.Equal(t, models.MentorSlot, l.ID())
}

func TestLifecycle_Transitions(t *testing.T) {
	l := New(newClock().now)

	assert.ErrorIs(t, l.AddMessage(models.Message{Role: models.RoleUser, Content: "x"}), ErrNotActive)
	assert.ErrorIs(t, l.End(), ErrNotActive)
	assert.ErrorIs(t, l.Start("journal", 10), ErrInvalidMode)

	require.NoError(t, l.Start(models.ModeVent, 10))
	assert.ErrorIs(t, l.Start(models.ModeVent, 10), ErrAlreadyActive)

	require.NoError(t, l.AddMessage(models.Message{Role: models.RoleUser, Content: "hello"}))
	require.NoError(t, l.End())
	assert.Equal(t, StateEnded, l.State())
	assert.Len(t, l.Messages(), 1, "log stays readable after end")
	assert.ErrorIs(t, l.AddMessage(models.Message{Role: models.RoleUser, Content: "late"}), ErrNotActive)

	require.NoError(t, l.Start(models.ModeVent, 10))
	assert.Empty(t, l.Messages(), "restart clears the log")
}

func TestLifecycle_MessagesKeepOrderAndTimestamps(t *testing.T) {
	c := newClock()
	l := New(c.now)
	require.NoError(t, l.Start(models.ModeVent, 30))

	require.NoError(t, l.AddMessage(models.Message{Role: models.RoleUser, Content: "one"}))
	c.advance(time.Minute)
	require.NoError(t, l.AddMessage(models.Message{Role: models.RoleAssistant, Content: "two"}))

	msgs := l.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)
	require.NotNil(t, msgs[1].Timestamp)
	assert.Equal(t, c.t.UnixMilli(), *msgs[1].Timestamp)

	msgs[0].Content = "mutated"
	assert.Equal(t, "one", l.Messages()[0].Content)
}

func TestLifecycle_TimeRemaining(t *testing.T) {
	c := newClock()
	l := New(c.now)
	require.NoError(t, l.Start(models.ModeVent, 30))

	assert.InDelta(t, 30, l.TimeRemaining(c.t), 1e-9)
	assert.InDelta(t, 20, l.TimeRemaining(c.t.Add(10*time.Minute)), 1e-9)
	assert.False(t, l.Expired(c.t.Add(29*time.Minute)))
	assert.Zero(t, l.TimeRemaining(c.t.Add(45*time.Minute)))
	assert.True(t, l.Expired(c.t.Add(30*time.Minute)))
	assert.True(t, l.IsActive(), "expiry does not end the session")

	require.NoError(t, l.End())
	assert.Zero(t, l.TimeRemaining(c.t))
}

func TestLifecycle_RestoreKeepsStartTime(t *testing.T) {
	c := newClock()
	started := c.t.Add(-10 * time.Minute)
	l := New(c.now)

	prior := []models.Message{{Role: models.RoleUser, Content: "earlier"}}
	require.NoError(t, l.Restore(models.ModeVent, 30, prior, started))
	assert.Equal(t, started, l.StartTime())
	assert.InDelta(t, 20, l.TimeRemaining(c.t), 1e-9)
	assert.Len(t, l.Messages(), 1)

	snap := l.Snapshot()
	assert.Equal(t, models.ModeVent, snap.Mode)
	assert.Equal(t, started.UnixMilli(), snap.StartTime)
	assert.Equal(t, 30, snap.DurationMinutes)
	assert.Equal(t, c.t, snap.LastUpdated)
}

func TestSessionID(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("UTC+2", 2*3600))
	assert.Equal(t, "2025-01-02_010405", SessionID(start))
}
