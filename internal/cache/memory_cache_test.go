package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Noticed []string `json:"noticed"`
}

func TestMemoryCache_RoundTripAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	var got payload
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "k", payload{Noticed: []string{"a"}}, time.Minute))
	hit, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a"}, got.Noticed)

	require.NoError(t, c.Del(ctx, "k", "missing"))
	hit, _ = c.GetJSON(ctx, "k", &got)
	assert.False(t, hit)
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.SetJSON(ctx, "k", payload{}, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got payload
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)
	c.c.Set("k", []byte("{not json"), time.Minute)

	var got payload
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	_, still := c.c.Get("k")
	assert.False(t, still)
}
