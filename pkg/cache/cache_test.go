package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New[string]()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
	assert.True(t, c.Has("k"))
}

func TestExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New[int](WithClock[int](func() time.Time { return now }))

	c.Set("k", 42)

	// Still live just inside the TTL.
	now = now.Add(DefaultTTL - time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	// Expired entries are lazily removed on access.
	now = now.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCustomTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New[int](WithClock[int](func() time.Time { return now }))

	c.SetTTL("k", 1, time.Hour)
	now = now.Add(30 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestCapacityEviction(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c := New[int](WithClock[int](func() time.Time { return now }))

	// Insert 101 distinct keys with strictly increasing timestamps.
	for i := 0; i <= 100; i++ {
		now = base.Add(time.Duration(i) * time.Millisecond)
		c.Set(fmt.Sprintf("key-%d", i), i)
	}

	assert.LessOrEqual(t, c.Len(), 100)

	// The earliest-inserted ~20 keys were dropped to make room.
	for i := 0; i < 20; i++ {
		assert.False(t, c.Has(fmt.Sprintf("key-%d", i)), "key-%d should be evicted", i)
	}
	assert.True(t, c.Has("key-100"))
}

func TestGetOrFetch(t *testing.T) {
	c := New[string]()
	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		return "fetched", nil
	}

	got, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched", got)
	assert.Equal(t, 1, calls)

	// Hit: factory is not invoked again.
	got, err = c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched", got)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetchCustomTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New[string](WithClock[string](func() time.Time { return now }))

	got, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (string, error) {
		return "v", nil
	}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	// Outlives the default TTL but not the per-call one.
	now = now.Add(DefaultTTL + time.Minute)
	assert.True(t, c.Has("k"))
	now = now.Add(time.Hour)
	assert.False(t, c.Has("k"))
}

func TestGetOrFetchError(t *testing.T) {
	c := New[string]()
	wantErr := errors.New("upstream down")

	_, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (string, error) {
		return "", wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// Failed fetches are not cached.
	assert.False(t, c.Has("k"))
}
