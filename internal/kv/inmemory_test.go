package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, time.Minute, ttl)

	now = now.Add(61 * time.Second)
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIncrKeepsWindow(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	n, err := s.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Later increments must not extend the window.
	now = now.Add(30 * time.Second)
	n, err = s.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	ttl, err := s.TTL(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, ttl)

	// After the window the counter restarts.
	now = now.Add(31 * time.Second)
	n, err = s.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestSetWithoutTTLNeverExpires(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	now = now.Add(24 * time.Hour)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, ttl)
}
