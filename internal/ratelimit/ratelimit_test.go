package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nnvstore/backend/internal/kv"
)

func TestAllowWithinBudget(t *testing.T) {
	l := &LoginLimiter{Store: kv.NewInMemoryStore()}
	ctx := context.Background()

	for i := 0; i < LoginMaxAttempts; i++ {
		allowed, retryAfter, err := l.Allow(ctx, "192.0.2.1")
		require.NoError(t, err)
		require.True(t, allowed)
		require.Zero(t, retryAfter)
	}

	allowed, retryAfter, err := l.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Greater(t, retryAfter, time.Duration(0))
	require.LessOrEqual(t, retryAfter, LoginWindow)
}

func TestAllowIsPerIP(t *testing.T) {
	l := &LoginLimiter{Store: kv.NewInMemoryStore()}
	ctx := context.Background()

	for i := 0; i < LoginMaxAttempts+1; i++ {
		l.Allow(ctx, "192.0.2.1")
	}

	allowed, _, err := l.Allow(ctx, "192.0.2.2")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestResetReopensWindow(t *testing.T) {
	l := &LoginLimiter{Store: kv.NewInMemoryStore()}
	ctx := context.Background()

	for i := 0; i < LoginMaxAttempts+1; i++ {
		l.Allow(ctx, "192.0.2.1")
	}
	allowed, _, err := l.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, l.Reset(ctx, "192.0.2.1"))

	allowed, _, err = l.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	require.True(t, allowed)
}
