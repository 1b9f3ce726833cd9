package ratelimit

import (
	"context"
	"time"

	"github.com/nnvstore/backend/internal/kv"
)

const (
	LoginWindow      = 15 * time.Minute
	LoginMaxAttempts = 5
)

// LoginLimiter is a fixed-window per-IP counter backed by the shared kv
// store, so the window holds across instances and restarts.
type LoginLimiter struct {
	Store kv.Store
}

// Allow counts one attempt for ip and reports whether it is still within the
// window budget. retryAfter is the remaining window when blocked.
func (l *LoginLimiter) Allow(ctx context.Context, ip string) (allowed bool, retryAfter time.Duration, err error) {
	key := "login_attempts:" + ip
	n, err := l.Store.Incr(ctx, key, LoginWindow)
	if err != nil {
		return false, 0, err
	}
	if n <= LoginMaxAttempts {
		return true, 0, nil
	}
	ttl, err := l.Store.TTL(ctx, key)
	if err != nil {
		return false, 0, err
	}
	if ttl <= 0 {
		ttl = LoginWindow
	}
	return false, ttl, nil
}

// Reset clears the counter for ip after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, ip string) error {
	return l.Store.Delete(ctx, "login_attempts:"+ip)
}
