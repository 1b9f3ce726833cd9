package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/mykafka"
)

var (
	ErrValidation        = errors.New("validation")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSearchUnavailable = errors.New("search unavailable")
)

// LockedError reports an account lockout together with how long the client
// should wait before retrying.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, retry in %s", e.RetryAfter.Round(time.Second))
}

// RateLimitedError reports a per-IP window exhaustion.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

const publishTimeout = 5 * time.Second

// publish sends a domain event best-effort: failures are logged, never
// surfaced to the request.
func publish(ctx context.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}
