package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/repo"
	"github.com/nnvstore/backend/internal/service"
)

// translate maps domain errors to HTTP responses. Anything unmapped is
// logged with detail and answered with a generic 500, never the raw error.
func translate(ctx context.Context, err error) error {
	var locked *service.LockedError
	var limited *service.RateLimitedError

	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrInvalidCredentials):
		// Same message whichever credential was wrong.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, repo.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, "already exists")
	case errors.Is(err, repo.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
	case errors.Is(err, repo.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrSearchUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is temporarily unavailable")
	case errors.As(err, &locked):
		return echo.NewHTTPError(http.StatusLocked, echo.Map{
			"error":       "account temporarily locked due to multiple failed attempts",
			"retry_after": int(locked.RetryAfter.Seconds()),
		})
	case errors.As(err, &limited):
		return echo.NewHTTPError(http.StatusTooManyRequests, echo.Map{
			"error":       "too many login attempts",
			"retry_after": int(limited.RetryAfter.Seconds()),
		})
	default:
		logging.FromContext(ctx).Error("unexpected error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
