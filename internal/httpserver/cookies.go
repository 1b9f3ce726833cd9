package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"

	// The refresh cookie is only ever sent to the refresh/logout endpoints.
	RefreshCookiePath = "/api/auth"
)

func createCookie(name, value, path string, exp time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func setTokenCookies(c echo.Context, access, refresh string, accessExp, refreshExp time.Time, secure bool) {
	c.SetCookie(createCookie(AccessCookieName, access, "/", accessExp, secure))
	c.SetCookie(createCookie(RefreshCookieName, refresh, RefreshCookiePath, refreshExp, secure))
}

func clearTokenCookies(c echo.Context, secure bool) {
	expired := time.Now().Add(-time.Hour)
	c.SetCookie(createCookie(AccessCookieName, "", "/", expired, secure))
	c.SetCookie(createCookie(RefreshCookieName, "", RefreshCookiePath, expired, secure))
}
