package httpserver

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
)

func loggedEcho(buf *bytes.Buffer) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(slog.New(slog.NewJSONHandler(buf, nil))))
	e.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestRequestLoggerUsesGeneratedRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := loggedEcho(&buf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	rid := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, rid)
	require.Contains(t, buf.String(), `"request_id":"`+rid+`"`)
}

func TestRequestLoggerEchoesClientRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := loggedEcho(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "client-supplied-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, "client-supplied-id", rec.Header().Get(echo.HeaderXRequestID))
	require.Contains(t, buf.String(), `"request_id":"client-supplied-id"`)
}
