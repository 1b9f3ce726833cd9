package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnvstore/backend/internal/models"
	"github.com/nnvstore/backend/internal/service"
)

type AuthHandler struct {
	Svc           *service.AuthService
	SecureCookies bool
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userPayload(u *models.User) echo.Map {
	return echo.Map{
		"id":       u.ID,
		"email":    u.Email,
		"phone":    u.Phone,
		"is_admin": u.IsAdmin,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	user, pair, err := h.Svc.Register(ctx, req.Email, req.Password, req.Phone)
	if err != nil {
		return translate(ctx, err)
	}

	setTokenCookies(c, pair.AccessToken, pair.RefreshToken, pair.AccessExp, pair.RefreshExp, h.SecureCookies)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"user":    userPayload(user),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	user, pair, err := h.Svc.Login(ctx, c.RealIP(), req.Email, req.Password)
	if err != nil {
		return translate(ctx, err)
	}

	setTokenCookies(c, pair.AccessToken, pair.RefreshToken, pair.AccessExp, pair.RefreshExp, h.SecureCookies)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    userPayload(user),
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token required")
	}

	ctx := c.Request().Context()
	_, pair, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		return translate(ctx, err)
	}

	setTokenCookies(c, pair.AccessToken, pair.RefreshToken, pair.AccessExp, pair.RefreshExp, h.SecureCookies)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if cookie, err := c.Cookie(RefreshCookieName); err == nil && cookie.Value != "" {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			// Cookies are cleared regardless.
			clearTokenCookies(c, h.SecureCookies)
			return translate(ctx, err)
		}
	}
	clearTokenCookies(c, h.SecureCookies)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Svc.LogoutAll(ctx, id); err != nil {
		clearTokenCookies(c, h.SecureCookies)
		return translate(ctx, err)
	}
	clearTokenCookies(c, h.SecureCookies)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out from all devices"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := h.Svc.CurrentUser(ctx, id)
	if err != nil {
		return translate(ctx, err)
	}
	payload := userPayload(user)
	payload["created_at"] = user.CreatedAt
	return c.JSON(http.StatusOK, echo.Map{"user": payload})
}
