package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/nnvstore/backend/internal/hash"
	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/models"
	"github.com/nnvstore/backend/internal/mykafka"
	"github.com/nnvstore/backend/internal/ratelimit"
	"github.com/nnvstore/backend/internal/repo"
	"github.com/nnvstore/backend/internal/tokens"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 8

type AuthService struct {
	Repo      *repo.GormRepo
	Limiter   *ratelimit.LoginLimiter
	JWTSecret []byte
	Producer  *mykafka.Producer
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessExp := time.Now().Add(tokens.AccessTokenTTL)
	access, err := tokens.SignAccessToken(user.ID, user.Email, user.IsAdmin, s.JWTSecret, accessExp)
	if err != nil {
		return nil, err
	}

	refresh, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	refreshExp := time.Now().Add(tokens.RefreshTokenTTL)
	if err := s.Repo.SaveRefreshToken(ctx, tokens.Sha256Hex(refresh), user.ID, refreshExp); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string, phone *string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if !emailPattern.MatchString(email) {
		return nil, nil, fmt.Errorf("invalid email: %w", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Phone:        phone,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	l.Info("user registered", "user_id", user.ID)
	publish(ctx, s.Producer, mykafka.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, pair, nil
}

// Login checks the per-IP window, the account lock and the credentials, in
// that order. Credential failures are reported identically whether the email
// or the password was wrong.
func (s *AuthService) Login(ctx context.Context, ip, email, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	allowed, retryAfter, err := s.Limiter.Allow(ctx, ip)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		l.Warn("login rate limited", "ip", ip)
		return nil, nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, nil, repo.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if repo.IsLocked(user) {
		l.Warn("login attempt on locked account", "user_id", user.ID)
		return nil, nil, &LockedError{RetryAfter: repo.RemainingLockTime(user)}
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		if err := s.Repo.RecordFailedAttempt(ctx, user.ID); err != nil {
			l.Error("record failed attempt", "error", err)
		}
		return nil, nil, repo.ErrInvalidCredentials
	}

	if err := s.Repo.ClearFailedAttempts(ctx, user.ID); err != nil {
		return nil, nil, err
	}
	if err := s.Limiter.Reset(ctx, ip); err != nil {
		l.Error("reset login limiter", "error", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	publish(ctx, s.Producer, mykafka.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, pair, nil
}

// Refresh rotates the presented refresh token: the stored hash is retired
// and a fresh pair is issued. A token that was logged out or already rotated
// cannot mint again.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*models.User, *TokenPair, error) {
	if rawRefresh == "" {
		return nil, nil, ErrUnauthorized
	}

	next, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, nil, err
	}
	refreshExp := time.Now().Add(tokens.RefreshTokenTTL)

	old, err := s.Repo.RotateRefreshToken(ctx, tokens.Sha256Hex(rawRefresh), tokens.Sha256Hex(next), refreshExp)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}

	user, err := s.Repo.FindUserByID(ctx, old.UserID)
	if err != nil {
		return nil, nil, err
	}

	accessExp := time.Now().Add(tokens.AccessTokenTTL)
	access, err := tokens.SignAccessToken(user.ID, user.Email, user.IsAdmin, s.JWTSecret, accessExp)
	if err != nil {
		return nil, nil, err
	}

	return user, &TokenPair{
		AccessToken:  access,
		RefreshToken: next,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	if rawRefresh == "" {
		return nil
	}
	return s.Repo.DeleteRefreshToken(ctx, tokens.Sha256Hex(rawRefresh))
}

func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.Repo.DeleteAllRefreshTokensForUser(ctx, userID)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.Repo.FindUserByID(ctx, userID)
}
