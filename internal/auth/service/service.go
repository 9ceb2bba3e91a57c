// Package service implements account registration, login, and identity lookup.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hemolink/internal/auth/device"
	"hemolink/internal/auth/lockout"
	"hemolink/internal/auth/metrics"
	"hemolink/internal/auth/models"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/secrets"
)

// Store defines the persistence interface for accounts.
// Error Contract:
// - GetByID and GetByEmail return sentinel.ErrNotFound when no user exists
// - Create returns sentinel.ErrConflict when the email is already registered
// - Other failures are wrapped infrastructure errors
type Store interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID id.UserID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer mints bearer tokens for authenticated accounts.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role string) (string, error)
}

type Option func(*Service)

// Service manages accounts and issues access tokens.
type Service struct {
	store   Store
	tokens  TokenIssuer
	lockout *lockout.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(store Store, tokens TokenIssuer, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		tokens: tokens,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLockout enables failed-login throttling. Without it every attempt
// goes straight to credential verification.
func WithLockout(ls *lockout.Service) Option {
	return func(s *Service) {
		s.lockout = ls
	}
}

// Register creates an account and returns it with a fresh access token.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	hash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := models.NewUser(id.NewUserID(), req.Name, req.Email, hash, req.ParsedRole(), s.now())
	if err != nil {
		return nil, "", err
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role.String())
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	s.logger.InfoContext(ctx, "account registered",
		"user_id", user.ID,
		"role", user.Role,
	)
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh access
// token. Unknown email and wrong password are indistinguishable to callers,
// and repeated failures lock the account/IP pair out before credentials
// are checked at all.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest, client models.ClientInfo) (*models.User, string, error) {
	if err := s.checkLockout(ctx, req.Email, client.IP); err != nil {
		return nil, "", err
	}

	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", s.rejectLogin(ctx, req.Email, client, "unknown email")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
	}

	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, "", s.rejectLogin(ctx, req.Email, client, "wrong password")
		}
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role.String())
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, req.Email, client.IP); err != nil {
			s.logger.ErrorContext(ctx, "lockout clear failed", "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordLogin()
	}
	s.logger.InfoContext(ctx, "login session opened",
		"user_id", user.ID,
		"device", device.DisplayName(client.UserAgent),
		"device_fingerprint", device.Fingerprint(client.UserAgent),
	)
	return user, token, nil
}

// Me fetches the account behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
	}
	return user, nil
}

// checkLockout refuses the attempt while the account/IP pair is locked.
// An unreachable lockout store fails open: it must not take logins down.
func (s *Service) checkLockout(ctx context.Context, email, ip string) error {
	if s.lockout == nil {
		return nil
	}
	err := s.lockout.Check(ctx, email, ip)
	if err == nil {
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeRateLimited) {
		if s.metrics != nil {
			s.metrics.RecordLockout()
		}
		s.logger.WarnContext(ctx, "login locked out", "email", email)
		return err
	}
	s.logger.ErrorContext(ctx, "lockout check failed, allowing attempt", "error", err)
	return nil
}

// rejectLogin records the failure and returns the uniform credential error.
func (s *Service) rejectLogin(ctx context.Context, email string, client models.ClientInfo, reason string) error {
	if s.lockout != nil {
		if err := s.lockout.RecordFailure(ctx, email, client.IP); err != nil {
			s.logger.ErrorContext(ctx, "lockout bookkeeping failed", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
	s.logger.WarnContext(ctx, "login rejected",
		"email", email,
		"reason", reason,
	)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}
