// Package lockout throttles repeated failed logins. Failures are counted
// per account/IP pair inside a rolling window; crossing the threshold locks
// that pair out for a fixed duration while other clients of the same
// account stay unaffected.
package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hemolink/internal/platform/privacy"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/platform/middleware/requesttime"
	platformsync "hemolink/pkg/platform/sync"
)

const (
	defaultMaxFailures  = 5
	defaultWindow       = 15 * time.Minute
	defaultLockDuration = 15 * time.Minute
)

const lockedOutMessage = "too many failed login attempts, try again later"

// Record tracks the failure history for one account/IP pair.
type Record struct {
	Key           string
	FailureCount  int
	LastFailureAt time.Time
	LockedUntil   *time.Time
}

// Store persists lockout records. Get returns (nil, nil) when no record
// exists for the key.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, key string) error
}

// Service decides whether a login attempt may proceed and keeps the
// failure counters current. Read-modify-write sequences are serialized
// per key so concurrent failures for the same pair never lose counts.
type Service struct {
	store        Store
	locks        *platformsync.ShardedMutex
	logger       *slog.Logger
	maxFailures  int
	window       time.Duration
	lockDuration time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger used for lockout events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxFailures overrides how many failures in a window engage the lock.
func WithMaxFailures(n int) Option {
	return func(s *Service) {
		s.maxFailures = n
	}
}

// WithWindow overrides the rolling window failures are counted in.
func WithWindow(d time.Duration) Option {
	return func(s *Service) {
		s.window = d
	}
}

// WithLockDuration overrides how long an engaged lock holds.
func WithLockDuration(d time.Duration) Option {
	return func(s *Service) {
		s.lockDuration = d
	}
}

// NewService creates a lockout service backed by the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		locks:        platformsync.NewShardedMutex(),
		logger:       slog.Default(),
		maxFailures:  defaultMaxFailures,
		window:       defaultWindow,
		lockDuration: defaultLockDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check reports whether a login attempt for the pair may proceed. It
// returns a rate-limited domain error while the pair is locked or still
// over the threshold, and nil once the window has rolled past the last
// failure. Storage errors are returned as-is for the caller to decide on.
func (s *Service) Check(ctx context.Context, email, ip string) error {
	rec, err := s.store.Get(ctx, lockoutKey(email, ip))
	if err != nil {
		return fmt.Errorf("lockout lookup: %w", err)
	}
	if rec == nil {
		return nil
	}

	now := requesttime.Now(ctx)
	if rec.LockedUntil != nil && now.Before(*rec.LockedUntil) {
		return dErrors.New(dErrors.CodeRateLimited, lockedOutMessage)
	}
	if now.Sub(rec.LastFailureAt) >= s.window {
		return nil
	}
	if rec.FailureCount >= s.maxFailures {
		return dErrors.New(dErrors.CodeRateLimited, lockedOutMessage)
	}
	return nil
}

// RecordFailure counts one failed attempt for the pair, engaging the lock
// when the failure count reaches the threshold. Failures older than the
// window are discarded before counting.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) error {
	key := lockoutKey(email, ip)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("lockout lookup: %w", err)
	}

	now := requesttime.Now(ctx)
	if rec == nil || now.Sub(rec.LastFailureAt) >= s.window {
		rec = &Record{Key: key}
	}
	rec.FailureCount++
	rec.LastFailureAt = now

	if rec.FailureCount >= s.maxFailures && rec.LockedUntil == nil {
		until := now.Add(s.lockDuration)
		rec.LockedUntil = &until
		s.logger.Warn("login lockout engaged",
			"email", email,
			"remote_addr_prefix", privacy.AnonymizeIP(ip),
			"failures", rec.FailureCount,
		)
	}

	if err := s.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("lockout update: %w", err)
	}
	return nil
}

// Clear wipes the failure history for the pair, typically after a
// successful login.
func (s *Service) Clear(ctx context.Context, email, ip string) error {
	key := lockoutKey(email, ip)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("lockout clear: %w", err)
	}
	return nil
}

func lockoutKey(email, ip string) string {
	return fmt.Sprintf("auth:%s:%s", email, ip)
}
