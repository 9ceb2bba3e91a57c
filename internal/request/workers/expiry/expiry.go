// Package expiry ages out blood requests: past-deadline open requests are
// marked expired, and finished requests past the retention window are purged.
package expiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RequestStore exposes the sweep operations of the request store.
type RequestStore interface {
	ExpireOlderThan(ctx context.Context, now time.Time) (int, error)
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Result summarizes the transitions performed by a sweep.
type Result struct {
	Expired int
	Purged  int
}

// Worker periodically sweeps the request store.
type Worker struct {
	store     RequestStore
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// Option configures Worker.
type Option func(*Worker)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithRetention overrides how long finished requests are kept when greater
// than zero.
func WithRetention(retention time.Duration) Option {
	return func(w *Worker) {
		if retention > 0 {
			w.retention = retention
		}
	}
}

// WithLogger overrides the logger used for sweep errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New constructs a Worker with the required store and options applied.
func New(store RequestStore, opts ...Option) (*Worker, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	w := &Worker{
		store:     store,
		interval:  10 * time.Minute,
		retention: 7 * 24 * time.Hour,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start runs the sweep periodically until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "request expiry sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep. It expires past-deadline open requests and
// purges finished requests older than the retention window, returning a
// Result with the counts. Errors from the two passes are aggregated.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	now := time.Now()
	var res Result
	var errs []error

	expired, err := w.store.ExpireOlderThan(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("expire open requests: %w", err))
	} else {
		res.Expired = expired
	}

	purged, err := w.store.PurgeFinishedBefore(ctx, now.Add(-w.retention))
	if err != nil {
		errs = append(errs, fmt.Errorf("purge finished requests: %w", err))
	} else {
		res.Purged = purged
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}
