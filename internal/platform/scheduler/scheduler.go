// Package scheduler wraps robfig/cron for periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler manages named cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a Scheduler logging through the given logger.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers a job under the given name with a cron spec
// (standard 5-field specs and descriptors like "@every 10m").
// If a job with the same name exists, it is replaced.
func (s *Scheduler) Add(name, spec string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[name]; ok {
		s.cron.Remove(prev)
	}

	entryID, err := s.cron.AddFunc(spec, task)
	if err != nil {
		return fmt.Errorf("adding cron entry %q: %w", name, err)
	}

	s.entries[name] = entryID
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins the cron scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once any
// running jobs have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
