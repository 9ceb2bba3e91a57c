package request

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
)

const defaultTTL = 24 * time.Hour

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches request metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTTL overrides how long a new request stays open.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// Service owns the blood-request lifecycle.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *Metrics
	ttl     time.Duration
	now     func() time.Time
}

// NewService constructs the request service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		ttl:    defaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new open request with the configured TTL.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Request, error) {
	now := s.now()
	r := &Request{
		ID:         id.NewRequestID(),
		SeekerName: req.SeekerName,
		BloodGroup: req.ParsedBloodGroup(),
		City:       req.City,
		Latitude:   *req.Lat,
		Longitude:  *req.Lng,
		Urgency:    req.ParsedUrgency(),
		Note:       req.Note,
		Status:     StatusOpen,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, storeError(err, "request not found")
	}
	if s.metrics != nil {
		s.metrics.RecordCreated()
	}
	s.logger.InfoContext(ctx, "blood request created",
		"request_id", r.ID.String(),
		"blood_group", r.BloodGroup.String(),
		"urgency", r.Urgency.String(),
	)
	return r, nil
}

// Get returns a request by ID regardless of status.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*Request, error) {
	r, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, storeError(err, "request not found")
	}
	return r, nil
}

// ListOpen returns requests still accepting donors. Requests past their
// deadline are filtered out even before the expiry sweep marks them.
func (s *Service) ListOpen(ctx context.Context) ([]*Request, error) {
	stored, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, storeError(err, "request not found")
	}
	now := s.now()
	open := make([]*Request, 0, len(stored))
	for _, r := range stored {
		if r.Open(now) {
			open = append(open, r)
		}
	}
	return open, nil
}

// Fulfill closes an open request. Fulfilling a closed or past-deadline
// request is a conflict.
func (s *Service) Fulfill(ctx context.Context, requestID id.RequestID) (*Request, error) {
	r, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, storeError(err, "request not found")
	}
	if r.Status != StatusOpen {
		return nil, dErrors.New(dErrors.CodeConflict, "request is already "+r.Status.String())
	}
	if !r.ExpiresAt.After(s.now()) {
		return nil, dErrors.New(dErrors.CodeConflict, "request has expired")
	}
	if err := s.store.UpdateStatus(ctx, requestID, StatusFulfilled); err != nil {
		return nil, storeError(err, "request not found")
	}
	r.Status = StatusFulfilled
	if s.metrics != nil {
		s.metrics.RecordFulfilled()
	}
	s.logger.InfoContext(ctx, "blood request fulfilled", "request_id", r.ID.String())
	return r, nil
}

func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "request already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "request store failure")
	}
}
