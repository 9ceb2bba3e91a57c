// Package service implements donor profile management and scored listings.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"hemolink/internal/donor/metrics"
	"hemolink/internal/donor/models"
	"hemolink/internal/eligibility"
	"hemolink/internal/healthtext"
	"hemolink/internal/sentinel"
	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
)

// Store defines the persistence interface for donor profiles.
// Error Contract:
// - GetByID and GetByOwner return sentinel.ErrNotFound when no profile exists
// - Create returns sentinel.ErrConflict when the owner already has a profile
// - Other failures are wrapped infrastructure errors
type Store interface {
	Create(ctx context.Context, donor *models.Donor) error
	GetByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	GetByOwner(ctx context.Context, ownerID id.UserID) (*models.Donor, error)
	Update(ctx context.Context, donor *models.Donor) error
	SetAvailability(ctx context.Context, donorID id.DonorID, available bool, updatedAt time.Time) error
	List(ctx context.Context) ([]*models.Donor, error)
}

// Evaluator is the scoring surface the donor service consumes.
type Evaluator interface {
	Evaluate(ctx context.Context, in eligibility.Input) eligibility.Result
	NormalizeHealth(ctx context.Context, text string) []healthtext.Flag
}

const defaultScoringConcurrency = 8

type Option func(*Service)

// Service manages donor profiles and their suitability scores.
type Service struct {
	store       Store
	gateway     Evaluator
	logger      *slog.Logger
	metrics     *metrics.Metrics
	concurrency int
	now         func() time.Time
}

func NewService(store Store, gateway Evaluator, opts ...Option) *Service {
	svc := &Service{
		store:       store,
		gateway:     gateway,
		logger:      slog.Default(),
		concurrency: defaultScoringConcurrency,
		now:         time.Now,
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

// WithScoringConcurrency caps concurrent gateway calls during listings.
func WithScoringConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// Create registers an unowned donor profile from the public endpoint.
// Health flags are derived from the narrative at write time; the scoring
// gateway re-derives them per evaluation when a narrative is present.
func (s *Service) Create(ctx context.Context, req *models.ProfileRequest) (*models.Donor, error) {
	donor := s.buildDonor(ctx, req, id.NewDonorID(), id.UserID{}, s.now())
	if err := s.store.Create(ctx, donor); err != nil {
		return nil, s.storeError(err, "donor not found")
	}
	if s.metrics != nil {
		s.metrics.RecordDonorCreated()
	}
	s.logger.InfoContext(ctx, "donor profile created",
		"donor_id", donor.ID,
		"blood_group", donor.BloodGroup,
		"city", donor.City,
	)
	return donor, nil
}

// Get fetches a donor profile by ID.
func (s *Service) Get(ctx context.Context, donorID id.DonorID) (*models.Donor, error) {
	donor, err := s.store.GetByID(ctx, donorID)
	if err != nil {
		return nil, s.storeError(err, "donor not found")
	}
	return donor, nil
}

// UpdateProfile upserts the caller's own donor profile: first write creates it
// bound to the account, later writes replace the profile fields.
func (s *Service) UpdateProfile(ctx context.Context, ownerID id.UserID, req *models.ProfileRequest) (*models.Donor, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}

	now := s.now()
	existing, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.storeError(err, "donor profile not found")
		}
		donor := s.buildDonor(ctx, req, id.NewDonorID(), ownerID, now)
		if err := s.store.Create(ctx, donor); err != nil {
			return nil, s.storeError(err, "donor profile not found")
		}
		if s.metrics != nil {
			s.metrics.RecordDonorCreated()
		}
		s.logger.InfoContext(ctx, "donor profile created for account",
			"donor_id", donor.ID,
			"blood_group", donor.BloodGroup,
		)
		return donor, nil
	}

	donor := s.buildDonor(ctx, req, existing.ID, ownerID, now)
	donor.CreatedAt = existing.CreatedAt
	if err := s.store.Update(ctx, donor); err != nil {
		return nil, s.storeError(err, "donor profile not found")
	}
	if s.metrics != nil {
		s.metrics.RecordProfileUpdate()
	}
	s.logger.InfoContext(ctx, "donor profile updated", "donor_id", donor.ID)
	return donor, nil
}

// SetAvailability toggles the caller's availability flag.
func (s *Service) SetAvailability(ctx context.Context, ownerID id.UserID, available bool) (*models.Donor, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}

	donor, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.storeError(err, "donor profile not found")
	}

	now := s.now()
	if err := s.store.SetAvailability(ctx, donor.ID, available, now); err != nil {
		return nil, s.storeError(err, "donor profile not found")
	}
	donor.IsAvailableNow = available
	donor.UpdatedAt = now
	if s.metrics != nil {
		s.metrics.RecordAvailabilityToggle()
	}
	return donor, nil
}

// MyProfile returns the caller's profile with its current self-score.
// The score uses no origin point, so distance contributes nothing.
func (s *Service) MyProfile(ctx context.Context, ownerID id.UserID) (*models.ScoredDonor, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	donor, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.storeError(err, "donor profile not found")
	}
	scored := s.scoreOne(ctx, donor, s.now())
	return &scored, nil
}

// ListWithScores returns every donor with a current score. No origin point is
// involved, so the listing keeps store order rather than a distance sort.
func (s *Service) ListWithScores(ctx context.Context) ([]models.ScoredDonor, error) {
	donors, err := s.store.List(ctx)
	if err != nil {
		return nil, s.storeError(err, "donor not found")
	}

	start := time.Now()
	scored := s.scoreAll(ctx, donors)
	if s.metrics != nil {
		s.metrics.ObserveListScoring(time.Since(start).Seconds())
	}
	return scored, nil
}

// scoreAll fans out gateway evaluations with bounded concurrency. Results land
// at their donor's index, so concurrency never reorders the listing.
func (s *Service) scoreAll(ctx context.Context, donors []*models.Donor) []models.ScoredDonor {
	scored := make([]models.ScoredDonor, len(donors))
	now := s.now()

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, donor := range donors {
		i, donor := i, donor
		g.Go(func() error {
			scored[i] = s.scoreOne(ctx, donor, now)
			return nil
		})
	}
	_ = g.Wait()
	return scored
}

func (s *Service) scoreOne(ctx context.Context, donor *models.Donor, now time.Time) models.ScoredDonor {
	result := s.gateway.Evaluate(ctx, eligibility.Input{
		DaysSinceLastDonation: donor.DaysSinceLastDonation(now),
		AvailableNow:          donor.IsAvailableNow,
		HealthFlags:           donor.HealthFlags,
		HealthSummary:         donor.HealthSummary,
	})
	return models.ScoredDonor{Donor: *donor, Result: result}
}

func (s *Service) buildDonor(ctx context.Context, req *models.ProfileRequest, donorID id.DonorID, ownerID id.UserID, now time.Time) *models.Donor {
	var flags []healthtext.Flag
	if req.HealthSummary != "" {
		flags = s.gateway.NormalizeHealth(ctx, req.HealthSummary)
	}
	return &models.Donor{
		ID:               donorID,
		OwnerID:          ownerID,
		Name:             req.Name,
		DateOfBirth:      req.ParsedDateOfBirth(),
		BloodGroup:       req.ParsedBloodGroup(),
		City:             req.City,
		Phone:            req.Phone,
		Latitude:         *req.Lat,
		Longitude:        *req.Lng,
		IsAvailableNow:   req.IsAvailableNow,
		LastDonationDate: req.LastDonation(),
		HealthFlags:      flags,
		HealthSummary:    req.HealthSummary,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// storeError translates sentinel errors into domain errors exactly once.
func (s *Service) storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "donor profile already exists for this account")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "donor store failure")
	}
}
