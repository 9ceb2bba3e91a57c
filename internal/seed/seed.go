// Package seed loads donor and request fixtures from a YAML file. The server
// applies it at boot when SEED_FILE points at one and the store is still
// empty; hemolinkctl seed applies it unconditionally.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/healthtext"
	"hemolink/internal/request"
	id "hemolink/pkg/domain"
)

const requestTTL = 24 * time.Hour

// File is the fixture document.
type File struct {
	Donors   []DonorFixture   `yaml:"donors"`
	Requests []RequestFixture `yaml:"requests"`
}

// DonorFixture describes one directory entry. Dates are RFC3339 or 2006-01-02.
type DonorFixture struct {
	Name             string  `yaml:"name"`
	BloodGroup       string  `yaml:"blood_group"`
	City             string  `yaml:"city"`
	Phone            string  `yaml:"phone"`
	Lat              float64 `yaml:"lat"`
	Lng              float64 `yaml:"lng"`
	AvailableNow     bool    `yaml:"available_now"`
	LastDonationDate string  `yaml:"last_donation_date"`
	HealthSummary    string  `yaml:"health_summary"`
}

// RequestFixture describes one open blood request.
type RequestFixture struct {
	SeekerName string  `yaml:"seeker_name"`
	BloodGroup string  `yaml:"blood_group"`
	City       string  `yaml:"city"`
	Lat        float64 `yaml:"lat"`
	Lng        float64 `yaml:"lng"`
	Urgency    string  `yaml:"urgency"`
	Note       string  `yaml:"note"`
}

// Parse decodes and validates a fixture document. Fixture validation reuses
// the API request rules so seeded data is exactly what the endpoints accept.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i := range f.Donors {
		if _, err := f.Donors[i].profileRequest(); err != nil {
			return nil, fmt.Errorf("donor fixture %d (%s): %w", i, f.Donors[i].Name, err)
		}
	}
	for i := range f.Requests {
		if _, err := f.Requests[i].createRequest(); err != nil {
			return nil, fmt.Errorf("request fixture %d (%s): %w", i, f.Requests[i].SeekerName, err)
		}
	}
	return &f, nil
}

func (d DonorFixture) profileRequest() (*donormodels.ProfileRequest, error) {
	lat, lng := d.Lat, d.Lng
	req := &donormodels.ProfileRequest{
		Name:             d.Name,
		BloodGroup:       d.BloodGroup,
		City:             d.City,
		Phone:            d.Phone,
		Lat:              &lat,
		Lng:              &lng,
		IsAvailableNow:   d.AvailableNow,
		LastDonationDate: d.LastDonationDate,
		HealthSummary:    d.HealthSummary,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (r RequestFixture) createRequest() (*request.CreateRequest, error) {
	lat, lng := r.Lat, r.Lng
	req := &request.CreateRequest{
		SeekerName: r.SeekerName,
		BloodGroup: r.BloodGroup,
		City:       r.City,
		Lat:        &lat,
		Lng:        &lng,
		Urgency:    r.Urgency,
		Note:       r.Note,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// DonorStore is the donor persistence surface the loader needs.
type DonorStore interface {
	Create(ctx context.Context, donor *donormodels.Donor) error
	List(ctx context.Context) ([]*donormodels.Donor, error)
}

// RequestStore is the request persistence surface the loader needs.
type RequestStore interface {
	Create(ctx context.Context, req *request.Request) error
	ListOpen(ctx context.Context) ([]*request.Request, error)
}

// Result counts what a load inserted.
type Result struct {
	Donors   int
	Requests int
}

// Loader applies fixture files to the stores.
type Loader struct {
	donors   DonorStore
	requests RequestStore
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a loader over the given stores.
func New(donors DonorStore, requests RequestStore, logger *slog.Logger) *Loader {
	return &Loader{
		donors:   donors,
		requests: requests,
		logger:   logger,
		now:      time.Now,
	}
}

// LoadFile reads, validates, and applies a fixture file.
func (l *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return Result{}, err
	}
	return l.Apply(ctx, f)
}

// LoadFileIfEmpty applies the file only when no donors are stored yet, so a
// restart against a populated database does not duplicate fixtures.
func (l *Loader) LoadFileIfEmpty(ctx context.Context, path string) (Result, error) {
	existing, err := l.donors.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("check donor store: %w", err)
	}
	if len(existing) > 0 {
		l.logger.InfoContext(ctx, "seed skipped, store already populated",
			"donors", len(existing),
		)
		return Result{}, nil
	}
	return l.LoadFile(ctx, path)
}

// Apply inserts every fixture. Donors are unowned directory entries; requests
// open now with the standard TTL.
func (l *Loader) Apply(ctx context.Context, f *File) (Result, error) {
	var res Result
	now := l.now()

	for i, fixture := range f.Donors {
		req, err := fixture.profileRequest()
		if err != nil {
			return res, fmt.Errorf("donor fixture %d (%s): %w", i, fixture.Name, err)
		}
		donor := &donormodels.Donor{
			ID:               id.NewDonorID(),
			Name:             req.Name,
			BloodGroup:       req.ParsedBloodGroup(),
			City:             req.City,
			Phone:            req.Phone,
			Latitude:         *req.Lat,
			Longitude:        *req.Lng,
			IsAvailableNow:   req.IsAvailableNow,
			LastDonationDate: req.LastDonation(),
			HealthFlags:      healthtext.Normalize(req.HealthSummary),
			HealthSummary:    req.HealthSummary,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := l.donors.Create(ctx, donor); err != nil {
			return res, fmt.Errorf("seed donor %q: %w", fixture.Name, err)
		}
		res.Donors++
	}

	for i, fixture := range f.Requests {
		req, err := fixture.createRequest()
		if err != nil {
			return res, fmt.Errorf("request fixture %d (%s): %w", i, fixture.SeekerName, err)
		}
		stored := &request.Request{
			ID:         id.NewRequestID(),
			SeekerName: req.SeekerName,
			BloodGroup: req.ParsedBloodGroup(),
			City:       req.City,
			Latitude:   *req.Lat,
			Longitude:  *req.Lng,
			Urgency:    req.ParsedUrgency(),
			Note:       req.Note,
			Status:     request.StatusOpen,
			CreatedAt:  now,
			ExpiresAt:  now.Add(requestTTL),
		}
		if err := l.requests.Create(ctx, stored); err != nil {
			return res, fmt.Errorf("seed request from %q: %w", fixture.SeekerName, err)
		}
		res.Requests++
	}

	l.logger.InfoContext(ctx, "seed data loaded",
		"donors", res.Donors,
		"requests", res.Requests,
	)
	return res, nil
}
