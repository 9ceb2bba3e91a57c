// Package match ranks donors against a blood need: filter the pool, order by
// proximity when an origin is known, then score every candidate through the
// eligibility gateway.
package match

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/eligibility"
	"hemolink/internal/geo"
	"hemolink/pkg/platform/middleware/requesttime"
)

// DefaultRadiusKm bounds a proximity search when the query does not say.
const DefaultRadiusKm = 50.0

const defaultScoringConcurrency = 8

// Query narrows and anchors a donor search. Zero-valued filters are skipped:
// an empty blood group matches every group, an empty city every city. Lat and
// Lng must be set together to anchor the search; without them no distance is
// computed and the filter-stage order is kept.
type Query struct {
	BloodGroup    donormodels.BloodGroup
	City          string
	AvailableOnly bool
	Lat           *float64
	Lng           *float64
	RadiusKm      float64
}

func (q Query) hasOrigin() bool {
	return q.Lat != nil && q.Lng != nil
}

// RankedDonor is one match: the donor, its eligibility verdict, and the
// distance from the query origin (0 when the query had none).
type RankedDonor struct {
	Donor      donormodels.Donor
	Result     eligibility.Result
	DistanceKm float64
}

// Evaluator scores a single donor. Implemented by eligibility.Gateway.
type Evaluator interface {
	Evaluate(ctx context.Context, in eligibility.Input) eligibility.Result
}

// Option configures the Ranker.
type Option func(*Ranker)

// WithScoringConcurrency caps concurrent gateway evaluations.
func WithScoringConcurrency(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithDefaultRadius overrides the radius applied to anchored queries that do
// not set one.
func WithDefaultRadius(km float64) Option {
	return func(r *Ranker) {
		if km > 0 {
			r.defaultRadius = km
		}
	}
}

// Ranker turns a donor pool and a query into an ordered candidate list.
type Ranker struct {
	gateway       Evaluator
	concurrency   int
	defaultRadius float64
}

// NewRanker constructs a Ranker over the scoring gateway.
func NewRanker(gateway Evaluator, opts ...Option) *Ranker {
	r := &Ranker{
		gateway:       gateway,
		concurrency:   defaultScoringConcurrency,
		defaultRadius: DefaultRadiusKm,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank filters donors by the query, orders them by distance when the query
// has an origin, and scores each candidate. Donation-gap day counts come from
// the request-scoped clock, so every candidate in one search is measured
// against the same instant. Scoring fans out with bounded concurrency;
// results land at their candidate's index, so the returned order never
// depends on scheduling. The result is never nil.
func (r *Ranker) Rank(ctx context.Context, donors []*donormodels.Donor, q Query) []RankedDonor {
	ranked := r.shortlist(donors, q)

	now := requesttime.Now(ctx)
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i := range ranked {
		i := i
		g.Go(func() error {
			candidate := &ranked[i]
			candidate.Result = r.gateway.Evaluate(ctx, eligibility.Input{
				DaysSinceLastDonation: candidate.Donor.DaysSinceLastDonation(now),
				DistanceKm:            candidate.DistanceKm,
				AvailableNow:          candidate.Donor.IsAvailableNow,
				HealthFlags:           candidate.Donor.HealthFlags,
				HealthSummary:         candidate.Donor.HealthSummary,
			})
			return nil
		})
	}
	_ = g.Wait()
	return ranked
}

// shortlist applies the query filters and, when anchored, the radius cut and
// distance sort.
func (r *Ranker) shortlist(donors []*donormodels.Donor, q Query) []RankedDonor {
	city := strings.ToLower(q.City)

	candidates := make([]*donormodels.Donor, 0, len(donors))
	for _, d := range donors {
		if q.BloodGroup != "" && d.BloodGroup != q.BloodGroup {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(d.City), city) {
			continue
		}
		if q.AvailableOnly && !d.IsAvailableNow {
			continue
		}
		candidates = append(candidates, d)
	}

	ranked := make([]RankedDonor, 0, len(candidates))
	if !q.hasOrigin() {
		for _, d := range candidates {
			ranked = append(ranked, RankedDonor{Donor: *d})
		}
		return ranked
	}

	radius := q.RadiusKm
	if radius <= 0 {
		radius = r.defaultRadius
	}
	for _, d := range candidates {
		dist := geo.Distance(*q.Lat, *q.Lng, d.Latitude, d.Longitude)
		if dist > radius {
			continue
		}
		ranked = append(ranked, RankedDonor{Donor: *d, DistanceKm: dist})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}
