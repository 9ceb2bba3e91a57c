package match

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	donormodels "hemolink/internal/donor/models"
	"hemolink/internal/platform/middleware"
	"hemolink/internal/request"
	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/platform/httputil"
)

// DonorSource lists the donor pool to rank. Implemented by the donor stores.
type DonorSource interface {
	List(ctx context.Context) ([]*donormodels.Donor, error)
}

// RequestSource resolves stored blood requests. Implemented by the request
// service, which already translates store errors.
type RequestSource interface {
	Get(ctx context.Context, requestID id.RequestID) (*request.Request, error)
}

// ListResponse wraps a ranked match listing.
type ListResponse struct {
	Matches []donormodels.ScoredDonorResponse `json:"matches"`
	Count   int                               `json:"count"`
}

// Handler exposes the matching HTTP surface.
type Handler struct {
	logger   *slog.Logger
	ranker   *Ranker
	donors   DonorSource
	requests RequestSource
}

// NewHandler creates a match handler.
func NewHandler(ranker *Ranker, donors DonorSource, requests RequestSource, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ranker: ranker, donors: donors, requests: requests}
}

// Register mounts the match routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/match", h.handleMatch)
	r.Get("/api/requests/{id}/matches", h.handleRequestMatches)
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.rankAndWrite(w, r, query)
}

func (h *Handler) handleRequestMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return
	}

	stored, err := h.requests.Get(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	radius, err := parseFloatParam(r, "radiusKm")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := Query{
		BloodGroup: stored.BloodGroup,
		Lat:        &stored.Latitude,
		Lng:        &stored.Longitude,
	}
	if radius != nil {
		query.RadiusKm = *radius
	}

	h.rankAndWrite(w, r, query)
}

func (h *Handler) rankAndWrite(w http.ResponseWriter, r *http.Request, query Query) {
	ctx := r.Context()

	donors, err := h.donors.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "donor pool listing failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "donor listing failed"))
		return
	}

	ranked := h.ranker.Rank(ctx, donors, query)
	items := make([]donormodels.ScoredDonorResponse, 0, len(ranked))
	for _, candidate := range ranked {
		items = append(items, donormodels.NewScoredDonorResponse(donormodels.ScoredDonor{
			Donor:      candidate.Donor,
			Result:     candidate.Result,
			DistanceKm: candidate.DistanceKm,
		}))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Matches: items, Count: len(items)})
}

// parseQuery reads the ad-hoc match filters from the URL.
func parseQuery(r *http.Request) (Query, error) {
	var q Query

	if raw := r.URL.Query().Get("bloodGroup"); raw != "" {
		group, err := donormodels.ParseBloodGroup(raw)
		if err != nil {
			return q, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid blood group %q", raw))
		}
		q.BloodGroup = group
	}

	q.City = r.URL.Query().Get("city")

	if raw := r.URL.Query().Get("availableOnly"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return q, dErrors.New(dErrors.CodeBadRequest, "availableOnly must be a boolean")
		}
		q.AvailableOnly = available
	}

	lat, err := parseFloatParam(r, "lat")
	if err != nil {
		return q, err
	}
	lng, err := parseFloatParam(r, "lng")
	if err != nil {
		return q, err
	}
	if (lat == nil) != (lng == nil) {
		return q, dErrors.New(dErrors.CodeBadRequest, "lat and lng must be provided together")
	}
	q.Lat, q.Lng = lat, lng

	radius, err := parseFloatParam(r, "radiusKm")
	if err != nil {
		return q, err
	}
	if radius != nil {
		q.RadiusKm = *radius
	}

	return q, nil
}

func parseFloatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s must be a number", name))
	}
	return &v, nil
}
