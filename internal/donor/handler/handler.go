// Package handler exposes the donor HTTP surface.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hemolink/internal/donor/models"
	"hemolink/internal/platform/middleware"
	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/platform/httputil"
)

// Service defines the interface for donor operations.
type Service interface {
	Create(ctx context.Context, req *models.ProfileRequest) (*models.Donor, error)
	Get(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	UpdateProfile(ctx context.Context, ownerID id.UserID, req *models.ProfileRequest) (*models.Donor, error)
	SetAvailability(ctx context.Context, ownerID id.UserID, available bool) (*models.Donor, error)
	MyProfile(ctx context.Context, ownerID id.UserID) (*models.ScoredDonor, error)
	ListWithScores(ctx context.Context) ([]models.ScoredDonor, error)
}

// Handler handles donor endpoints.
type Handler struct {
	logger *slog.Logger
	donors Service
}

// New creates a new donor Handler.
func New(donors Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		donors: donors,
	}
}

// Register registers the public donor routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/donors", h.handleCreateDonor)
	r.Get("/api/donors", h.handleListDonors)
	r.Get("/api/donors/{id}", h.handleGetDonor)
}

// RegisterProtected registers the owner-scoped routes. Mount these behind the
// auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/api/donors/me", h.handleMyProfile)
	r.Put("/api/donors/me", h.handleUpdateProfile)
	r.Patch("/api/donors/me/availability", h.handleSetAvailability)
}

func (h *Handler) handleCreateDonor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donor, err := h.donors.Create(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create donor",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.NewDonorResponse(*donor))
}

func (h *Handler) handleListDonors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	scored, err := h.donors.ListWithScores(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list donors",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	donors := make([]models.ScoredDonorResponse, 0, len(scored))
	for _, sd := range scored {
		donors = append(donors, models.NewScoredDonorResponse(sd))
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListResponse{Donors: donors, Count: len(donors)})
}

func (h *Handler) handleGetDonor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	donorID, err := id.ParseDonorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid donor id"))
		return
	}

	donor, err := h.donors.Get(ctx, donorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewDonorResponse(*donor))
}

func (h *Handler) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := httputil.RequireUserID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	scored, err := h.donors.MyProfile(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewScoredDonorResponse(*scored))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := httputil.RequireUserID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.ProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donor, err := h.donors.UpdateProfile(ctx, userID, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update donor profile",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewDonorResponse(*donor))
}

func (h *Handler) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := httputil.RequireUserID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.SetAvailabilityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donor, err := h.donors.SetAvailability(ctx, userID, *req.IsAvailableNow)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewDonorResponse(*donor))
}
