// Package handler exposes the account HTTP surface.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hemolink/internal/auth/models"
	"hemolink/internal/platform/middleware"
	id "hemolink/pkg/domain"
	"hemolink/pkg/platform/httputil"
	"hemolink/pkg/platform/middleware/metadata"
)

// Service defines the interface for account operations.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req *models.LoginRequest, client models.ClientInfo) (*models.User, string, error)
	Me(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Handler handles account endpoints.
type Handler struct {
	logger   *slog.Logger
	accounts Service
}

// New creates a new auth Handler.
func New(accounts Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		accounts: accounts,
	}
}

// Register registers the public auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)
}

// RegisterProtected registers the token-scoped routes. Mount these behind the
// auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/api/auth/me", h.handleMe)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, token, err := h.accounts.Register(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to register account",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.AuthResponse{
		Token: token,
		User:  models.NewUserResponse(*user),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	client := models.ClientInfo{
		IP:        metadata.ClientIP(ctx),
		UserAgent: metadata.UserAgent(ctx),
	}
	user, token, err := h.accounts.Login(ctx, req, client)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.AuthResponse{
		Token: token,
		User:  models.NewUserResponse(*user),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := httputil.RequireUserID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.accounts.Me(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.NewUserResponse(*user))
}
