package request

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hemolink/internal/platform/middleware"
	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/platform/httputil"
)

// Handler exposes the blood-request HTTP surface.
type Handler struct {
	logger   *slog.Logger
	requests *Service
}

// NewHandler creates a request handler.
func NewHandler(requests *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, requests: requests}
}

// Register mounts the request routes. All of them are public; posting a need
// for blood must not require an account.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/requests", h.handleCreateRequest)
	r.Get("/api/requests", h.handleListRequests)
	r.Get("/api/requests/{id}", h.handleGetRequest)
	r.Post("/api/requests/{id}/fulfill", h.handleFulfillRequest)
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.requests.Create(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "blood request creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, NewResponse(created))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	open, err := h.requests.ListOpen(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "blood request listing failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	items := make([]Response, 0, len(open))
	for _, req := range open {
		items = append(items, NewResponse(req))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Requests: items, Count: len(items)})
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return
	}

	req, err := h.requests.Get(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, NewResponse(req))
}

func (h *Handler) handleFulfillRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return
	}

	fulfilled, err := h.requests.Fulfill(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, NewResponse(fulfilled))
}
