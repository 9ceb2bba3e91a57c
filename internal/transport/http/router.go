// Package httptransport assembles the HTTP surface: middleware stack, the
// per-domain handlers, and the operational endpoints. Handlers stay thin and
// delegate to domain services; this package only decides what is mounted
// where and which routes sit behind authentication.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "hemolink/internal/auth/handler"
	donorhandler "hemolink/internal/donor/handler"
	"hemolink/internal/match"
	"hemolink/internal/platform/health"
	"hemolink/internal/platform/metrics"
	"hemolink/internal/platform/middleware"
	"hemolink/internal/request"
	authmw "hemolink/pkg/platform/middleware/auth"
	"hemolink/pkg/platform/middleware/metadata"
	reqmw "hemolink/pkg/platform/middleware/request"
	"hemolink/pkg/platform/middleware/requesttime"
	"hemolink/pkg/platform/validation"
)

// Deps collects everything the router mounts. Health and Metrics are optional
// so partial surfaces can be wired in tests; metrics in particular register on
// the process-wide Prometheus registry and must be created once.
type Deps struct {
	Auth     *authhandler.Handler
	Donors   *donorhandler.Handler
	Requests *request.Handler
	Matches  *match.Handler
	Health   *health.Handler
	Metrics  *metrics.Metrics

	// Tokens validates bearer tokens for the protected route group.
	Tokens authmw.JWTValidator
}

// NewRouter wires all endpoints with middleware.
func NewRouter(deps Deps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.NewMiddleware(nil).Handler)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(reqmw.BodyLimit(validation.MaxBodySize))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public surface. Blood requests are deliberately open: a seeker in an
	// emergency should not have to create an account first.
	deps.Auth.Register(r)
	deps.Donors.Register(r)
	deps.Requests.Register(r)
	deps.Matches.Register(r)

	// Account-bound routes.
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireAuth(deps.Tokens, logger))
		deps.Auth.RegisterProtected(pr)
		deps.Donors.RegisterProtected(pr)
	})

	return r
}
