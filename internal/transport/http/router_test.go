package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhandler "hemolink/internal/auth/handler"
	authservice "hemolink/internal/auth/service"
	authstore "hemolink/internal/auth/store"
	donorhandler "hemolink/internal/donor/handler"
	donorservice "hemolink/internal/donor/service"
	donorstore "hemolink/internal/donor/store"
	"hemolink/internal/eligibility"
	jwttoken "hemolink/internal/jwt_token"
	"hemolink/internal/match"
	"hemolink/internal/platform/health"
	"hemolink/internal/platform/metrics"
	"hemolink/internal/request"
	id "hemolink/pkg/domain"
	"hemolink/pkg/platform/validation"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDeps wires the full surface against in-memory stores, the same shape
// main builds in production. Metrics stay nil; the one test that needs them
// sets the field itself, because collectors register process-wide.
func newTestDeps(t *testing.T) Deps {
	t.Helper()

	logger := discardLogger()
	gateway := eligibility.NewGateway(nil)

	jwtService := jwttoken.NewJWTService("router-test-key", time.Hour)

	donors := donorstore.NewMemory()
	donorService := donorservice.NewService(donors, gateway, donorservice.WithLogger(logger))

	requests := request.NewMemory()
	requestService := request.NewService(requests, request.WithLogger(logger))

	users := authstore.NewMemory()
	accountService := authservice.NewService(users, jwtService, authservice.WithLogger(logger))

	return Deps{
		Auth:     authhandler.New(accountService, logger),
		Donors:   donorhandler.New(donorService, logger),
		Requests: request.NewHandler(requestService, logger),
		Matches:  match.NewHandler(match.NewRanker(gateway), donors, requestService, logger),
		Health:   health.New("test"),
		Tokens:   jwttoken.NewJWTServiceAdapter(jwtService),
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(newTestDeps(t), discardLogger())
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/donors", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterRejectsNonJSONBodies(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/requests", bytes.NewBufferString("group=O+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouterCapsRequestBodies(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/requests", "", map[string]string{
		"note": strings.Repeat("x", int(validation.MaxBodySize)+1),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// Latency series must be labeled with the route pattern, not the raw path,
// or every donor ID would mint a fresh series.
func TestRouterMetricsUseRoutePattern(t *testing.T) {
	deps := newTestDeps(t)
	deps.Metrics = metrics.New()
	router := NewRouter(deps, discardLogger())

	donorID := id.NewDonorID()
	rec := doJSON(t, router, http.MethodGet, "/api/donors/"+donorID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `endpoint="/api/donors/{id}"`)
	assert.NotContains(t, rec.Body.String(), donorID.String())
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/auth/me", "/api/donors/me"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/donors/me", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// The static /api/donors/me route must win over the public /api/donors/{id}
// parameter route. A misrouted request would surface as a 400 from donor ID
// parsing instead of the middleware's 401.
func TestRouterDonorsMeBeatsParamRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/donors/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterRegisterLoginMe(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Asha Rao",
		"email":    "asha@example.com",
		"password": "correct horse",
		"role":     "donor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, "asha@example.com", registered.User.Email)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "asha@example.com", me.Email)
}
