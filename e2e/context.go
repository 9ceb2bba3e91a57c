package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	authhandler "hemolink/internal/auth/handler"
	"hemolink/internal/auth/lockout"
	authservice "hemolink/internal/auth/service"
	authstore "hemolink/internal/auth/store"
	donorhandler "hemolink/internal/donor/handler"
	donorservice "hemolink/internal/donor/service"
	donorstore "hemolink/internal/donor/store"
	"hemolink/internal/eligibility"
	"hemolink/internal/healthtext"
	jwttoken "hemolink/internal/jwt_token"
	"hemolink/internal/match"
	"hemolink/internal/platform/health"
	"hemolink/internal/request"
	httptransport "hemolink/internal/transport/http"
)

// TestContext runs the full service in-process over in-memory stores and
// holds state between steps. Swapping the inference mode rebuilds the router
// but keeps the stores, so seeded donors survive a mode switch within a
// scenario.
type TestContext struct {
	server *httptest.Server
	logger *slog.Logger

	donors   *donorstore.Memory
	requests *request.Memory
	users    *authstore.Memory

	LastResponse     *http.Response
	LastResponseBody []byte

	// RequestID is the id of the last blood request created via the API.
	RequestID string
}

// NewTestContext builds a context with fresh stores and the inference
// service disabled, the same default the server boots with.
func NewTestContext() *TestContext {
	tc := &TestContext{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	tc.Reset()
	return tc
}

// Reset discards all state: stores, server, and captured responses.
func (tc *TestContext) Reset() {
	tc.donors = donorstore.NewMemory()
	tc.requests = request.NewMemory()
	tc.users = authstore.NewMemory()
	tc.LastResponse = nil
	tc.LastResponseBody = nil
	tc.RequestID = ""
	tc.startServer(nil)
}

// Close shuts the in-process server down.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
}

// startServer (re)builds the wired router around the current stores with the
// given remote scorer and serves it from a fresh listener.
func (tc *TestContext) startServer(remote eligibility.RemoteScorer) {
	tc.Close()

	gateway := eligibility.NewGateway(remote, eligibility.WithLogger(tc.logger))
	donorService := donorservice.NewService(tc.donors, gateway, donorservice.WithLogger(tc.logger))
	requestService := request.NewService(tc.requests, request.WithLogger(tc.logger))
	jwtService := jwttoken.NewJWTService("e2e-signing-key", time.Hour)
	accountService := authservice.NewService(tc.users, jwtService,
		authservice.WithLogger(tc.logger),
		authservice.WithLockout(lockout.NewService(lockout.NewMemoryStore(), lockout.WithLogger(tc.logger))),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:     authhandler.New(accountService, tc.logger),
		Donors:   donorhandler.New(donorService, tc.logger),
		Requests: request.NewHandler(requestService, tc.logger),
		Matches:  match.NewHandler(match.NewRanker(gateway), tc.donors, requestService, tc.logger),
		Health:   health.New("e2e"),
		Tokens:   jwttoken.NewJWTServiceAdapter(jwtService),
	}, tc.logger)

	tc.server = httptest.NewServer(router)
}

// UseMirrorInference swaps in a remote scorer that reproduces the rule
// engine, the behavior the trained model approximates.
func (tc *TestContext) UseMirrorInference() {
	tc.startServer(mirrorScorer{})
}

// UseOfflineInference swaps in a remote scorer whose every call fails, as if
// the inference service were unreachable.
func (tc *TestContext) UseOfflineInference() {
	tc.startServer(offlineScorer{})
}

// POST makes a POST request and stores the response.
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.server.URL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return tc.do(req)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.server.URL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// ScoredMatch is the slice of the match response the steps assert on.
type ScoredMatch struct {
	Donor struct {
		Name string `json:"name"`
	} `json:"donor"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
	Source     string   `json:"source"`
	DistanceKm float64  `json:"distanceKm"`
}

// Matches decodes the last response as a match listing.
func (tc *TestContext) Matches() ([]ScoredMatch, error) {
	var body struct {
		Matches []ScoredMatch `json:"matches"`
		Count   int           `json:"count"`
	}
	if err := json.Unmarshal(tc.LastResponseBody, &body); err != nil {
		return nil, fmt.Errorf("failed to decode match response: %w\n%s", err, tc.LastResponseBody)
	}
	return body.Matches, nil
}

// Match finds a single donor in the last match listing by name.
func (tc *TestContext) Match(name string) (ScoredMatch, error) {
	matches, err := tc.Matches()
	if err != nil {
		return ScoredMatch{}, err
	}
	for _, m := range matches {
		if m.Donor.Name == name {
			return m, nil
		}
	}
	return ScoredMatch{}, fmt.Errorf("donor %q not in matches\n%s", name, tc.LastResponseBody)
}

// GetResponseField extracts a top-level field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// mirrorScorer reproduces the rule engine remotely. The real model is
// trained on labels generated from the same rules, so this is the faithful
// stand-in for a healthy inference service.
type mirrorScorer struct{}

func (mirrorScorer) Predict(_ context.Context, in eligibility.Input) (eligibility.Result, error) {
	r := eligibility.Score(in)
	return eligibility.Result{Score: r.Score, Reasons: r.Reasons}, nil
}

func (mirrorScorer) NormalizeHealth(_ context.Context, text string) ([]healthtext.Flag, error) {
	return healthtext.Normalize(text), nil
}

func (mirrorScorer) CheckOverride(_ context.Context, text string) (eligibility.OverrideDecision, error) {
	if healthtext.Contains(healthtext.Normalize(text), healthtext.FlagSeriousCondition) {
		return eligibility.OverrideDecision{
			Overridden: true,
			Score:      eligibility.OverrideScore,
			Reason:     eligibility.SeriousConditionReason,
		}, nil
	}
	return eligibility.OverrideDecision{}, nil
}

// offlineScorer fails every call, as an unreachable service would.
type offlineScorer struct{}

var errInferenceDown = errors.New("inference service unreachable")

func (offlineScorer) Predict(context.Context, eligibility.Input) (eligibility.Result, error) {
	return eligibility.Result{}, errInferenceDown
}

func (offlineScorer) NormalizeHealth(context.Context, string) ([]healthtext.Flag, error) {
	return nil, errInferenceDown
}

func (offlineScorer) CheckOverride(context.Context, string) (eligibility.OverrideDecision, error) {
	return eligibility.OverrideDecision{}, errInferenceDown
}
