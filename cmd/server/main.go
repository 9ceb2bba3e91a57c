package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	authhandler "hemolink/internal/auth/handler"
	"hemolink/internal/auth/lockout"
	authmetrics "hemolink/internal/auth/metrics"
	authservice "hemolink/internal/auth/service"
	authstore "hemolink/internal/auth/store"
	donorhandler "hemolink/internal/donor/handler"
	donormetrics "hemolink/internal/donor/metrics"
	donorservice "hemolink/internal/donor/service"
	donorstore "hemolink/internal/donor/store"
	"hemolink/internal/eligibility"
	eligibilitymetrics "hemolink/internal/eligibility/metrics"
	"hemolink/internal/inference"
	jwttoken "hemolink/internal/jwt_token"
	"hemolink/internal/match"
	"hemolink/internal/platform/config"
	"hemolink/internal/platform/database"
	"hemolink/internal/platform/health"
	"hemolink/internal/platform/logger"
	"hemolink/internal/platform/metrics"
	"hemolink/internal/platform/scheduler"
	"hemolink/internal/request"
	"hemolink/internal/request/workers/expiry"
	"hemolink/internal/seed"
	httptransport "hemolink/internal/transport/http"
	"hemolink/migrations"
)

// main wires the dependency graph and keeps the server lifecycle small.
// Business logic lives in the internal domain packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	log.Info("initializing hemolink",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"persistent", cfg.DBPath != "",
		"remote_inference", cfg.InferenceURL != "",
	)

	// Stores: SQLite when DB_PATH is set, in-memory otherwise.
	var (
		donorStore   donorservice.Store
		requestStore request.Store
		userStore    authservice.Store
	)

	dbCfg := database.DefaultConfig()
	dbCfg.Path = cfg.DBPath
	db, err := database.New(dbCfg)
	if err != nil {
		log.Error("database open failed", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	if db != nil {
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			log.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		donorStore = donorstore.NewSQLite(db.DB)
		requestStore = request.NewSQLite(db.DB)
		userStore = authstore.NewSQLite(db.DB)
	} else {
		log.Warn("DB_PATH not set, all data is lost on restart")
		donorStore = donorstore.NewMemory()
		requestStore = request.NewMemory()
		userStore = authstore.NewMemory()
	}

	// Scoring gateway. The rule engine always runs; the remote model is
	// consulted only when INFERENCE_URL is configured.
	var remote eligibility.RemoteScorer
	var inferenceClient *inference.Client
	if cfg.InferenceURL != "" {
		inferenceClient = inference.New(cfg.InferenceURL, cfg.InferenceTimeout, inference.WithLogger(log))
		remote = inference.NewResilient(inferenceClient, log)
	}
	gateway := eligibility.NewGateway(remote,
		eligibility.WithLogger(log),
		eligibility.WithMetrics(eligibilitymetrics.New()),
	)

	donorService := donorservice.NewService(donorStore, gateway,
		donorservice.WithLogger(log),
		donorservice.WithMetrics(donormetrics.New()),
	)

	requestMetrics := request.NewMetrics()
	requestService := request.NewService(requestStore,
		request.WithLogger(log),
		request.WithMetrics(requestMetrics),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.TokenTTL)
	lockoutService := lockout.NewService(lockout.NewMemoryStore(), lockout.WithLogger(log))
	accountService := authservice.NewService(userStore, jwtService,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithLockout(lockoutService),
	)

	if cfg.SeedFile != "" {
		loader := seed.New(donorStore, requestStore, log)
		if _, err := loader.LoadFileIfEmpty(ctx, cfg.SeedFile); err != nil {
			log.Error("seed load failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	checks := health.New(cfg.Environment)
	if db != nil {
		checks.RegisterCheck("database", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Health(pingCtx)
		})
	}
	if inferenceClient != nil {
		// Soft check: the rule fallback keeps scoring available when the
		// inference service is down.
		checks.RegisterSoftCheck("inference", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return inferenceClient.Ping(pingCtx)
		})
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:     authhandler.New(accountService, log),
		Donors:   donorhandler.New(donorService, log),
		Requests: request.NewHandler(requestService, log),
		Matches: match.NewHandler(
			match.NewRanker(gateway, match.WithDefaultRadius(cfg.DefaultRadiusKm)),
			donorStore, requestService, log),
		Health:  checks,
		Metrics: metrics.New(),
		Tokens:  jwttoken.NewJWTServiceAdapter(jwtService),
	}, log)

	sweeper, err := expiry.New(requestStore, expiry.WithLogger(log))
	if err != nil {
		log.Error("expiry worker init failed", "error", err)
		os.Exit(1)
	}
	cron := scheduler.New(log)
	if err := cron.Add("request-expiry", cfg.ExpirySchedule, func() {
		res, err := sweeper.RunOnce(context.Background())
		if err != nil {
			log.Error("request expiry sweep failed", "error", err)
		}
		requestMetrics.AddExpired(res.Expired)
	}); err != nil {
		log.Error("scheduler setup failed", "schedule", cfg.ExpirySchedule, "error", err)
		os.Exit(1)
	}
	cron.Start()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	<-cron.Stop().Done()
	if db != nil {
		_ = db.Close()
	}

	log.Info("server stopped")
}
