package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr             string
	Environment      string
	DBPath           string
	SeedFile         string
	JWTSigningKey    string
	TokenTTL         time.Duration
	InferenceURL     string
	InferenceTimeout time.Duration
	DefaultRadiusKm  float64
	ExpirySchedule   string
}

// Defaults, overridable per environment.
var (
	TokenTTL         = 24 * time.Hour
	InferenceTimeout = 2 * time.Second
	DefaultRadiusKm  = 50.0
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("HEMOLINK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	environment := os.Getenv("APP_ENV")
	if environment == "" {
		environment = "development"
	}

	tokenTTLStr := os.Getenv("TOKEN_TTL")
	if tokenTTLStr != "" {
		if duration, err := time.ParseDuration(tokenTTLStr); err == nil {
			TokenTTL = duration
		}
	}

	inferenceTimeoutStr := os.Getenv("INFERENCE_TIMEOUT")
	if inferenceTimeoutStr != "" {
		if duration, err := time.ParseDuration(inferenceTimeoutStr); err == nil {
			InferenceTimeout = duration
		}
	}

	radiusStr := os.Getenv("DEFAULT_RADIUS_KM")
	if radiusStr != "" {
		if radius, err := strconv.ParseFloat(radiusStr, 64); err == nil && radius > 0 {
			DefaultRadiusKm = radius
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	expirySchedule := os.Getenv("EXPIRY_SCHEDULE")
	if expirySchedule == "" {
		expirySchedule = "@every 10m"
	}

	return Server{
		Addr:             addr,
		Environment:      environment,
		DBPath:           os.Getenv("DB_PATH"),
		SeedFile:         os.Getenv("SEED_FILE"),
		JWTSigningKey:    jwtSigningKey,
		TokenTTL:         TokenTTL,
		InferenceURL:     os.Getenv("INFERENCE_URL"),
		InferenceTimeout: InferenceTimeout,
		DefaultRadiusKm:  DefaultRadiusKm,
		ExpirySchedule:   expirySchedule,
	}
}
