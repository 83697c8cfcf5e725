package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/inkline/writing-service/internal/auth"
	"github.com/inkline/writing-service/internal/envconfig"
)

// Config encapsulates the runtime configuration for the writing service.
type Config struct {
	Port      string `validate:"required"`
	DataStore DataStore
	SeedDemo  bool

	GCPProjectID string
	SQLitePath   string
	SnapshotPath string
	Firestore    FirestoreConfig

	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps sessions and projects in-memory (useful for
	// local development and testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFile persists a JSON snapshot on disk and reloads it when
	// the file changes externally.
	DataStoreFile DataStore = "file"
	// DataStoreSQLite stores records in a local SQLite database.
	DataStoreSQLite DataStore = "sqlite"
	// DataStoreFirestore stores records in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     auth.Mode
	Secret   string
	Audience string
	Issuer   string
}

// RateLimitConfig tunes the per-client limiter on mutating routes.
type RateLimitConfig struct {
	Requests int           `validate:"min=1"`
	Window   time.Duration `validate:"min=1s"`
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	EmulatorHost string
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	window, err := time.ParseDuration(envconfig.Get("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		SeedDemo:     envconfig.GetBool("SEED_DEMO", false),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		SQLitePath:   envconfig.Get("SQLITE_PATH", "data/inkline.db"),
		SnapshotPath: envconfig.Get("SNAPSHOT_PATH", "data/inkline.json"),
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Auth: AuthConfig{
			Mode:     auth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(auth.ModeNoop)))),
			Secret:   envconfig.Get("AUTH_JWT_SECRET", ""),
			Audience: envconfig.Get("AUTH_AUDIENCE", ""),
			Issuer:   envconfig.Get("AUTH_ISSUER", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: envconfig.GetInt("RATE_LIMIT_REQUESTS", 60),
			Window:   window,
		},
	}

	if err := envconfig.Validate(cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFile:
		if strings.TrimSpace(cfg.SnapshotPath) == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required when datastore=file")
		}
	case DataStoreSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when datastore=sqlite")
		}
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when datastore=firestore")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Auth.Mode {
	case auth.ModeJWT:
		if cfg.Auth.Secret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case auth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}
