package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/inkline/writing-service/internal/auth"
	"github.com/inkline/writing-service/internal/config"
	"github.com/inkline/writing-service/internal/httpapi"
	"github.com/inkline/writing-service/internal/logging"
	"github.com/inkline/writing-service/internal/server"
	"github.com/inkline/writing-service/internal/writing"
)

const version = "v0.1.0"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("writing-service")

	repo, cleanup, err := newRepository(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}
	defer cleanup()

	clock := writing.NewSystemClock()
	ids := writing.NewUUIDGenerator()

	service, err := writing.NewService(repo, clock, ids)
	if err != nil {
		panic(fmt.Errorf("writing service init error: %w", err))
	}

	if cfg.SeedDemo {
		if err := service.Seed(ctx, "demo"); err != nil {
			panic(fmt.Errorf("seed error: %w", err))
		}
		logger.Info("demo dataset seeded", "user", "demo")
	}

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     cfg.Auth.Mode,
		Secret:   cfg.Auth.Secret,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	limiter := httpapi.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	router := server.NewRouter("writing-service", version, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))
			httpapi.RegisterRoutes(r, service, clock, limiter)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (writing.Repository, func(), error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}

		repo := writing.NewFirestoreRepository(client)
		cleanup := func() {
			_ = client.Close()
		}
		return repo, cleanup, nil
	case config.DataStoreSQLite:
		return writing.NewSQLiteRepository(cfg.SQLitePath)
	case config.DataStoreFile:
		return writing.NewFileRepository(cfg.SnapshotPath, logger)
	default:
		return writing.NewMemoryRepository(), func() {}, nil
	}
}
