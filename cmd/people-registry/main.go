// main is the entry point of the people registry service.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the SQLite mirror (only when storage_path is set)
//  4. Build the registry, the form validator and the notification sink
//  5. Register all HTTP routes and start the server in a goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close storage, exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/people-registry --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/people-registry
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aanand-mishra/people-registry/internal/config"
	"github.com/aanand-mishra/people-registry/internal/form"
	"github.com/aanand-mishra/people-registry/internal/http/router"
	"github.com/aanand-mishra/people-registry/internal/notify"
	"github.com/aanand-mishra/people-registry/internal/registry"
	"github.com/aanand-mishra/people-registry/internal/storage"
	"github.com/aanand-mishra/people-registry/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through the package-level slog functions, so the
	// configured logger becomes the default.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting people-registry",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// An empty storage_path keeps the registry in memory only.
	var store storage.Storage
	if cfg.StoragePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
			log.Error("failed to create storage directory",
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		db, err := sqlite.New(cfg)
		if err != nil {
			log.Error("failed to initialise storage",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = db

		log.Info("storage initialised", slog.String("path", cfg.StoragePath))
	} else {
		log.Info("no storage_path configured, people are kept in memory only")
	}

	// ── 4. Registry, Validator, Sink ──────────────────────────────────────
	// The registry is created here and only here; everything else receives
	// it as a dependency.
	reg, err := registry.Open(store,
		registry.WithStrictUpdate(cfg.Registry.StrictUpdate),
		registry.WithListener(func(ev registry.Event) {
			log.Debug("list view refresh",
				slog.String("op", string(ev.Op)),
				slog.String("person", ev.Person.String()),
				slog.Int("size", ev.Len))
		}),
	)
	if err != nil {
		log.Error("failed to load registry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("registry ready",
		slog.Int("people", reg.Len()),
		slog.Bool("strict_update", cfg.Registry.StrictUpdate))

	validator := form.NewValidator(cfg.Registry.MaxAge)
	sink := notify.NewLogSink(log.With(slog.String("component", "notify")))

	// ── 5. HTTP Server ────────────────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router.New(reg, validator, sink, log),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed after Shutdown();
		// that is the normal way out.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
	}

	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging / production: JSON output, DEBUG in staging and INFO in prod.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
