// Package main is the entrypoint for the Second Brain API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/secondbrain/secondbrain/internal/auth"
	"github.com/secondbrain/secondbrain/internal/config"
	"github.com/secondbrain/secondbrain/internal/handler"
	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/repository"
	"github.com/secondbrain/secondbrain/internal/server"
	"github.com/secondbrain/secondbrain/internal/service"
	"github.com/secondbrain/secondbrain/internal/validation"
)

func main() {
	if err := run(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Apply schema before the pool is opened
	if cfg.RunMigrations {
		applied, err := repository.Migrate(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			return err
		}
		logger.Info("migrations applied", slog.Any("versions", applied))
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	logger.Info("connected to database")

	// Identity: the signing key is injected here and nowhere else
	codec, err := auth.NewTokenCodec(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		repo.Close()
		logger.Error("failed to create token codec", "error", err)
		return err
	}
	gate := auth.NewGate(codec, repo.Users)

	// Initialize services
	recorder := metrics.NewInMemory()
	v := validation.New()

	authService, err := service.NewAuthService(repo.Users, codec, v, recorder)
	if err != nil {
		repo.Close()
		logger.Error("failed to create auth service", "error", err)
		return err
	}
	noteService := service.NewNoteService(repo.Notes, v, recorder)
	linkService := service.NewLinkService(repo.Links, v, recorder)
	taskService := service.NewTaskService(repo.Tasks, v, recorder)
	overviewService := service.NewOverviewService(repo.Notes, repo.Links, repo.Tasks, recorder)
	searchService := service.NewSearchService(repo.Notes, repo.Links, repo.Tasks, recorder)

	// Setup router
	r := handler.NewRouter(handler.RouterConfig{
		Logger:         logger,
		Gate:           gate,
		Metrics:        recorder,
		IsDevelopment:  cfg.IsDevelopment(),
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxBodySize:    cfg.MaxRequestBodySize,
		Health:         handler.NewHealthHandler(repo),
		Stats:          handler.NewMetricsHandler(recorder),
		Auth:           handler.NewAuthHandler(authService, logger),
		Notes:          handler.NewNoteHandler(noteService, logger),
		Links:          handler.NewLinkHandler(linkService, logger),
		Tasks:          handler.NewTaskHandler(taskService, logger),
		Overview:       handler.NewOverviewHandler(overviewService, logger),
		Search:         handler.NewSearchHandler(searchService, logger),
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", cfg.TokenTTL,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
