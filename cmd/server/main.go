package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iautomae/platform/internal/admin"
	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/auth"
	"github.com/iautomae/platform/internal/companies"
	"github.com/iautomae/platform/internal/compress"
	"github.com/iautomae/platform/internal/config"
	"github.com/iautomae/platform/internal/elevenlabs"
	"github.com/iautomae/platform/internal/leads"
	"github.com/iautomae/platform/internal/profiles"
	"github.com/iautomae/platform/internal/pushover"
	"github.com/iautomae/platform/internal/storage"
	"github.com/iautomae/platform/internal/webhooks"
	"github.com/iautomae/platform/pkg/database"
	"github.com/iautomae/platform/pkg/logging"
	"github.com/iautomae/platform/pkg/middleware"
	"github.com/iautomae/platform/pkg/routes"
)

type Application struct {
	config *config.Config
	db     *sql.DB
	logger *slog.Logger
	auth   *auth.Authenticator
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(&cfg.Logging)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	app := &Application{
		config: cfg,
		db:     db,
		logger: logger,
		auth:   auth.New(&cfg.Auth),
	}

	handler, err := app.routes()
	if err != nil {
		logger.Error("failed to build routes", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr)

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	if err := <-shutdownError; err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// routes wires the domain systems and builds the full handler tree. The
// webhook surface and the health probe stay outside the authenticated
// API; everything else under /api requires a bearer token.
func (app *Application) routes() (http.Handler, error) {
	cfg := app.config

	blobs, err := storage.NewFilesystem(cfg.Storage.BasePath, app.logger)
	if err != nil {
		return nil, err
	}

	agentSys := agents.New(app.db, app.logger, cfg.Pagination)
	leadSys := leads.New(app.db, app.logger, cfg.Pagination)
	profileSys := profiles.New(app.db, app.logger, cfg.Pagination)
	companySys := companies.New(app.db, app.logger, cfg.Pagination)

	vendor := elevenlabs.NewClient(cfg.ElevenLabs, app.logger)
	pushClient := pushover.NewClient(cfg.Pushover, app.logger)

	api := routes.New(app.logger)
	api.RegisterGroup(routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			agents.NewHandler(agentSys, vendor, app.logger, cfg.Pagination).Routes(),
			leads.NewHandler(leadSys, app.logger, cfg.Pagination).Routes(),
			profiles.NewHandler(profileSys, blobs, app.logger).Routes(),
			companies.NewHandler(companySys, profileSys, app.logger, cfg.Pagination).Routes(),
			elevenlabs.NewHandler(vendor, agentSys, blobs, app.logger).Routes(),
			compress.NewHandler(cfg.Compression, app.logger).Routes(),
			pushover.NewHandler(pushClient, app.logger).Routes(),
			admin.NewHandler(profileSys, agentSys, leadSys, vendor, app.logger, cfg.Pagination).Routes(),
		},
	})

	hooks := routes.New(app.logger)
	hooks.RegisterGroup(routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			webhooks.NewHandler(agentSys, leadSys, pushClient, cfg.ElevenLabs.WebhookSecret, app.logger).Routes(),
		},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/api/webhooks/", hooks.Build())
	mux.Handle("/api/", app.auth.Middleware(api.Build()))

	handler := middleware.CORS(&cfg.CORS, mux)
	handler = middleware.Logger(app.logger, handler)

	return handler, nil
}
