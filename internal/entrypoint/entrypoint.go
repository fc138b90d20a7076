package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	http_controllers "github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// sessionCleanupInterval is how often expired sessions are purged.
const sessionCleanupInterval = 5 * time.Minute

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server failed", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	// Background workers stop after in-flight requests are done
	if onShutdown != nil {
		onShutdown(ctx)
	}

	slog.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	slog.SetDefault(NewLogger(cfg.Log, os.Stderr))
	slog.Info("Starting Library Catalog", "version", version, "driver", cfg.Database.Driver)

	// The SQLite database always holds sessions, and the catalog itself
	// unless the mongo driver is selected.
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}()

	stores, closeStores, err := OpenStores(cfg.Database, db)
	if err != nil {
		fatal("Failed to open catalog store", err)
	}

	auditService := audit.NewService(stores.Audit)
	retentionDays := cfg.Audit.RetentionDays
	if retentionDays <= 0 {
		retentionDays = tasks.DefaultAuditRetentionDays
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var queue auditEnqueuer
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks),
			tasks.NewCleanupAuditEventsQueue(auditService))
		if err != nil {
			fatal("Failed to initialize task queue", err)
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		queue = taskClient
	}

	cleanup := scheduler.NewAuditCleanupScheduler(cfg.Audit.CleanupSchedule, auditCleanupJob(queue, auditService, retentionDays))
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	if cfg.Audit.CleanupEnabled {
		if err := cleanup.Start(schedulerCtx); err != nil {
			slog.Error("Audit cleanup scheduler not started", "error", err)
		}
	}

	authService := auth.NewService(stores.Users, cfg.Auth)

	sqlDB, err := db.SQL()
	if err != nil {
		fatal("Failed to get SQL DB for sessions", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth, sessionCleanupInterval)
	if err != nil {
		fatal("Failed to initialize session manager", err)
	}
	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	secret, generated, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		fatal("Failed to generate CSRF secret", err)
	}
	if generated {
		slog.Warn("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	if hasUsers, err := authService.HasUsers(context.Background()); err == nil && !hasUsers {
		slog.Info("No users found. Visit /setup or run create-user to add an administrator")
	}

	routerCfg := http_controllers.RouterConfig{
		Stores:         stores,
		Descriptions:   catalog.NewDescriptionRenderer(),
		Audit:          auditService,
		AuditCleaner:   cleanup,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		AuthConfig:     cfg.Auth,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}

	router, stopRouter := http_controllers.NewRouter(routerCfg)
	handler := http_controllers.NewHandler(router, cfg.HTTP.MaxBodyBytes)

	onShutdown := func(ctx context.Context) {
		schedulerCancel()
		cleanup.Stop()
		if taskClient != nil {
			if err := taskClient.Shutdown(ctx); err != nil {
				slog.Warn("Task queue shutdown", "error", err)
			}
			taskCtxCancel()
		}
		stopRouter()
		auditService.Wait()
		closeStores(ctx)
	}

	Serve(handler, cfg, onShutdown)
}

// csrfSecret decodes the configured hex secret, falling back to its raw
// bytes, or generates a fresh one when none is set.
func csrfSecret(configured string) (secret []byte, generated bool, err error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, false, nil
		}
		return []byte(configured), false, nil
	}

	encoded, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, false, err
	}
	secret, err = hex.DecodeString(encoded)
	return secret, true, err
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
