package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/eapdesk/eapdesk/internal/app"
	"github.com/eapdesk/eapdesk/internal/audit"
	"github.com/eapdesk/eapdesk/internal/auth"
	"github.com/eapdesk/eapdesk/internal/documents"
	"github.com/eapdesk/eapdesk/internal/masterdata"
	"github.com/eapdesk/eapdesk/internal/observability"
	"github.com/eapdesk/eapdesk/internal/platform/cache"
	"github.com/eapdesk/eapdesk/internal/platform/db"
	"github.com/eapdesk/eapdesk/internal/platform/storage"
	"github.com/eapdesk/eapdesk/internal/ratelimit"
	"github.com/eapdesk/eapdesk/internal/rbac"
	"github.com/eapdesk/eapdesk/internal/roles"
	"github.com/eapdesk/eapdesk/internal/shared"
	"github.com/eapdesk/eapdesk/internal/users"
	"github.com/eapdesk/eapdesk/jobs"
)

const sessionCookie = "eapdesk_session"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if err := run(); err != nil {
		slog.Default().Error("eapdesk exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.MigrateOnBoot {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool, logger)

	rbacService := rbac.NewService(rbac.NewRepository(pool), auditLogger)
	sessions := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	gate := rbac.NewGate(auth.NewResolver(tokens, sessions), rbacService, cfg.AdminRole, logger,
		rbac.WithObserver(func(o rbac.Outcome) { metrics.ObserveAuthz(o.Decision.String()) }))

	loginLimiter := ratelimit.New(redisClient, "auth", cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow,
		ratelimit.WithLogger(logger),
		ratelimit.WithRecorder(metrics.ObserveRateLimit))

	authService := auth.NewService(auth.NewRepository(pool), rbacService)
	authHandler := auth.NewHandler(logger, authService, sessions, tokens, auth.Middlewares{
		RequireSession: gate.Authenticated(),
		Throttle:       ratelimit.Middleware(loginLimiter, ratelimit.ClientKey),
	})

	usersHandler := users.NewHandler(logger, users.NewService(users.NewRepository(pool), auditLogger), gate)
	rolesHandler := roles.NewHandler(logger, roles.NewService(roles.NewRepository(pool), cfg.AdminRole, auditLogger), gate)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, gate)
	masterData := masterdata.NewModule(pool, auditLogger, gate, logger)

	blobs, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return err
	}
	documentsService := documents.NewService(documents.NewRepository(pool), blobs, auditLogger, logger)
	documentsHandler := documents.NewHandler(logger, documentsService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Metrics: metrics,
		Ready: func(r *http.Request) error {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		MasterData:         masterData,
		DocumentsHandler:   documentsHandler,
		AuditHandler:       audit.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), gate),
		JobHandler:         jobs.NewHandler(inspector, gate, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
