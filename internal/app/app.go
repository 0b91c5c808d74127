package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/DragonRU1/silentauth/internal/config"
	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/http/handler"
	"github.com/DragonRU1/silentauth/internal/http/router"
	"github.com/DragonRU1/silentauth/internal/observability"
	"github.com/DragonRU1/silentauth/internal/repository"
	"github.com/DragonRU1/silentauth/internal/security"
	"github.com/DragonRU1/silentauth/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime

	db    *gorm.DB
	redis *redis.Client
}

// New loads configuration and assembles the full dependency graph by hand.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	runtime, err := observability.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger := runtime.Logger

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	var negativeCache service.NegativeLookupCacheStore
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		negativeCache = service.NewRedisNegativeLookupCacheStore(redisClient, "")
		logger.Info("resolver negative cache backed by redis", "addr", cfg.RedisAddr)
	} else {
		negativeCache = service.NewInMemoryNegativeLookupCacheStore()
		logger.Info("resolver negative cache in memory")
	}

	sessionRepo := repository.NewSessionRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	userRepo := repository.NewUserRepository(db)

	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.JWTPreviousSecret, cfg.IdentityTTL)

	sessionSvc := service.NewSessionService(sessionRepo)
	apiKeySvc := service.NewApiKeyService(apiKeyRepo, negativeCache, cfg.NegativeCacheTTL)
	authSvc := service.NewAuthService(orgRepo, userRepo, jwtMgr)
	projectSvc := service.NewProjectService(projectRepo, apiKeyRepo, sessionRepo, apiKeySvc)
	adminSvc := service.NewAdminService(orgRepo, userRepo, projectRepo, sessionRepo)

	mux := router.New(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		ProjectHandler:   handler.NewProjectHandler(projectSvc),
		SessionHandler:   handler.NewSessionHandler(sessionSvc),
		AdminHandler:     handler.NewAdminHandler(adminSvc),
		IdentityVerifier: authSvc,
		Resolver:         apiKeySvc,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		ReadyCheck:       readyCheck(db, redisClient),
		EnableOTelHTTP:   cfg.OTELTracesEnabled,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		db:            db,
		redis:         redisClient,
	}, nil
}

// Run serves HTTP until the context is cancelled, then drains connections and
// flushes telemetry.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("http shutdown", "error", err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error("redis close", "error", err)
		}
	}
	if err := a.Observability.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("observability shutdown", "error", err)
	}
	return <-errCh
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(
		&domain.Organization{},
		&domain.User{},
		&domain.Project{},
		&domain.ApiKey{},
		&domain.ActionSession{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

func readyCheck(db *gorm.DB, redisClient *redis.Client) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}
