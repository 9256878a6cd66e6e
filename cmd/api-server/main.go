package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animeschedule/database"
	"animeschedule/internal/config"
	"animeschedule/internal/ingestion/jikan"
	"animeschedule/internal/logging"
	"animeschedule/internal/metrics"
	"animeschedule/internal/microservices/http-api/handler"
	"animeschedule/internal/microservices/http-api/middleware"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/microservices/http-api/service"
	"animeschedule/internal/zonetime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api server stopped")
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "api-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Connect to the database
	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	// 2. Redis is optional: without it the timezone cache is skipped and the
	// run lock is process-local.
	var cache redis.Cmdable
	var lock jikan.RunLock
	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		lock = jikan.NewLocalRunLock()
	} else {
		defer rdb.Close()
		cache = rdb
		lock = jikan.NewRedisRunLock(rdb, cfg.CatalogLockTTL)
	}

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewProvider(cfg.PrometheusEnabled, registry)

	// 4. Repositories and services
	zones := zonetime.NewRegistry()
	userRepo := repository.NewUserRepository(db)
	animeRepo := repository.NewAnimeRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	syncStateRepo := repository.NewSyncStateRepository(db)
	directory := repository.NewUserDirectory(userRepo, cache, cfg.TimeZoneCacheTTL, m, logging.Component(logger, "user-directory"))

	syncService, err := jikan.NewSyncServiceFromConfig(cfg, zones, animeRepo, syncStateRepo, m, logger)
	if err != nil {
		return err
	}
	scheduler := jikan.NewScheduler(syncService, lock, syncStateRepo, jikan.SchedulerConfig{
		Interval:     cfg.CatalogSyncInterval,
		RunOnStartup: cfg.CatalogSyncOnStartup,
	}, logging.Component(logger, "catalog-scheduler"))

	authService := service.NewAuthService(userRepo, zones, cfg)
	userService := service.NewUserService(userRepo, directory, zones, logging.Component(logger, "user-service"))
	scheduleService := service.NewScheduleService(scheduleRepo, animeRepo, directory, zones, logging.Component(logger, "schedule-service"))
	catalogService := service.NewCatalogService(animeRepo, scheduler)

	// 5. Routes
	checks := map[string]handler.HealthCheck{"database": database.Ping(db)}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	router := newRouter(cfg, m, checks, routes{
		auth:     handler.NewAuthHandler(authService),
		users:    handler.NewUserHandler(userService),
		anime:    handler.NewAnimeHandler(catalogService),
		schedule: handler.NewScheduleHandler(scheduleService),
		admin:    handler.NewAdminHandler(catalogService),
	}, authService)

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           middleware.AccessLog(logging.Component(logger, "http"), router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type routes struct {
	auth     *handler.AuthHandler
	users    *handler.UserHandler
	anime    *handler.AnimeHandler
	schedule *handler.ScheduleHandler
	admin    *handler.AdminHandler
}

func newRouter(cfg *config.Config, m metrics.Provider, checks map[string]handler.HealthCheck, r routes, authService service.AuthService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics(m))

	router.GET("/health", handler.NewHealthHandler(checks).Health)
	if p, ok := m.(*metrics.PrometheusProvider); ok {
		router.GET("/metrics", gin.WrapH(p.Handler()))
	}

	api := router.Group("/api")
	r.auth.RegisterRoutes(api.Group("/auth"))
	r.anime.RegisterRoutes(api.Group("/anime"))

	protected := api.Group("", middleware.AuthMiddleware(authService))
	r.users.RegisterRoutes(protected.Group("/users"))
	r.schedule.RegisterRoutes(protected.Group("/schedule"))
	r.admin.RegisterRoutes(protected.Group("/admin"))

	return router
}
