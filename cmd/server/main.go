package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/atthompson13/aa-shoppingcart/internal/application/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/auth"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/cache"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/config"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/event"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/logger"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/notify"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/persistence"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/scheduler"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/telemetry"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/handler"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/middleware"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/atthompson13/aa-shoppingcart/docs"
)

//	@title			Shopping Cart API
//	@version		1.0
//	@description	Item requests, contracts and fulfilment tracking for an EVE Online alliance portal.

//	@contact.name	API Support
//	@contact.url	https://github.com/atthompson13/aa-shoppingcart

//	@license.name	MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the portal. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	clock := clockwork.NewRealClock()
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// OTEL logs are bridged into zap so every log line is exported too
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		base, err := logger.NewCore(logCfg)
		if err != nil {
			log.Fatal("Failed to build log core", zap.Error(err))
		}
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		log = telemetry.NewBridgedLogger(base, telemetry.NewZapOTELCore(serviceName, logProvider, level),
			zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
			With(zap.String("service", cfg.App.Name))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Shopping Cart",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeURL,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction()),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction(),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, sqlDB, meterProvider, cfg.Telemetry.DBSlowQueryThresh, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	defer func() {
		_ = dbMetrics.Stop()
	}()

	// Redis backs token revocation and task dedupe; without it both are process local
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist(clock)
	}
	idempotencyStore := cache.NewIdempotencyStoreFactory(redisClient,
		cache.WithLogger(log), cache.WithClock(clock)).CreateStore()
	defer func() {
		_ = idempotencyStore.Close()
	}()

	settings := cartapp.Settings{
		AppName:                cfg.ShoppingCart.AppName,
		EnableMarketplace:      cfg.ShoppingCart.EnableMarketplace,
		EnableLeaderboard:      cfg.ShoppingCart.EnableLeaderboard,
		NotifyOnNewRequest:     cfg.ShoppingCart.NotifyOnNewRequest,
		NotifyOnClaim:          cfg.ShoppingCart.NotifyOnClaim,
		FulfilledRetentionDays: cfg.ShoppingCart.FulfilledRetentionDays,
		AbandonedCartDays:      cfg.ShoppingCart.AbandonedCartDays,
		PaginationSize:         cfg.ShoppingCart.PaginationSize,
		LeaderboardSize:        cfg.ShoppingCart.LeaderboardSize,
		DefaultHubs:            cfg.ShoppingCart.DefaultHubs,
	}

	requestRepo := persistence.NewGormItemRequestRepository(db.DB)
	trackingRepo := persistence.NewGormFulfillmentTrackingRepository(db.DB)

	requestService := cartapp.NewRequestService(requestRepo, trackingRepo, settings,
		cartapp.WithClock(clock), cartapp.WithLogger(log))
	maintenanceService := cartapp.NewMaintenanceService(requestRepo, settings, clock, log)
	maintenanceService.SetBatchSize(cfg.Scheduler.SweepBatchSize)

	taskRunner := cartapp.NewTaskRunner(requestRepo, settings, log)
	taskRunner.SetIdempotencyStore(idempotencyStore, cfg.Notify.DedupeTTL)
	if cfg.Notify.DiscordWebhookURL != "" {
		discord, err := notify.NewDiscordNotifier(notify.DiscordConfig{
			WebhookURL:      cfg.Notify.DiscordWebhookURL,
			Username:        settings.AppName,
			Timeout:         cfg.Notify.Timeout,
			RatePerMinute:   cfg.Notify.RatePerMinute,
			Burst:           cfg.Notify.Burst,
			BreakerFailures: cfg.Notify.BreakerFailures,
			BreakerCooldown: cfg.Notify.BreakerCooldown,
		}, log)
		if err != nil {
			log.Fatal("Failed to configure Discord notifications", zap.Error(err))
		}
		taskRunner.SetNotifier(discord)
		log.Info("Discord notifications enabled")
	}

	cartMetrics, err := telemetry.NewCartMetrics(meterProvider, requestRepo, log)
	if err != nil {
		log.Fatal("Failed to create cart metrics", zap.Error(err))
	}
	defer func() {
		_ = cartMetrics.Stop()
	}()

	taskScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		QueueSize:         cfg.Scheduler.QueueSize,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, scheduler.JobExecutorFunc(cartMetrics.InstrumentTask(taskRunner.Execute)), log, clock)

	eventBus := event.NewInMemoryEventBus(log)
	// handlers enqueue notifications, so a redelivered event must not enqueue twice
	cartHandlers := event.WrapHandlers(cartapp.EventHandlers(taskScheduler, settings, log),
		idempotencyStore, shared.DefaultIdempotencyConfig(), log)
	for _, h := range cartHandlers {
		eventBus.Subscribe(h)
	}
	eventBus.Subscribe(cartMetrics)
	requestService.SetEventPublisher(eventBus)
	maintenanceService.SetEventPublisher(eventBus)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// when disabled, Enqueue runs tasks inline on the event bus goroutine
	if cfg.Scheduler.Enabled {
		if err := taskScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start task scheduler", zap.Error(err))
		}
		defer func() {
			if err := taskScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping task scheduler", zap.Error(err))
			}
		}()

		sweeperConfig := scheduler.DefaultSweeperConfig()
		if cfg.Scheduler.SweepInterval > 0 {
			sweeperConfig.Interval = cfg.Scheduler.SweepInterval
		}
		sweeper, err := scheduler.NewSweeper(sweeperConfig, maintenanceService.Sweep, log, clock)
		if err != nil {
			log.Fatal("Failed to create sweeper", zap.Error(err))
		}
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping sweeper", zap.Error(err))
			}
		}()
		log.Info("Background tasks started",
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
			zap.Duration("sweep_interval", sweeperConfig.Interval),
		)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	jwtService := auth.NewJWTService(cfg.JWT)

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, clock)
		go pruneRateLimiter(ctx, limiter, cfg.HTTP.RateLimitWindow, clock)
	}

	checks := []handler.HealthCheck{{Name: "database", Ping: db.Ping}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	profilingConfig := middleware.DefaultProfilingConfig()
	profilingConfig.Enabled = profiler.IsEnabled()

	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		Cart:   handler.NewCartHandler(requestService),
		Auth:   handler.NewAuthHandler(jwtService, blacklist, cfg.JWT.RefreshTokenExpiration),
		System: handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, clock, checks...),
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		RateLimiter:    limiter,
		CORS:           corsConfig,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RequestTimeout: cfg.HTTP.WriteTimeout,
		Tracing: middleware.TracingConfig{
			ServiceName: serviceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Meter:     meterProvider,
		Profiling: profilingConfig,
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// pruneRateLimiter drops idle rate limit buckets once per window
func pruneRateLimiter(ctx context.Context, limiter *middleware.RateLimiter, window time.Duration, clock clockwork.Clock) {
	if window <= 0 {
		window = time.Minute
	}
	ticker := clock.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			limiter.Prune()
		}
	}
}
