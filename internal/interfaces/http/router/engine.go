package router

import (
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/logger"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/telemetry"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/dto"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/handler"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// EngineConfig gathers everything the HTTP engine is assembled from
type EngineConfig struct {
	Logger *zap.Logger

	Cart   *handler.CartHandler
	Auth   *handler.AuthHandler
	System *handler.SystemHandler

	// Authenticate validates the bearer token of cart routes
	Authenticate gin.HandlerFunc
	// RateLimiter is optional. Cart routes are limited per player, the rest per client IP.
	RateLimiter *middleware.RateLimiter

	CORS           middleware.CORSConfig
	TrustedProxies []string
	MaxBodySize    int64
	RequestTimeout time.Duration

	Tracing   middleware.TracingConfig
	Meter     *telemetry.MeterProvider
	Profiling middleware.ProfilingConfig
	Swagger   middleware.SwaggerConfig
}

// NewEngine assembles the gin engine: global middleware, the health probe,
// API docs and every versioned route group.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.Tracing),
		logger.GinMiddleware(log),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.Profiling(cfg.Profiling),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	engine.NoRoute(func(c *gin.Context) {
		(&handler.BaseHandler{}).NotFound(c, "Route not found")
	})

	engine.GET("/health", cfg.System.Health)
	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	authenticate := cfg.Authenticate
	if authenticate == nil {
		authenticate = func(c *gin.Context) {
			(&handler.BaseHandler{}).Unauthorized(c, "Authentication required")
			c.Abort()
		}
	}

	public := []gin.HandlerFunc{}
	private := []gin.HandlerFunc{authenticate}
	if cfg.RateLimiter != nil {
		limit := middleware.RateLimit(cfg.RateLimiter)
		public = append(public, limit)
		private = append(private, limit)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(AuthRoutes(cfg.Auth).Use(public...)).
		Register(SystemRoutes(cfg.System).Use(public...)).
		Register(CartRoutes(cfg.Cart, private...))
	routes := r.Setup()
	log.Debug("API routes mounted", zap.String("prefix", r.Prefix()), zap.Int("routes", len(routes)))

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		(&handler.BaseHandler{}).ErrorWithCode(c, dto.ErrCodeMethodNotAllowed, "Method not allowed")
	})

	return engine, nil
}
