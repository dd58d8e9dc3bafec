package router

import (
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/auth"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/config"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/handler"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Dependencies wires handlers and cross-cutting services into the engine
type Dependencies struct {
	Logger      *zap.Logger
	HTTP        config.HTTPConfig
	ServiceName string

	// Meter enables request metrics when non-nil
	Meter metric.Meter
	// JWT enables caller authentication when non-nil
	JWT *auth.JWTService
	// Swagger serves the API docs at /swagger/*any. The docs package must be
	// imported by the binary for doc.json to resolve.
	Swagger bool

	Health    *handler.HealthHandler
	Reconcile *handler.ReconcileHandler
}

// NewEngine builds the gin engine with the middleware stack and API routes.
//
// Order: Recovery, RequestID, Tracing, TraceAttributes, request logger,
// metrics, profiling labels, CORS, body limit, rate limit.
func NewEngine(deps Dependencies) (*gin.Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(deps.ServiceName))
	engine.Use(middleware.TraceAttributes())
	engine.Use(logger.GinMiddleware(log))

	if deps.Meter != nil {
		metricsMiddleware, err := middleware.HTTPMetrics(deps.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metricsMiddleware)
	}
	engine.Use(middleware.Profiling())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = deps.HTTP.CORSAllowOrigins
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, "X-RateLimit-Limit", "X-RateLimit-Remaining")
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if deps.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.HTTP.MaxBodySize))
	}

	if deps.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(deps.HTTP.RateLimitRequests, deps.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", deps.HTTP.RateLimitRequests),
			zap.Duration("window", deps.HTTP.RateLimitWindow),
		)
	}

	if deps.Health != nil {
		engine.GET("/health", deps.Health.Health)
	}
	if deps.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine, WithGroupMiddleware(
		middleware.CallerAuth(deps.JWT),
		middleware.RequireScope(auth.ScopeReconcile),
	))

	if deps.Reconcile != nil {
		r.Register(NewDomainGroup("reconcile", "").
			POST("/reconcile", deps.Reconcile.Reconcile))
		r.Register(NewDomainGroup("session", "/session").
			Use(middleware.RequireScope(auth.ScopeSessionAdmin)).
			POST("/invalidate", deps.Reconcile.InvalidateSession))
	}
	r.Setup()

	return engine, nil
}
