package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appreconcile "github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/application/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/auth"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/cache"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/config"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/ordersystem"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/telemetry"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/tracesystem"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/upstream"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/handler"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/cmosqueda1/FMS-TMS-Checkstatus/docs"
)

//go:generate swag init --dir ../../ --generalInfo cmd/server/main.go --output ../../docs --outputTypes go --parseInternal

//	@title			Check-Status API
//	@version		1.0
//	@description	Reconciles shipment status between Order-System and Trace-System

//	@contact.name	API Support
//	@contact.url	https://github.com/cmosqueda1/FMS-TMS-Checkstatus

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from `checkstatus token`. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewForEnvironment(cfg.App.Env, &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// Logs first so everything after is also exported
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log = logProvider.Bridge(log, logger.Level(cfg.Log.Level))

	log.Info("Starting check-status service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	meter := meterProvider.Meter(telemetry.MeterName)
	reconcileMetrics, err := telemetry.NewReconcileMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register reconcile metrics", zap.Error(err))
	}

	tokens, err := cache.NewTokenStoreFactory(
		cfg.TokenCache.Driver,
		cache.RedisConfig{Addr: cfg.Redis.RedisAddr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create token store", zap.Error(err))
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			log.Error("Error closing token store", zap.Error(err))
		}
	}()

	observe := upstream.WithObserver(reconcileMetrics)
	orders := ordersystem.NewClient(ordersystem.Config{
		BaseURL:   cfg.OrderSystem.BaseURL,
		Account:   cfg.OrderSystem.Account,
		Password:  cfg.OrderSystem.Password,
		ClientID:  cfg.OrderSystem.ClientID,
		CompanyID: cfg.OrderSystem.CompanyID,
		Timeout:   cfg.OrderSystem.Timeout,
	}, observe)
	traces := tracesystem.NewClient(tracesystem.Config{
		BaseURL:  cfg.TraceSystem.BaseURL,
		Username: cfg.TraceSystem.Username,
		Password: cfg.TraceSystem.Password,
		GroupID:  cfg.TraceSystem.GroupID,
		Timeout:  cfg.TraceSystem.Timeout,
	}, observe)

	engine := appreconcile.NewEngine(orders, traces, tokens, appreconcile.EngineConfig{
		Concurrency:     cfg.Reconcile.Concurrency,
		MaxBatch:        cfg.Reconcile.MaxBatch,
		RefreshPerBatch: cfg.OrderSystem.RefreshPerBatch,
		BatchTimeout:    cfg.Reconcile.BatchTimeout,
	},
		appreconcile.WithRecorder(reconcileMetrics),
		appreconcile.WithSessionOptions(
			appreconcile.WithTokenKey(cfg.TokenCache.Key),
			appreconcile.WithTokenTTL(cfg.TokenCache.TTL),
		),
	)
	log.Info("Reconcile engine ready",
		zap.Int("concurrency", cfg.Reconcile.Concurrency),
		zap.Int("max_batch", engine.MaxBatch()),
		zap.String("token_cache", cfg.TokenCache.Driver),
	)

	var jwtService *auth.JWTService
	if cfg.Auth.JWTSecret != "" {
		jwtService, err = auth.NewJWTService(auth.Config{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.JWTIssuer,
			TTL:    cfg.Auth.TokenTTL,
		})
		if err != nil {
			log.Fatal("Failed to initialize caller auth", zap.Error(err))
		}
		log.Info("Caller authentication enabled")
	} else {
		log.Warn("Caller authentication disabled; set auth.jwt_secret to require bearer tokens")
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var httpMeter metric.Meter
	if cfg.Telemetry.Enabled {
		httpMeter = meter
	}
	httpEngine, err := router.NewEngine(router.Dependencies{
		Logger:      log,
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Meter:       httpMeter,
		JWT:         jwtService,
		Swagger:     cfg.HTTP.SwaggerEnabled && !cfg.App.IsProduction(),
		Health:      handler.NewHealthHandler(cfg.App.Name, cfg.App.Env),
		Reconcile:   handler.NewReconcileHandler(engine, engine.Sessions()),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpEngine,
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
	}
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
		log.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
