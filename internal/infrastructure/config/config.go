package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	OrderSystem OrderSystemConfig
	TraceSystem TraceSystemConfig
	Reconcile   ReconcileConfig
	TokenCache  TokenCacheConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	TrustedProxies    []string
	SwaggerEnabled    bool // serve /swagger/*any outside production
}

// OrderSystemConfig holds Order-System (FMS) connection settings.
// Credentials may be empty at load time; the engine reports them per request.
type OrderSystemConfig struct {
	BaseURL         string
	Account         string
	Password        string
	ClientID        string
	CompanyID       string
	Timeout         time.Duration
	RefreshPerBatch bool // re-login before every batch instead of reusing the cached token
}

// TraceSystemConfig holds Trace-System (TMS) connection settings
type TraceSystemConfig struct {
	BaseURL  string
	Username string
	Password string
	GroupID  string
	Timeout  time.Duration
}

// ReconcileConfig holds batch settings
type ReconcileConfig struct {
	Concurrency int // max in-flight detail fetches; each fetch issues two Order-System calls
	MaxBatch    int
	// BatchTimeout bounds one batch end to end. Defaults to the Order-System
	// timeout times the number of fan-out rounds plus login and search.
	BatchTimeout time.Duration
}

// TokenCacheConfig selects where the Order-System token is cached
type TokenCacheConfig struct {
	Driver string        // memory, redis
	TTL    time.Duration // 0 = until invalidated
	Key    string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds caller authentication settings.
// An empty secret disables bearer-token checks on the API.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	ProfilingEnabled  bool
	ProfilingServer   string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CHECKSTATUS_ prefix (e.g., CHECKSTATUS_ORDER_SYSTEM_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CHECKSTATUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.swagger_enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
			SwaggerEnabled:    v.GetBool("http.swagger_enabled"),
		},
		OrderSystem: OrderSystemConfig{
			BaseURL:         v.GetString("order_system.base_url"),
			Account:         v.GetString("order_system.account"),
			Password:        v.GetString("order_system.password"),
			ClientID:        v.GetString("order_system.client_id"),
			CompanyID:       v.GetString("order_system.company_id"),
			Timeout:         v.GetDuration("order_system.timeout"),
			RefreshPerBatch: v.GetBool("order_system.refresh_per_batch"),
		},
		TraceSystem: TraceSystemConfig{
			BaseURL:  v.GetString("trace_system.base_url"),
			Username: v.GetString("trace_system.username"),
			Password: v.GetString("trace_system.password"),
			GroupID:  v.GetString("trace_system.group_id"),
			Timeout:  v.GetDuration("trace_system.timeout"),
		},
		Reconcile: ReconcileConfig{
			Concurrency:  v.GetInt("reconcile.concurrency"),
			MaxBatch:     v.GetInt("reconcile.max_batch"),
			BatchTimeout: v.GetDuration("reconcile.batch_timeout"),
		},
		TokenCache: TokenCacheConfig{
			Driver: v.GetString("token_cache.driver"),
			TTL:    v.GetDuration("token_cache.ttl"),
			Key:    v.GetString("token_cache.key"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			JWTIssuer: v.GetString("auth.jwt_issuer"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:   v.GetString("telemetry.profiling_server"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "checkstatus"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.OrderSystem.Timeout == 0 {
		cfg.OrderSystem.Timeout = 20 * time.Second
	}
	if cfg.TraceSystem.Timeout == 0 {
		cfg.TraceSystem.Timeout = 20 * time.Second
	}
	if cfg.Reconcile.Concurrency == 0 {
		cfg.Reconcile.Concurrency = 5
	}
	if cfg.Reconcile.MaxBatch == 0 {
		cfg.Reconcile.MaxBatch = 150
	}
	if cfg.Reconcile.BatchTimeout == 0 {
		cfg.Reconcile.BatchTimeout = BatchTimeoutFor(cfg.OrderSystem.Timeout, cfg.Reconcile.MaxBatch, cfg.Reconcile.Concurrency)
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = cfg.Reconcile.BatchTimeout + writeTimeoutMargin
	}
	if cfg.TokenCache.Driver == "" {
		cfg.TokenCache.Driver = "memory"
	}
	if cfg.TokenCache.Key == "" {
		cfg.TokenCache.Key = "order_system_token"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Auth.JWTIssuer == "" {
		cfg.Auth.JWTIssuer = "checkstatus"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "checkstatus"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Reconcile.Concurrency < 1 {
		return fmt.Errorf("reconcile.concurrency must be positive")
	}
	if c.Reconcile.MaxBatch < 1 || c.Reconcile.MaxBatch > 150 {
		return fmt.Errorf("reconcile.max_batch must be between 1 and 150, got %d", c.Reconcile.MaxBatch)
	}
	if c.Reconcile.BatchTimeout < 0 {
		return fmt.Errorf("reconcile.batch_timeout must not be negative")
	}
	if c.HTTP.WriteTimeout <= c.Reconcile.BatchTimeout {
		return fmt.Errorf("http.write_timeout (%s) must exceed reconcile.batch_timeout (%s)", c.HTTP.WriteTimeout, c.Reconcile.BatchTimeout)
	}
	switch c.TokenCache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("token_cache.driver must be memory or redis, got %q", c.TokenCache.Driver)
	}

	if c.App.Env == "production" {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 characters in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServer == "" {
		return fmt.Errorf("telemetry.profiling_server is required when profiling is enabled")
	}

	return nil
}

// writeTimeoutMargin leaves room to encode and send the response after the batch deadline
const writeTimeoutMargin = 15 * time.Second

// BatchTimeoutFor is the worst-case duration of a batch whose upstream calls
// each take up to callTimeout: one login, one search, then
// ceil(maxBatch/concurrency) rounds of detail fetches.
func BatchTimeoutFor(callTimeout time.Duration, maxBatch, concurrency int) time.Duration {
	if concurrency < 1 {
		concurrency = 1
	}
	rounds := (maxBatch + concurrency - 1) / concurrency
	return callTimeout * time.Duration(rounds+2)
}

// RedisAddr returns host:port for the Redis client
func (r RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}
