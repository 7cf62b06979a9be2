package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"capirelay/pkg/capi"
	"capirelay/pkg/client"
	"capirelay/pkg/logger"
)

type Config struct {
	Port string

	CAPIBaseURL        string
	CAPIAPIVersion     string
	CAPIForwardTimeout time.Duration
	// CAPIAccessToken is only used by ingress paths that carry no credential of their own.
	CAPIAccessToken string

	NormalizePhone bool

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	RedisAddr        string
	RedisConnTimeout time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the environment, validates it and logs the result. Invalid
// configuration is fatal.
func Load(serviceName string) *Config {
	cfg := FromEnv(serviceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from the environment without validating it.
func FromEnv(serviceName string) *Config {
	return &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		CAPIBaseURL:        getEnvStr(EnvCAPIBaseURL, DefaultCAPIBaseURL),
		CAPIAPIVersion:     getEnvStr(EnvCAPIAPIVersion, DefaultCAPIAPIVersion),
		CAPIForwardTimeout: getEnvDuration(EnvCAPIForwardTimeout, DefaultCAPIForwardTimeout),
		CAPIAccessToken:    getEnvStr(EnvCAPIAccessToken, ""),

		NormalizePhone: getEnvBool(EnvNormalizePhone, DefaultNormalizePhone),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		RedisAddr:        getEnvStr(EnvRedisAddr, ""),
		RedisConnTimeout: getEnvDuration(EnvRedisConnTimeout, DefaultRedisConnTimeout),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

// SetRedis connects the shared Redis client when REDIS_ADDR is configured.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisConnTimeout)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if u, err := url.Parse(cfg.CAPIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("CAPIBaseURL must be an absolute URL, got: %s", cfg.CAPIBaseURL))
	}
	if cfg.CAPIAPIVersion == "" {
		errors = append(errors, "CAPIAPIVersion cannot be empty")
	}

	if cfg.CAPIForwardTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("CAPIForwardTimeout must be positive, got: %s", cfg.CAPIForwardTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.CAPIForwardTimeout > cfg.RequestTimeout && cfg.RequestTimeout > 0 {
		errors = append(errors, fmt.Sprintf("CAPIForwardTimeout (%s) must not exceed RequestTimeout (%s)", cfg.CAPIForwardTimeout, cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RedisAddr != "" && cfg.RedisConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RedisConnTimeout must be positive, got: %s", cfg.RedisConnTimeout))
	}
	if cfg.RateLimitRequests < 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests cannot be negative, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}

	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"capi_base_url", cfg.CAPIBaseURL,
		"capi_api_version", cfg.CAPIAPIVersion,
		"capi_forward_timeout", cfg.CAPIForwardTimeout,
		"capi_access_token_set", cfg.CAPIAccessToken != "",
		"normalize_phone", cfg.NormalizePhone,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"redis_enabled", cfg.RedisAddr != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

// CAPIClientConfig is the outbound client configuration derived from cfg.
func (cfg *Config) CAPIClientConfig() capi.Config {
	return capi.Config{
		BaseURL:    cfg.CAPIBaseURL,
		APIVersion: cfg.CAPIAPIVersion,
		Timeout:    cfg.CAPIForwardTimeout,
	}
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
