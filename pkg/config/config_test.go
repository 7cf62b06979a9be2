package config

import (
	"strings"
	"testing"
	"time"

	"capirelay/pkg/logger"
)

func validConfig() *Config {
	return &Config{
		Port:               "8080",
		CAPIBaseURL:        DefaultCAPIBaseURL,
		CAPIAPIVersion:     DefaultCAPIAPIVersion,
		CAPIForwardTimeout: DefaultCAPIForwardTimeout,
		RequestTimeout:     DefaultRequestTimeout,
		IdempotencyTTL:     DefaultIdempotencyTTL,
		MaxRequestSize:     DefaultMaxRequestSize,
		ReadTimeout:        DefaultReadTimeout,
		WriteTimeout:       DefaultWriteTimeout,
		IdleTimeout:        DefaultIdleTimeout,
		ShutdownTimeout:    DefaultShutdownTimeout,
		Log:                logger.Discard(),
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{EnvPort, EnvCAPIBaseURL, EnvCAPIAPIVersion, EnvCAPIForwardTimeout, EnvNormalizePhone, EnvRedisAddr} {
		t.Setenv(key, "")
	}

	cfg := FromEnv("capi-relay")

	if cfg.Port != DefaultPort {
		t.Errorf("expected default port, got %s", cfg.Port)
	}
	if cfg.CAPIBaseURL != "https://graph.facebook.com" {
		t.Errorf("unexpected base url %s", cfg.CAPIBaseURL)
	}
	if cfg.CAPIAPIVersion != "v19.0" {
		t.Errorf("unexpected api version %s", cfg.CAPIAPIVersion)
	}
	if cfg.CAPIForwardTimeout != 10*time.Second {
		t.Errorf("unexpected forward timeout %s", cfg.CAPIForwardTimeout)
	}
	if cfg.NormalizePhone {
		t.Error("phone normalization must be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvCAPIAPIVersion, "v21.0")
	t.Setenv(EnvCAPIForwardTimeout, "3s")
	t.Setenv(EnvNormalizePhone, "true")
	t.Setenv(EnvMaxRequestSize, "2048")
	t.Setenv(EnvRedisAddr, "localhost:6379")

	cfg := FromEnv("capi-relay")

	if cfg.Port != "9090" || cfg.CAPIAPIVersion != "v21.0" {
		t.Errorf("string overrides not applied: %+v", cfg)
	}
	if cfg.CAPIForwardTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %s", cfg.CAPIForwardTimeout)
	}
	if !cfg.NormalizePhone {
		t.Error("expected phone normalization enabled")
	}
	if cfg.MaxRequestSize != 2048 {
		t.Errorf("expected 2048, got %d", cfg.MaxRequestSize)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis addr %s", cfg.RedisAddr)
	}
}

func TestFromEnv_UnparseableFallsBack(t *testing.T) {
	t.Setenv(EnvCAPIForwardTimeout, "soon")
	t.Setenv(EnvMaxRequestSize, "big")
	t.Setenv(EnvNormalizePhone, "maybe")

	cfg := FromEnv("capi-relay")

	if cfg.CAPIForwardTimeout != DefaultCAPIForwardTimeout {
		t.Errorf("expected default timeout, got %s", cfg.CAPIForwardTimeout)
	}
	if cfg.MaxRequestSize != DefaultMaxRequestSize {
		t.Errorf("expected default size, got %d", cfg.MaxRequestSize)
	}
	if cfg.NormalizePhone != DefaultNormalizePhone {
		t.Error("expected default normalize flag")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "0" }, wantErr: "Port must be between"},
		{name: "relative base url", mutate: func(c *Config) { c.CAPIBaseURL = "graph.facebook.com" }, wantErr: "CAPIBaseURL"},
		{name: "empty version", mutate: func(c *Config) { c.CAPIAPIVersion = "" }, wantErr: "CAPIAPIVersion"},
		{name: "zero forward timeout", mutate: func(c *Config) { c.CAPIForwardTimeout = 0 }, wantErr: "CAPIForwardTimeout must be positive"},
		{name: "forward exceeds request timeout", mutate: func(c *Config) { c.CAPIForwardTimeout = time.Minute }, wantErr: "must not exceed RequestTimeout"},
		{name: "zero max size", mutate: func(c *Config) { c.MaxRequestSize = 0 }, wantErr: "MaxRequestSize"},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimitRequests = -1 }, wantErr: "RateLimitRequests"},
		{name: "rate limit without window", mutate: func(c *Config) { c.RateLimitRequests = 5; c.RateLimitWindow = 0 }, wantErr: "RateLimitWindow"},
		{name: "negative ttl", mutate: func(c *Config) { c.IdempotencyTTL = -time.Second }, wantErr: "IdempotencyTTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCAPIClientConfig(t *testing.T) {
	cfg := validConfig()
	cfg.CAPIBaseURL = "http://localhost:9999"

	cc := cfg.CAPIClientConfig()
	if cc.BaseURL != "http://localhost:9999" || cc.APIVersion != DefaultCAPIAPIVersion || cc.Timeout != DefaultCAPIForwardTimeout {
		t.Errorf("unexpected client config %+v", cc)
	}
}
