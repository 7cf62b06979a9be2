package config

import (
	"time"

	"capirelay/pkg/capi"
)

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultCAPIBaseURL        = capi.DefaultBaseURL
	DefaultCAPIAPIVersion     = capi.DefaultAPIVersion
	DefaultCAPIForwardTimeout = capi.DefaultTimeout

	DefaultNormalizePhone = false

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultRedisConnTimeout = 5 * time.Second

	// Zero disables per-destination rate limiting.
	DefaultRateLimitRequests = 0
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
