package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvCAPIBaseURL        = "CAPI_BASE_URL"
	EnvCAPIAPIVersion     = "CAPI_API_VERSION"
	EnvCAPIForwardTimeout = "CAPI_FORWARD_TIMEOUT"
	EnvCAPIAccessToken    = "CAPI_ACCESS_TOKEN"

	EnvNormalizePhone = "NORMALIZE_PHONE"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisConnTimeout = "REDIS_CONN_TIMEOUT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
