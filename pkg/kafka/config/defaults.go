package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultEventsTopic     = "capi.events"
	DefaultDeliveriesTopic = "capi.deliveries"
	DefaultDLQTopic        = "capi.events.dlq"
	DefaultGroupID         = "capi-relay"

	// Producer defaults
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	// Consumer defaults
	DefaultConsumerStartOffset       = -1 // newest
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second

	DefaultEnableMiddleware = true
)
