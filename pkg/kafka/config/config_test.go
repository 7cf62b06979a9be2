package kafka_config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, DefaultEventsTopic, cfg.EventsTopic)
	assert.Equal(t, DefaultDeliveriesTopic, cfg.DeliveriesTopic)
	assert.Equal(t, DefaultDLQTopic, cfg.DLQTopic)
	assert.Equal(t, DefaultGroupID, cfg.GroupID)
	assert.True(t, cfg.EnableMiddleware)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-1:9092 , broker-2:9092")
	t.Setenv(EnvKafkaEventsTopic, "ingest")
	t.Setenv(EnvKafkaGroupID, "relay-a")
	t.Setenv(EnvKafkaProducerCompression, "zstd")
	t.Setenv(EnvKafkaConsumerStartOffset, "-2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Brokers)
	assert.Equal(t, "ingest", cfg.EventsTopic)
	assert.Equal(t, "relay-a", cfg.GroupID)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
	assert.Equal(t, int64(-2), cfg.ConsumerStartOffset)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "ProducerCompression")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty broker", mutate: func(c *Config) { c.Brokers = []string{""} }, wantErr: "broker 0"},
		{name: "no brokers", mutate: func(c *Config) { c.Brokers = nil }, wantErr: "at least one Kafka broker"},
		{name: "missing events topic", mutate: func(c *Config) { c.EventsTopic = "" }, wantErr: EnvKafkaEventsTopic},
		{name: "missing group", mutate: func(c *Config) { c.GroupID = "" }, wantErr: EnvKafkaGroupID},
		{name: "dlq equals events", mutate: func(c *Config) { c.DLQTopic = c.EventsTopic }, wantErr: EnvKafkaDLQTopic},
		{name: "bad acks", mutate: func(c *Config) { c.ProducerRequireAcks = 2 }, wantErr: "ProducerRequireAcks"},
		{name: "bad offset", mutate: func(c *Config) { c.ConsumerStartOffset = -3 }, wantErr: "ConsumerStartOffset"},
		{name: "zero max wait", mutate: func(c *Config) { c.ConsumerMaxWait = 0 }, wantErr: "ConsumerMaxWait"},
		{name: "max below min", mutate: func(c *Config) { c.ConsumerMinBytes = 10; c.ConsumerMaxBytes = 5 }, wantErr: "ConsumerMaxBytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}
