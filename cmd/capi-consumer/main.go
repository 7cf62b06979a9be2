package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"capirelay/internal/events/consumer"
	"capirelay/internal/events/handler"
	"capirelay/internal/events/service"
	"capirelay/internal/events/validator"
	"capirelay/pkg/app"
	"capirelay/pkg/capi"
	"capirelay/pkg/config"
	"capirelay/pkg/kafka"
	kafka_config "capirelay/pkg/kafka/config"
	kafka_middleware "capirelay/pkg/kafka/middleware"
)

const ServiceName = "capi-consumer"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.CAPIAccessToken == "" {
		cfg.Log.Fatal("CAPI_ACCESS_TOKEN is required for Kafka ingress")
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	eventService := service.NewEventService(
		validator.NewEventValidator(cfg.Log),
		capi.NewClient(cfg.CAPIClientConfig()),
		service.Options{NormalizePhone: cfg.NormalizePhone},
		cfg.Log,
	)

	var publisher consumer.Publisher
	var reports *kafka.Producer
	if kafkaCfg.DeliveriesTopic != "" {
		reports, err = kafka.NewProducer(kafkaCfg, kafkaCfg.DeliveriesTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create delivery report producer", "error", err)
		}
		if kafkaCfg.EnableMiddleware {
			reports.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
			reports.Use(kafka_middleware.MetricsProducerMiddleware())
		}
		publisher = reports
	}

	eventConsumer := consumer.NewEventConsumer(eventService, publisher, cfg.CAPIAccessToken, cfg.Log)
	kafkaConsumer, err := kafka.NewConsumer(kafkaCfg, eventConsumer.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		kafkaConsumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		kafkaConsumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	probes := app.NewProbeServer(cfg, handler.NewHealthHandler(ServiceName, nil, cfg.Log))
	go func() {
		cfg.Log.Info("Starting probe server", "address", probes.Addr)
		if err := probes.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Probe server failed", "error", err)
		}
	}()

	cfg.Log.Info("Starting Conversions API consumer")
	if err := kafkaConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}

	cfg.Log.Info("Shutdown signal received, closing Kafka clients")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := probes.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Probe server shutdown failed", "error", err)
	}
	if err := kafkaConsumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	if reports != nil {
		if err := reports.Close(); err != nil {
			cfg.Log.Error("Failed to close delivery report producer", "error", err)
		}
	}
	cfg.Log.Info("Consumer stopped gracefully")
}
