package main

import (
	"capirelay/internal/events/handler"
	"capirelay/internal/events/service"
	"capirelay/internal/events/validator"
	"capirelay/pkg/app"
	"capirelay/pkg/capi"
	"capirelay/pkg/config"
)

const ServiceName = "capi-relay"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetRedis()

	cfg.Log.Info("Starting Conversions API relay")
	eventService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(ServiceName, readinessChecks(cfg), cfg.Log),
		handler.NewEventHandler(eventService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.EventService {
	eventValidator := validator.NewEventValidator(cfg.Log)
	forwarder := capi.NewClient(cfg.CAPIClientConfig())
	eventService := service.NewEventService(
		eventValidator,
		forwarder,
		service.Options{NormalizePhone: cfg.NormalizePhone},
		cfg.Log,
	)

	cfg.Log.Info("Event service initialized", "events_url_version", cfg.CAPIAPIVersion)
	return eventService
}

func readinessChecks(cfg *config.Config) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{}
	if cfg.Client.Redis != nil {
		checks["redis"] = cfg.Client.PingRedis
	}
	return checks
}
