package app

import (
	"net/http"

	"capirelay/pkg/config"
	"capirelay/pkg/contracts"
	"capirelay/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewProbeServer serves only health, readiness and metrics. Workers without a
// public API use it so they can still be probed and scraped.
func NewProbeServer(cfg *config.Config, healthHandler contracts.Handler) *http.Server {
	healthRouter := httprouter.New()
	healthHandler.RegisterRoutes(healthRouter)

	var probes http.Handler = healthRouter
	probes = middleware.Recovery(cfg.Log)(probes)

	mux := http.NewServeMux()
	mux.Handle("/health", probes)
	mux.Handle("/ready", probes)
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
