package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and the HTTP server that
// exposes it on /metrics for scraping. Each process keeps its own isolated
// registry; driver collectors are registered on it through
// driver.NewMetrics.
type Metrics struct {
	Server      *http.Server
	Registry    *prometheus.Registry
	serviceName string
}

// NewMetrics sets up a dedicated Prometheus registry, registers the default
// system collectors when enabled, wraps everything with a constant service
// label, and creates the HTTP server exposing the /metrics endpoint.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	server := &http.Server{
		Addr:    address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	return &Metrics{
		Server:      server,
		Registry:    registry,
		serviceName: cfg.ServiceName,
	}
}

// Registerer returns the registry wrapped with the service label, the
// target for registering application collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	return prometheus.WrapRegistererWith(prometheus.Labels{"service": m.serviceName}, m.Registry)
}
