// Package metrics provides Prometheus-based monitoring and metrics collection
// for processes built on the EmberDB driver.
//
// It exposes a configurable /metrics HTTP endpoint backed by a dedicated
// registry, registers the Go runtime and process collectors when enabled, and
// labels every metric with the owning service's name. The driver's own
// collectors (statement executions, fetch batches, blob bytes, event
// dispatches) are registered on this registry through driver.NewMetrics.
//
// Direct usage:
//
//	import "github.com/emberdb/ember-go/pkg/metrics"
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "order-importer",
//	})
//	go m.Server.ListenAndServe()
//
//	driverMetrics := driver.NewMetrics(m.Registerer())
//	client := driver.NewClient(eng, driver.Config{}, log, driver.WithMetrics(driverMetrics))
//
// With Fx, FXModule provides the Metrics instance and manages the HTTP
// server's startup and graceful shutdown through lifecycle hooks.
//
// The NewCounterVec, NewHistogramVec and NewGaugeVec helpers keep collector
// definitions consistent for applications adding their own metrics next to
// the driver's.
package metrics
