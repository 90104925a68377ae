package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewCounterVec defines a new CounterVec with standard options. Used by
// consuming packages to keep collector definitions consistent.
func NewCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// NewHistogramVec defines a new HistogramVec with configurable buckets.
// Used for latency tracking.
func NewHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

// NewGaugeVec defines a new GaugeVec for resource monitoring.
func NewGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
