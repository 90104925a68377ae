package driver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/emberdb/ember-go/pkg/metrics"
)

// Metrics holds the driver's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	executes         *prometheus.CounterVec
	executeDuration  *prometheus.HistogramVec
	fetchBatches     prometheus.Counter
	rowsFetched      prometheus.Counter
	blobBytes        *prometheus.CounterVec
	eventsDispatched prometheus.Counter
}

// NewMetrics creates the driver collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executes: metrics.NewCounterVec(
			"ember_driver_executes_total",
			"Statement executions by operation.",
			[]string{"operation"},
		),
		executeDuration: metrics.NewHistogramVec(
			"ember_driver_execute_duration_seconds",
			"Statement execution latency by operation.",
			[]string{"operation"},
			prometheus.DefBuckets,
		),
		fetchBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ember_driver_fetch_batches_total",
			Help: "Cursor fetch batches retrieved.",
		}),
		rowsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ember_driver_rows_fetched_total",
			Help: "Rows retrieved through cursors.",
		}),
		blobBytes: metrics.NewCounterVec(
			"ember_driver_blob_bytes_total",
			"Blob bytes streamed by direction.",
			[]string{"direction"},
		),
		eventsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ember_driver_event_batches_total",
			Help: "Event notification batches dispatched to handlers.",
		}),
	}
	reg.MustRegister(
		m.executes,
		m.executeDuration,
		m.fetchBatches,
		m.rowsFetched,
		m.blobBytes,
		m.eventsDispatched,
	)
	return m
}

func (m *Metrics) observeExecute(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.executes.WithLabelValues(operation).Inc()
	m.executeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeFetch(rows int) {
	if m == nil {
		return
	}
	m.fetchBatches.Inc()
	m.rowsFetched.Add(float64(rows))
}

func (m *Metrics) observeBlob(direction string, n int) {
	if m == nil {
		return
	}
	m.blobBytes.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) observeEventBatch() {
	if m == nil {
		return
	}
	m.eventsDispatched.Inc()
}
