package iosched

import "github.com/prometheus/client_golang/prometheus"

// Rejection reason labels for the ops-rejected counter.
const (
	reasonNotFound = "not_found"
	reasonClosed   = "closed"
)

// collectors holds the scheduler's prometheus metrics. Every metric is
// owned by the scheduler instance rather than registered through a
// package-level registry, so independent schedulers never share series
// and tests get a clean slate from each constructor call.
type collectors struct {
	opsEnqueued    prometheus.Counter
	opsRejected    *prometheus.CounterVec
	opsCompleted   prometheus.Counter
	execDuration   prometheus.Histogram
	openStreams    prometheus.Gauge
	closingStreams prometheus.Gauge
}

// newCollectors builds the metric set and, when reg is non-nil,
// registers it.
func newCollectors(reg prometheus.Registerer) *collectors {
	c := &collectors{
		opsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iosched_ops_enqueued_total",
			Help: "The number of ops accepted into a stream",
		}),
		opsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iosched_ops_rejected_total",
			Help: "The number of ops rejected at admission",
		}, []string{"reason"}),
		opsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iosched_ops_completed_total",
			Help: "The number of ops returned to the client",
		}),
		execDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "iosched_execute_duration_seconds",
			Help:    "Latency of client Execute calls",
			Buckets: prometheus.DefBuckets,
		}),
		openStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "iosched_open_streams",
			Help: "The number of currently open streams",
		}),
		closingStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "iosched_closing_streams",
			Help: "The number of streams closing but not yet drained",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.opsEnqueued,
			c.opsRejected,
			c.opsCompleted,
			c.execDuration,
			c.openStreams,
			c.closingStreams,
		)
	}
	return c
}
