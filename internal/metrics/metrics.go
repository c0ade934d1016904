// Package metrics collects and exposes Prometheus metrics for the
// registration and roster paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector records domain metrics. Services hold it behind the Recorder
// interface so tests can pass a no-op.
type Collector struct {
	registrations     *prometheus.CounterVec
	sessionsOpened    prometheus.Counter
	sessionsClosed    prometheus.Counter
	rosterSubscribers prometheus.Gauge
	queuePublishFail  prometheus.Counter
}

// Recorder is the subset services depend on.
type Recorder interface {
	RecordRegistration(outcome string)
	RecordSessionOpened()
	RecordSessionClosed()
	RecordQueuePublishFailure()
	AddRosterSubscribers(delta int)
}

// Registration outcomes.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalidCode       = "invalid_code"
	OutcomeSessionNotFound   = "session_not_found"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeError             = "error"
)

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_registrations_total",
			Help: "Attendance registration attempts by outcome.",
		}, []string{"outcome"}),
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_sessions_opened_total",
			Help: "Sessions opened by teachers.",
		}),
		sessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_sessions_closed_total",
			Help: "Sessions closed.",
		}),
		rosterSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rollcall_roster_subscribers",
			Help: "Currently connected live roster subscribers.",
		}),
		queuePublishFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_queue_publish_failures_total",
			Help: "Registration events that could not be enqueued.",
		}),
	}
	reg.MustRegister(c.registrations, c.sessionsOpened, c.sessionsClosed, c.rosterSubscribers, c.queuePublishFail)
	return c
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSessionOpened() { c.sessionsOpened.Inc() }

func (c *Collector) RecordSessionClosed() { c.sessionsClosed.Inc() }

func (c *Collector) RecordQueuePublishFailure() { c.queuePublishFail.Inc() }

func (c *Collector) AddRosterSubscribers(delta int) {
	c.rosterSubscribers.Add(float64(delta))
}

// Noop discards every metric. Useful in tests.
type Noop struct{}

func (Noop) RecordRegistration(string)  {}
func (Noop) RecordSessionOpened()       {}
func (Noop) RecordSessionClosed()       {}
func (Noop) RecordQueuePublishFailure() {}
func (Noop) AddRosterSubscribers(int)   {}
