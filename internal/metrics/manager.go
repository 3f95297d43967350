package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests          *prometheus.CounterVec
	CounterSessionsStarted   prometheus.Counter
	CounterSessionsFinished  prometheus.Counter
	CounterSessionsCancelled prometheus.Counter
	CounterSetsRecorded      prometheus.Counter
	CounterSetsSkipped       prometheus.Counter
	CounterFinishFailures    prometheus.Counter
	CounterSetsImported      prometheus.Counter

	// gauges
	GaugeSessionRunning prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistSessionDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("liftlog", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftlog", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})

	gaugeSessionRunning := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "session_running",
		Help:      "1 while a workout session is live",
	})

	histReqDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
		Name:      "request_duration_seconds",
		Help:      "Total duration of requests in seconds",
	})
	histSessionDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{300, 900, 1800, 2700, 3600, 5400, 7200, 10800},
		Name:      "session_duration_seconds",
		Help:      "Duration of finished workout sessions in seconds",
	})

	return &Manager{
		CounterRequests:          counterRequests,
		CounterSessionsStarted:   counter("sessions_started", "The total number of started workout sessions"),
		CounterSessionsFinished:  counter("sessions_finished", "The total number of persisted workout sessions"),
		CounterSessionsCancelled: counter("sessions_cancelled", "The total number of discarded workout sessions"),
		CounterSetsRecorded:      counter("sets_recorded", "The total number of set records written by finished sessions"),
		CounterSetsSkipped:       counter("sets_skipped", "Completed sets dropped for lacking a valid exercise"),
		CounterFinishFailures:    counter("finish_failures", "The total number of failed session finishes"),
		CounterSetsImported:      counter("sets_imported", "The total number of set records written by imports"),
		GaugeSessionRunning:      gaugeSessionRunning,
		HistRequestDuration:      histReqDuration,
		HistSessionDuration:      histSessionDuration,
	}
}

// The methods below let a Manager record session engine events.

func (m *Manager) SessionStarted() {
	m.CounterSessionsStarted.Inc()
	m.GaugeSessionRunning.Set(1)
}

func (m *Manager) SessionFinished(duration time.Duration, sets int) {
	m.CounterSessionsFinished.Inc()
	m.CounterSetsRecorded.Add(float64(sets))
	m.HistSessionDuration.Observe(duration.Seconds())
	m.GaugeSessionRunning.Set(0)
}

func (m *Manager) SessionCancelled() {
	m.CounterSessionsCancelled.Inc()
	m.GaugeSessionRunning.Set(0)
}

func (m *Manager) SetsSkipped(n int) {
	m.CounterSetsSkipped.Add(float64(n))
}

func (m *Manager) FinishFailed() {
	m.CounterFinishFailures.Inc()
}
