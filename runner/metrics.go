package runner

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsHandler counts events on a private prometheus registry. The
// registry is written out with WriteTextfile for the node exporter textfile
// collector.
type MetricsHandler struct {
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	streamErrors prometheus.Counter
	testDuration prometheus.Histogram
	suiteTests   *prometheus.GaugeVec
}

// NewMetricsHandler creates a handler with its own registry.
func NewMetricsHandler() *MetricsHandler {
	m := &MetricsHandler{registry: prometheus.NewRegistry()}

	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compatinfo_test_events_total",
		Help: "Test events by action",
	}, []string{"action"})
	m.streamErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compatinfo_test_stream_errors_total",
		Help: "Input lines that were not test events",
	})

	buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	m.testDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "compatinfo_test_duration_seconds",
		Help:    "Duration of individual tests",
		Buckets: buckets,
	})
	m.suiteTests = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "compatinfo_suite_tests",
		Help: "Planned tests per suite",
	}, []string{"suite"})

	m.registry.MustRegister(m.events, m.streamErrors, m.testDuration, m.suiteTests)

	// Pre-create every action so absent outcomes are exported as zero.
	for _, a := range Actions() {
		m.events.WithLabelValues(string(a))
	}

	return m
}

// Event counts the event.
func (m *MetricsHandler) Event(_ context.Context, event Event, _ *Result) error {
	m.events.WithLabelValues(string(event.Action)).Inc()

	switch event.Action {
	case ActionSuiteStart:
		m.suiteTests.WithLabelValues(event.Suite).Set(float64(event.Tests))
	case ActionEnd:
		m.testDuration.Observe(event.Elapsed.Seconds())
	case ActionSuiteEnd, ActionRun, ActionFail, ActionError, ActionIncomplete, ActionRisky, ActionSkip:
	}

	return nil
}

// Err counts a stray line.
func (m *MetricsHandler) Err(_ string) error {
	m.streamErrors.Inc()

	return nil
}

// Registry returns the handler's registry.
func (m *MetricsHandler) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *MetricsHandler) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
