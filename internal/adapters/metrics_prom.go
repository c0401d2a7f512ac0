package adapters

import (
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/prometheus/client_golang/prometheus"

	"livebundle/internal/ports"
)

const MetricsNamespace = "livebundle"

// NoopFlowMetrics implements ports.FlowMetricsPort without emitting anything.
type NoopFlowMetrics struct{}

func (NoopFlowMetrics) IncFlowStarted(string)                {}
func (NoopFlowMetrics) IncFlowCompleted(string, string)      {}
func (NoopFlowMetrics) ObservePhaseDuration(string, float64) {}

// PromFlowMetrics records resolution flows in Prometheus collectors.
type PromFlowMetrics struct {
	registry  *prometheus.Registry
	started   *prometheus.CounterVec
	completed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	once      sync.Once
}

// NewPromFlowMetrics registers the flow collectors on their own registry so
// a CLI run can export exactly what it recorded.
func NewPromFlowMetrics(namespace string) *PromFlowMetrics {
	if namespace == "" {
		namespace = MetricsNamespace
	}
	p := &PromFlowMetrics{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_started_total",
			Help:      "Resolution flows started by kind",
		}, []string{"kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_completed_total",
			Help:      "Resolution flows completed by kind and terminal state",
		}, []string{"kind", "state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of resolution phases",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"phase"}),
	}
	p.register()
	return p
}

func (p *PromFlowMetrics) register() {
	p.once.Do(func() {
		p.registry.MustRegister(p.started, p.completed, p.duration)
	})
}

func (p *PromFlowMetrics) IncFlowStarted(kind string) {
	p.started.WithLabelValues(kind).Inc()
}

func (p *PromFlowMetrics) IncFlowCompleted(kind string, state string) {
	p.completed.WithLabelValues(kind, state).Inc()
}

func (p *PromFlowMetrics) ObservePhaseDuration(phase string, seconds float64) {
	p.duration.WithLabelValues(phase).Observe(seconds)
}

func (p *PromFlowMetrics) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteTextfile writes the recorded metrics in the node exporter textfile
// format.
func (p *PromFlowMetrics) WriteTextfile(path string) error {
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("metrics textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write metrics textfile").
			WithCause(err)
	}
	return nil
}

var (
	_ ports.FlowMetricsPort = NoopFlowMetrics{}
	_ ports.FlowMetricsPort = (*PromFlowMetrics)(nil)
)
