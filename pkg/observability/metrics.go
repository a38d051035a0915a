package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "architect"

// Metrics holds the Prometheus collectors fed by engine hooks.
type Metrics struct {
	registry *prometheus.Registry

	Generations      *prometheus.CounterVec
	Attempts         *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	ModelCalls       *prometheus.CounterVec
	ModelLatency     *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Finished generation runs by outcome.",
		}, []string{"outcome"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Generate/validate iterations by prompt mode.",
		}, []string{"mode"}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Validation findings by kind.",
		}, []string{"kind"}),
		ModelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model calls by model and result.",
		}, []string{"model", "result"}),
		ModelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of model calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"model"}),
	}

	m.registry.MustRegister(
		m.Generations,
		m.Attempts,
		m.ValidationErrors,
		m.ModelCalls,
		m.ModelLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttemptEnd: func(_ context.Context, e *domain.AttemptEvent) {
			m.Attempts.WithLabelValues(string(e.Mode)).Inc()
			for _, ve := range e.Errors {
				m.ValidationErrors.WithLabelValues(string(ve.Kind)).Inc()
			}
		},
		OnModelReturn: func(_ context.Context, e *domain.ModelEvent) {
			result := "ok"
			if e.IsError {
				result = "error"
			}
			m.ModelCalls.WithLabelValues(e.Model, result).Inc()
			m.ModelLatency.WithLabelValues(e.Model).Observe(e.Elapsed.Seconds())
		},
		OnTerminal: func(_ context.Context, e *domain.TerminalEvent) {
			m.Generations.WithLabelValues(string(e.Outcome)).Inc()
		},
	}
}
