// Package metrics exposes Prometheus collectors for request dispatch and remote fetches.
// file: internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// UnknownTool labels calls naming a tool that is not registered.
const UnknownTool = "unknown"

// Metrics owns a private registry so that several servers (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ToolCallsTotal  *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	FetchErrors     *prometheus.CounterVec
}

// New creates and registers the collectors under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mcp_requests_total",
			Help:      "MCP requests and notifications handled, by method and outcome.",
		}, []string{"method", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mcp_request_duration_seconds",
			Help:      "Time spent handling MCP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mcp_tool_calls_total",
			Help:      "Tool invocations, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_fetch_duration_seconds",
			Help:      "Latency of outbound HTTP GETs, by endpoint and status code.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint", "status"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_fetch_errors_total",
			Help:      "Outbound HTTP GETs that failed at the transport level.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ToolCallsTotal,
		m.FetchDuration,
		m.FetchErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled MCP method. A nil receiver is a no-op.
func (m *Metrics) ObserveRequest(method string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, outcome(err)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveToolCall records one tool invocation. A nil receiver is a no-op.
func (m *Metrics) ObserveToolCall(tool string, err error) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, outcome(err)).Inc()
}

// ObserveFetch records one outbound GET. status is 0 on transport failure. A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(endpoint string, status int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.FetchErrors.WithLabelValues(endpoint).Inc()
		return
	}
	m.FetchDuration.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
