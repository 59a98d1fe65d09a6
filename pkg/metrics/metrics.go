package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// DefaultRegistry is the shared registry exposed by the API server.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		ExecutionDuration, ExecutionTotal,
		ExternalAttemptTotal, ValidationFailTotal,
	)
}

// ExecutionDuration observes tool execution elapsed time in seconds.
var ExecutionDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "engage_tool_execution_duration_seconds",
		Help:    "Tool execution elapsed time in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool_type"},
)

// ExecutionTotal counts finished executions by status.
var ExecutionTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "engage_tool_execution_total",
		Help: "Finished tool executions by status",
	},
	[]string{"status"}, // success | failed
)

// ExternalAttemptTotal counts outbound HTTP attempts, retries included.
var ExternalAttemptTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "engage_external_attempt_total",
		Help: "Outbound HTTP attempts made by the external executor",
	},
	[]string{"tool"},
)

// ValidationFailTotal counts payloads rejected before dispatch.
var ValidationFailTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "engage_validation_fail_total",
		Help: "Payloads rejected by schema validation",
	},
)

// WritePrometheus writes the registry in Prometheus text format to w.
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
