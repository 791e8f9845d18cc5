// Package metrics defines the Prometheus metrics of the voice service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the call engine.
type Metrics struct {
	// Call metrics
	ActiveCalls   prometheus.Gauge
	CallsStarted  prometheus.Counter
	CallsEnded    prometheus.Counter
	CallDuration  prometheus.Histogram

	// Transcript metrics
	FinalTranscripts   prometheus.Counter
	InterimTranscripts prometheus.Counter
	DroppedTranscripts prometheus.Counter

	// Backend metrics
	BackendDuration prometheus.Histogram
	ToolExecutions  prometheus.Counter

	// Audio metrics
	SynthesizedBytes prometheus.Counter
	PacedFrames      prometheus.Counter

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ActiveCalls: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voxflow_active_calls",
			Help: "Current number of live call sessions",
		}),
		CallsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_calls_started_total",
			Help: "Total number of call sessions started",
		}),
		CallsEnded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_calls_ended_total",
			Help: "Total number of call sessions ended",
		}),
		CallDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voxflow_call_duration_seconds",
			Help:    "Duration of call sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		FinalTranscripts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_final_transcripts_total",
			Help: "Total number of finalized caller utterances",
		}),
		InterimTranscripts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_interim_transcripts_total",
			Help: "Total number of interim transcript events",
		}),
		DroppedTranscripts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_dropped_transcripts_total",
			Help: "Total number of transcripts dropped while a response was in flight",
		}),

		BackendDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voxflow_backend_duration_seconds",
			Help:    "Wall time of one response cycle against the reasoning backend",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		}),
		ToolExecutions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_tool_executions_total",
			Help: "Total number of backend-requested tool executions",
		}),

		SynthesizedBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_synthesized_bytes_total",
			Help: "Total bytes of synthesized speech audio",
		}),
		PacedFrames: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxflow_paced_frames_total",
			Help: "Total number of outbound media frames paced onto streams",
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voxflow_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),
	}
}
