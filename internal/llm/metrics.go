package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	llmReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of calls to the completion endpoint.",
		},
		[]string{"op", "outcome"},
	)

	llmLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Wall time of completion calls, including the full stream.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		},
		[]string{"op"},
	)

	llmChunks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_stream_chunks_total",
			Help: "Text fragments relayed from streaming completions.",
		},
	)
)

func init() {
	prometheus.MustRegister(llmReqs, llmLat, llmChunks)
}

func observe(op string, start time.Time, err error) {
	llmReqs.WithLabelValues(op, outcome(err)).Inc()
	llmLat.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
