package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palette_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "palette_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palette_generations_total",
			Help: "Total number of image generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	AdClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palette_ad_claims_total",
			Help: "Total number of ad watch claims by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	CreditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palette_credits_total",
			Help: "Total credits granted or spent.",
		},
		[]string{"direction"},
	)

	SpeechSynthesesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "palette_speech_syntheses_total",
			Help: "Total number of speech synthesis requests.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationsTotal,
		AdClaimsTotal,
		CreditsTotal,
		SpeechSynthesesTotal,
	)
}
