package rest

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InstrumentTransport wraps next with request counters, latency histograms
// and an in-flight gauge registered on reg.
func InstrumentTransport(next http.RoundTripper, reg prometheus.Registerer) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	factory := promauto.With(reg)

	inFlight := factory.NewGauge(prometheus.GaugeOpts{
		Name: "feedctl_api_requests_in_flight",
		Help: "Number of API requests currently in flight",
	})
	requests := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedctl_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"code", "method"},
	)
	duration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedctl_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	return promhttp.InstrumentRoundTripperInFlight(inFlight,
		promhttp.InstrumentRoundTripperCounter(requests,
			promhttp.InstrumentRoundTripperDuration(duration, next),
		),
	)
}
