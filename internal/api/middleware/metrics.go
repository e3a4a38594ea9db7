// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP instruments, labelled by method, status code and chi route pattern.
var (
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fieldpulse_http_requests_in_flight",
		Help: "Requests currently being served.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldpulse_http_request_duration_seconds",
		Help:    "Request latency by route.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "code", "route"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldpulse_http_response_size_bytes",
		Help:    "Response body size by route.",
		Buckets: prometheus.ExponentialBuckets(128, 4, 7),
	}, []string{"method", "code", "route"})
)

// Metrics chains the promhttp instrumenters. The route label is resolved from
// the chi route context after the handler returns, so it must run inside the
// router.
func Metrics() func(http.Handler) http.Handler {
	route := promhttp.WithLabelFromCtx("route", routeFromContext)
	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerInFlight(httpInFlight,
			promhttp.InstrumentHandlerDuration(httpDuration,
				promhttp.InstrumentHandlerResponseSize(httpResponseSize, next, route),
				route))
	}
}
