// Package metrics holds the prometheus collectors for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stagedoor_http_requests_total", Help: "HTTP requests served"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stagedoor_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
	SongEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stagedoor_dj_song_events_total", Help: "DJ queue mutations"},
		[]string{"event"},
	)
	BandRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stagedoor_band_refreshes_total", Help: "Band refresh attempts"},
		[]string{"result"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "stagedoor_rate_limited_total", Help: "Requests rejected by the rate limiter"},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests, HTTPDuration, SongEvents, BandRefreshes, RateLimited)
}
