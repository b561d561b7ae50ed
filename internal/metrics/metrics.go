// Package metrics exposes Prometheus instruments for provider calls, fallback
// decisions, suggestion lookups and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marginalia_provider_requests_total",
		Help: "Total number of book provider page requests by outcome",
	}, []string{"provider", "outcome"})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marginalia_provider_request_duration_seconds",
		Help:    "Duration of book provider page requests, including retries",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marginalia_searches_total",
		Help: "Total number of searches by final state (success, degraded, failed)",
	}, []string{"result"})

	LoadMoreTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marginalia_load_more_total",
		Help: "Total number of load-more attempts by outcome",
	}, []string{"outcome"})

	SuggestionRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marginalia_suggestion_requests_total",
		Help: "Total number of suggestion lookups by outcome (ok, error, stale)",
	}, []string{"outcome"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marginalia_http_requests_total",
		Help: "Total number of HTTP API requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marginalia_http_request_duration_seconds",
		Help:    "Duration of HTTP API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Outcome labels shared by the counters above.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
	OutcomeDropped = "dropped"

	ResultSuccess  = "success"
	ResultDegraded = "degraded"
	ResultFailed   = "failed"
)
