package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "near",
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "Duration of individual JSON-RPC round trips.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "near",
		Subsystem: "rpc",
		Name:      "request_errors_total",
		Help:      "Failed JSON-RPC round trips by failure layer.",
	}, []string{"method", "layer"})

	requestRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "near",
		Subsystem: "rpc",
		Name:      "request_retries_total",
		Help:      "Retried JSON-RPC calls.",
	}, []string{"method"})

	requestsExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "near",
		Subsystem: "rpc",
		Name:      "requests_exhausted_total",
		Help:      "JSON-RPC calls that ran out of retry budget.",
	}, []string{"method"})
)
