package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abduss/photocat/internal/storeerr"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photocat",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photocat",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photocat",
		Name:      "adapter_operations_total",
		Help:      "Blob and metadata adapter calls, by outcome class.",
	}, []string{"adapter", "op", "outcome"})

	ingestedEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photocat",
		Name:      "ingested_entries_total",
		Help:      "Description entries processed by the ingestion pipeline.",
	}, []string{"outcome"})

	registerOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, operations, ingestedEntries)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveOperation counts one adapter call, labelled by its failure class.
func ObserveOperation(adapter, op string, err error) {
	operations.WithLabelValues(adapter, op, storeerr.Label(err)).Inc()
}

// ObserveIngested counts one processed ingestion entry.
func ObserveIngested(err error) {
	ingestedEntries.WithLabelValues(storeerr.Label(err)).Inc()
}
