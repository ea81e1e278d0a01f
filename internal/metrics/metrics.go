// Package metrics Prometheus 指标，/metrics 以文本格式暴露
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copytrade_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copytrade_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	fallbackTier = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copytrade_fallback_tier_total",
			Help: "Read responses by endpoint and the fallback tier that served them",
		},
		[]string{"endpoint", "source"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, fallbackTier)
}

// ObserveFallback 记录读端点本次命中的降级层级
func ObserveFallback(endpoint, source string) {
	fallbackTier.WithLabelValues(endpoint, source).Inc()
}

// GinMiddleware 请求计数与耗时
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
