package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics holds the prometheus instruments for the ingest service.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	ProductsCreated *prometheus.CounterVec
	SKUsAllocated   *prometheus.CounterVec
	RebuildRuns     prometheus.Counter
}

// New registers the instruments on reg. Tests pass a fresh registry so
// repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kollect",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kollect",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ProductsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kollect",
			Subsystem: "catalog",
			Name:      "products_created_total",
			Help:      "Products accepted through service-create, by category.",
		}, []string{"category"}),
		SKUsAllocated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kollect",
			Subsystem: "sku",
			Name:      "allocated_total",
			Help:      "SKUs allocated, by prefix.",
		}, []string{"prefix"}),
		RebuildRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kollect",
			Subsystem: "sku",
			Name:      "rebuild_runs_total",
			Help:      "Counter rebuild operations.",
		}),
	}
}

// GinMiddleware records request counts and latency per route template.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func provide() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

var Module = fx.Module("observability.metrics",
	fx.Provide(provide),
)
