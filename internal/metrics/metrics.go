// Package metrics exposes Prometheus metrics for syncs and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dfryer1193/flog/blog/application"
	"github.com/dfryer1193/flog/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ application.SyncObserver = (*Collector)(nil)

type Collector struct {
	syncRuns     *prometheus.CounterVec
	syncChanges  *prometheus.CounterVec
	syncDuration prometheus.Histogram
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flog_sync_runs_total",
			Help: "Sync attempts by result (ok or the error kind).",
		}, []string{"result"}),
		syncChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flog_sync_changes_total",
			Help: "Posts created, updated and deleted by sync.",
		}, []string{"kind"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flog_sync_duration_seconds",
			Help:    "Duration of sync runs that acquired the lock.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flog_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flog_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.syncRuns,
		c.syncChanges,
		c.syncDuration,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

// ObserveSync records the outcome of a sync. Partial counts of failed runs are included.
func (c *Collector) ObserveSync(result domain.SyncResult, err error, elapsed time.Duration) {
	label := "ok"
	if err != nil {
		label = domain.SyncErrorKind(err)
	}
	c.syncRuns.WithLabelValues(label).Inc()

	c.syncChanges.WithLabelValues("created").Add(float64(result.Created))
	c.syncChanges.WithLabelValues("updated").Add(float64(result.Updated))
	c.syncChanges.WithLabelValues("deleted").Add(float64(result.Deleted))

	if elapsed > 0 {
		c.syncDuration.Observe(elapsed.Seconds())
	}
}

// Middleware records request counts and latency, labelled by the matched route pattern.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
