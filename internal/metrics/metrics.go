// Package metrics exposes Prometheus collectors for the build pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "markedit_builds_total",
		Help: "Book builds by target format and outcome.",
	}, []string{"format", "status"})

	buildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "markedit_build_duration_seconds",
		Help:    "Wall-clock duration of book builds.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~4m
	}, []string{"format"})
)

// ObserveBuild records one completed build.
func ObserveBuild(format string, success bool, elapsed time.Duration) {
	status := "failure"
	if success {
		status = "success"
	}
	buildsTotal.WithLabelValues(format, status).Inc()
	buildDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
