package sections

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce         sync.Once
	loadsTotal          *prometheus.CounterVec
	loadDurationSeconds *prometheus.HistogramVec
	renderFallbacks     *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexacms",
			Subsystem: "sections",
			Name:      "implementation_loads_total",
			Help:      "Section implementation loads by variant, mode and outcome",
		}, []string{"variant", "mode", "status"})

		loadDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nexacms",
			Subsystem: "sections",
			Name:      "implementation_load_duration_seconds",
			Help:      "Duration of section implementation loads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"})

		renderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexacms",
			Subsystem: "sections",
			Name:      "render_fallbacks_total",
			Help:      "Section renders that degraded to a placeholder",
		}, []string{"mode", "reason"})
	})
}

func recordLoad(variant Variant, mode Mode, started time.Time, err error) {
	initMetrics()
	status := "success"
	if err != nil {
		status = "failure"
	}
	loadsTotal.WithLabelValues(string(variant), string(mode), status).Inc()
	loadDurationSeconds.WithLabelValues(string(mode)).Observe(time.Since(started).Seconds())
}

func recordFallback(mode Mode, reason FallbackReason) {
	initMetrics()
	renderFallbacks.WithLabelValues(string(mode), string(reason)).Inc()
}
