package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	buildsStarted prom.Counter
	buildOutcome  *prom.CounterVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	stageDuration *prom.HistogramVec
	pagesRendered prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		buildsStarted: prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "builds_started_total",
			Help:      "Number of builds started",
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "outcome"}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "pages_rendered_total",
			Help:      "Number of pages rendered across all builds",
		}),
	}
	reg.MustRegister(
		pr.buildsStarted,
		pr.buildOutcome,
		pr.buildDuration,
		pr.stageResults,
		pr.stageDuration,
		pr.pagesRendered,
	)
	return pr
}

func (p *PrometheusRecorder) BuildStarted() {
	p.buildsStarted.Inc()
}

func (p *PrometheusRecorder) BuildCompleted(outcome string, seconds float64) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
	p.buildDuration.Observe(seconds)
}

func (p *PrometheusRecorder) StageCompleted(stage, outcome string, seconds float64) {
	p.stageResults.WithLabelValues(stage, outcome).Inc()
	p.stageDuration.WithLabelValues(stage).Observe(seconds)
}

func (p *PrometheusRecorder) PagesRendered(n int) {
	p.pagesRendered.Add(float64(n))
}

// Handler exposes the underlying registry for the preview server's /metrics
// endpoint.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
