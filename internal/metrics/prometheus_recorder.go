package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitebuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	pagesRendered   prom.Counter
	sectionsByKind  *prom.CounterVec
	sectionFailures *prom.CounterVec
	stylesheetsUsed prom.Gauge
}

// NewPrometheusRecorder constructs Prometheus metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Pages assembled and written",
		}),
		sectionsByKind: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sections_rendered_total",
			Help:      "Sections rendered by directive",
		}, []string{"directive"}),
		sectionFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "section_failures_total",
			Help:      "Sections whose renderer failed, by directive",
		}, []string{"directive"}),
		stylesheetsUsed: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stylesheets_used",
			Help:      "Distinct snippet stylesheets used by the last build",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.pagesRendered, pr.sectionsByKind, pr.sectionFailures, pr.stylesheetsUsed)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPageRendered() {
	if p == nil {
		return
	}
	p.pagesRendered.Inc()
}

func (p *PrometheusRecorder) IncSectionRendered(directive string) {
	if p == nil {
		return
	}
	p.sectionsByKind.WithLabelValues(directive).Inc()
}

func (p *PrometheusRecorder) IncSectionFailure(directive string) {
	if p == nil {
		return
	}
	p.sectionFailures.WithLabelValues(directive).Inc()
}

func (p *PrometheusRecorder) SetStylesheetsUsed(n int) {
	if p == nil {
		return
	}
	p.stylesheetsUsed.Set(float64(n))
}
