package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitebuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	postsRendered   prom.Counter
	docsRejected    prom.Counter
	missingAssets   prom.Counter
	rebuildTriggers *prom.CounterVec
	rebuildDropped  prom.Counter
	lastBuild       prom.Gauge
}

// NewPrometheusRecorder constructs and registers the build metrics on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.postsRendered = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "posts_rendered_total",
		Help:      "Posts written to the output directory",
	})
	pr.docsRejected = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "documents_rejected_total",
		Help:      "Source documents skipped for a missing or invalid title",
	})
	pr.missingAssets = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "missing_assets_total",
		Help:      "Relative asset references whose source file did not exist",
	})
	pr.rebuildTriggers = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "rebuild_triggers_total",
		Help:      "Rebuilds started by the watch loop, by trigger source",
	}, []string{"source"})
	pr.rebuildDropped = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "rebuild_dropped_total",
		Help:      "Debounced rebuilds dropped because a build was already running",
	})
	pr.lastBuild = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_build_timestamp_seconds",
		Help:      "Unix time of the last finished build",
	})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.postsRendered, pr.docsRejected, pr.missingAssets, pr.rebuildTriggers, pr.rebuildDropped, pr.lastBuild)
	return pr
}

// Registry exposes the registry the recorder writes to.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

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
	p.lastBuild.SetToCurrentTime()
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

func (p *PrometheusRecorder) AddPostsRendered(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.postsRendered.Add(float64(n))
}

func (p *PrometheusRecorder) AddDocumentsRejected(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.docsRejected.Add(float64(n))
}

func (p *PrometheusRecorder) IncMissingAssets() {
	if p == nil {
		return
	}
	p.missingAssets.Inc()
}

func (p *PrometheusRecorder) IncRebuildTrigger(source string) {
	if p == nil {
		return
	}
	p.rebuildTriggers.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) IncRebuildDropped() {
	if p == nil {
		return
	}
	p.rebuildDropped.Inc()
}
