package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "cjbootstrap"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	lastRun       *prom.GaugeVec
	cloneDuration *prom.HistogramVec
}

// Build steps run for minutes to hours; DefBuckets top out at 10s.
var durationBuckets = []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600, 7200}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pipeline stages",
		Buckets:   durationBuckets,
	}, []string{"stage"})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Total bootstrap run duration",
		Buckets:   durationBuckets,
	})
	pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "run_outcomes_total",
		Help:      "Run outcomes by final status",
	}, []string{"outcome"})
	pr.lastRun = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished, by outcome",
	}, []string{"outcome"})
	pr.cloneDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "clone_duration_seconds",
		Help:      "Duration of the toolchain clone",
		Buckets:   durationBuckets,
	}, []string{"backend", "result"})
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome, pr.lastRun, pr.cloneDuration)
	return pr
}

// Registry exposes the underlying registry, mainly for tests.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
	p.lastRun.WithLabelValues(string(outcome)).SetToCurrentTime()
}

func (p *PrometheusRecorder) ObserveCloneDuration(backend string, d time.Duration, success bool) {
	if p == nil || p.cloneDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.cloneDuration.WithLabelValues(backend, res).Observe(d.Seconds())
}

// WriteTextfile writes the gathered metrics to path in the text exposition
// format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
