// Package prom records build, export and cache hook events as Prometheus
// metrics.
//
// The CLI is short-lived, so metrics are not scraped. Instead the registry
// is written in the text exposition format once the command finishes (see
// [WriteTextfile]), ready for node_exporter's textfile collector.
package prom

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/slanttower/pkg/observability"
)

const namespace = "slanttower"

// Recorder implements the observability hook interfaces.
type Recorder struct {
	once sync.Once

	builds          *prom.CounterVec
	buildDuration   prom.Histogram
	partVolume      prom.Gauge
	bundleDuration  *prom.HistogramVec
	bundleSolids    *prom.CounterVec
	booleanDuration *prom.HistogramVec
	booleanFailures *prom.CounterVec
	exports         *prom.CounterVec
	exportDuration  *prom.HistogramVec
	exportBytes     *prom.GaugeVec
	cacheRequests   *prom.CounterVec
	cacheBytes      *prom.CounterVec
}

// NewRecorder constructs the metrics and registers them with reg. A nil reg
// gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{}
	r.once.Do(func() {
		r.builds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Tower builds by outcome",
		}, []string{"outcome"})
		r.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of a whole tower build",
			Buckets:   prom.ExponentialBuckets(0.05, 2, 10),
		})
		r.partVolume = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "part_volume_cubic_millimetres",
			Help:      "Volume of the last assembled part",
		})
		r.bundleDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "bundle_duration_seconds",
			Help:      "Time spent running a face builder",
			Buckets:   prom.DefBuckets,
		}, []string{"face"})
		r.bundleSolids = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "bundle_solids_total",
			Help:      "Solids contributed by face builders",
		}, []string{"face", "role"})
		r.booleanDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "boolean_duration_seconds",
			Help:      "Time spent folding one face's solids into the part",
			Buckets:   prom.DefBuckets,
		}, []string{"face", "role"})
		r.booleanFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "boolean_failures_total",
			Help:      "Boolean steps that failed, by face and role",
		}, []string{"face", "role"})
		r.exports = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by format and outcome",
		}, []string{"format", "outcome"})
		r.exportDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent rendering an export",
			Buckets:   prom.DefBuckets,
		}, []string{"format"})
		r.exportBytes = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "export_size_bytes",
			Help:      "Size of the last export per format",
		}, []string{"format"})
		r.cacheRequests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"type", "result"})
		r.cacheBytes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"type"})
		reg.MustRegister(r.builds, r.buildDuration, r.partVolume, r.bundleDuration, r.bundleSolids,
			r.booleanDuration, r.booleanFailures, r.exports, r.exportDuration, r.exportBytes,
			r.cacheRequests, r.cacheBytes)
	})
	return r
}

// Install registers r for every hook category.
func (r *Recorder) Install() {
	observability.SetBuildHooks(r)
	observability.SetExportHooks(r)
	observability.SetCacheHooks(r)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (r *Recorder) OnBuildStart(context.Context, string) {}

func (r *Recorder) OnBundle(_ context.Context, face string, adds, subtracts int, d time.Duration, err error) {
	r.bundleDuration.WithLabelValues(face).Observe(d.Seconds())
	if err != nil {
		return
	}
	r.bundleSolids.WithLabelValues(face, "add").Add(float64(adds))
	r.bundleSolids.WithLabelValues(face, "subtract").Add(float64(subtracts))
}

func (r *Recorder) OnBoolean(_ context.Context, face, role string, d time.Duration, err error) {
	r.booleanDuration.WithLabelValues(face, role).Observe(d.Seconds())
	if err != nil {
		r.booleanFailures.WithLabelValues(face, role).Inc()
	}
}

func (r *Recorder) OnBuildComplete(_ context.Context, _ string, volume float64, d time.Duration, err error) {
	r.builds.WithLabelValues(outcome(err)).Inc()
	r.buildDuration.Observe(d.Seconds())
	if err == nil {
		r.partVolume.Set(volume)
	}
}

func (r *Recorder) OnExportStart(context.Context, string) {}

func (r *Recorder) OnExportComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	r.exports.WithLabelValues(format, outcome(err)).Inc()
	r.exportDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		r.exportBytes.WithLabelValues(format).Set(float64(size))
	}
}

func (r *Recorder) OnCacheHit(_ context.Context, keyType string) {
	r.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (r *Recorder) OnCacheMiss(_ context.Context, keyType string) {
	r.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (r *Recorder) OnCacheSet(_ context.Context, keyType string, size int) {
	r.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// WriteTextfile writes everything reg gathers to path in the Prometheus text
// format. The file is replaced atomically.
func WriteTextfile(reg prom.Gatherer, path string) error {
	return prom.WriteToTextfile(path, reg)
}

var (
	_ observability.BuildHooks  = (*Recorder)(nil)
	_ observability.ExportHooks = (*Recorder)(nil)
	_ observability.CacheHooks  = (*Recorder)(nil)
)
