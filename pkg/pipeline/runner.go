package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slanttower/pkg/assembly"
	"github.com/matzehuels/slanttower/pkg/cache"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/feature"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/observability"
	"github.com/matzehuels/slanttower/pkg/sink"
)

// Cache key types reported to observability hooks.
const (
	keyTypeArtifact = "artifact"
	keyTypeReport   = "report"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → assemble → export pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hash, err := opts.Config.Hash()
	if err != nil {
		return nil, err
	}
	result := &Result{ConfigHash: hash}

	// Stage 1: Cache lookup
	if !opts.Refresh {
		if artifacts, report, ok := r.lookup(ctx, hash, opts); ok {
			result.Artifacts = artifacts
			result.Report = report
			result.CacheInfo.Hit = true
			r.Logger.Info("served from cache", "config", hash[:12], "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 2: Assemble
	part, plan, err := r.build(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Part = part
	result.Report = sink.NewReport(part, sink.WithReportName(opts.Config.Name), sink.WithReportResolution(opts.Resolution))
	result.Stats.BuildTime = part.Duration

	r.Logger.Info("assembled tower",
		"id", part.ID,
		"volume", part.Volume,
		"duration", part.Duration)

	// Stage 3: Export
	exportStart := time.Now()
	var marks map[frame.Face][]feature.Mark
	if needsMarks(opts.Formats) {
		k, err := opts.kernel()
		if err != nil {
			return nil, err
		}
		if marks, err = plan.Marks(k, part.Dims); err != nil {
			return nil, err
		}
	}
	artifacts, err := Export(ctx, part, marks, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Info("exported outputs",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	r.store(ctx, hash, result, opts)
	return result, nil
}

// Build assembles the tower without exporting or caching.
func (r *Runner) Build(ctx context.Context, opts Options) (*assembly.Part, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	part, _, err := r.build(ctx, opts)
	return part, err
}

// Marks returns the feature footprints of every face without building
// geometry.
func (r *Runner) Marks(opts Options) (map[frame.Face][]feature.Mark, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	plan, err := opts.Config.Plan()
	if err != nil {
		return nil, err
	}
	d, err := opts.Config.Dimensions()
	if err != nil {
		return nil, err
	}
	k, err := opts.kernel()
	if err != nil {
		return nil, err
	}
	return plan.Marks(k, d)
}

func (r *Runner) build(ctx context.Context, opts Options) (*assembly.Part, assembly.Plan, error) {
	d, err := opts.Config.Dimensions()
	if err != nil {
		return nil, nil, err
	}
	plan, err := opts.Config.Plan()
	if err != nil {
		return nil, nil, err
	}
	k, err := opts.kernel()
	if err != nil {
		return nil, nil, err
	}
	engine := assembly.New(k, plan,
		assembly.WithLogger(opts.Logger),
		assembly.WithParallelBuilders(opts.Parallel))
	part, err := engine.Build(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	return part, plan, nil
}

// lookup returns the report and every requested artifact from cache, or
// false when any of them is missing.
func (r *Runner) lookup(ctx context.Context, hash string, opts Options) (map[string][]byte, sink.Report, bool) {
	data, ok := r.get(ctx, r.Keyer.ReportKey(hash, opts.Resolution), keyTypeReport)
	if !ok {
		return nil, sink.Report{}, false
	}
	report, err := sink.ParseReport(data)
	if err != nil {
		r.Logger.Debug("discarding cached report", "error", err)
		return nil, sink.Report{}, false
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), keyTypeArtifact)
		if !ok {
			return nil, sink.Report{}, false
		}
		artifacts[format] = data
	}
	return artifacts, report, true
}

func (r *Runner) get(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes the report and artifacts. Cache failures are logged and
// never fail the run.
func (r *Runner) store(ctx context.Context, hash string, result *Result, opts Options) {
	if report, err := json.Marshal(result.Report); err == nil {
		r.set(ctx, r.Keyer.ReportKey(hash, opts.Resolution), keyTypeReport, report)
	}
	for format, data := range result.Artifacts {
		r.set(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), keyTypeArtifact, data)
	}
}

func (r *Runner) set(ctx context.Context, key, keyType string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", errs.UserMessage(err))
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
