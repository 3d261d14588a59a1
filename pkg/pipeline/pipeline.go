// Package pipeline provides the build pipeline for Slanttower.
//
// This package implements the complete config → assemble → export pipeline
// used by the CLI. By centralizing this logic, every entry point resolves
// defaults, cache keys and export formats the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: Validate the tower config and derive dimensions and the plan
//  2. Assemble: Run the face builders and fold their bundles into the part
//  3. Export: Render the part in the requested formats (STL, JSON, SVG)
//
// Exported artifacts and the build report are cached under the config's
// content hash. When every requested artifact is cached the part is not
// rebuilt at all.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  cfg,
//	    Formats: []string{"stl", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stl := result.Artifacts["stl"]
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slanttower/pkg/assembly"
	"github.com/matzehuels/slanttower/pkg/cache"
	"github.com/matzehuels/slanttower/pkg/config"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/kernel/implicit"
	"github.com/matzehuels/slanttower/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI
// =============================================================================

const (
	// DefaultResolution is the kernel sampling cell used to integrate volumes.
	DefaultResolution = implicit.DefaultResolution

	// DefaultCellSize is the voxel edge used to mesh STL exports.
	DefaultCellSize = sink.DefaultCellSize
)

// Format constants for output formats.
const (
	FormatSTL      = "stl"
	FormatSTLASCII = "stl-ascii"
	FormatJSON     = "json"
	FormatSVG      = "svg"
)

// DefaultFormats is what a build exports when no format is named.
var DefaultFormats = []string{FormatSTL}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSTL:      true,
	FormatSTLASCII: true,
	FormatJSON:     true,
	FormatSVG:      true,
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch format {
	case FormatSTL, FormatSTLASCII:
		return ".stl"
	case FormatJSON:
		return ".json"
	case FormatSVG:
		return ".svg"
	default:
		return "." + format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Config describes the tower. Nil means the canonical tower.
	Config *config.Config `json:"-"`

	// Formats lists the exports to produce.
	Formats []string `json:"formats,omitempty"`

	// Resolution is the kernel sampling cell in millimetres.
	Resolution float64 `json:"resolution,omitempty"`

	// CellSize is the STL voxel edge in millimetres.
	CellSize float64 `json:"cell_size,omitempty"`

	// Parallel runs face builders concurrently.
	Parallel bool `json:"parallel,omitempty"`

	// Refresh ignores cached artifacts (they are still rewritten).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Part is the assembled tower. It is nil when every artifact came from
	// the cache.
	Part *assembly.Part

	// Report summarises the build, rebuilt or cached.
	Report sink.Report

	// ConfigHash is the content hash of the config.
	ConfigHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks what the cache answered.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BuildTime  time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	// Hit is set when every artifact and the report came from cache.
	Hit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: stl, stl-ascii, json, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == nil {
		o.Config = config.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if !(o.Resolution > 0) || !(o.CellSize > 0) {
		return errs.New(errs.ErrCodeInvalidConfig, "resolution and cell size must be positive, got %g and %g", o.Resolution, o.CellSize)
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one export. Only the
// sampling setting that shapes the format is part of the key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSTL, FormatSTLASCII:
		opts.Resolution = o.CellSize
	case FormatJSON:
		opts.Resolution = o.Resolution
	}
	return opts
}

// kernel returns the geometry kernel for the options' sampling cell and
// the config's font.
func (o *Options) kernel() (*implicit.Kernel, error) {
	ttf, err := o.Config.FontData()
	if err != nil {
		return nil, err
	}
	return implicit.New(implicit.WithResolution(o.Resolution), implicit.WithFont(ttf)), nil
}
