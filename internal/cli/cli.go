// Package cli implements the slanttower command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slanttower/pkg/buildinfo"
	"github.com/matzehuels/slanttower/pkg/cache"
	"github.com/matzehuels/slanttower/pkg/config"
	"github.com/matzehuels/slanttower/pkg/observability"
	"github.com/matzehuels/slanttower/pkg/observability/prom"
	"github.com/matzehuels/slanttower/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display and output files.
	appName = "slanttower"

	// envCache overrides the default cache location.
	envCache = "SLANTTOWER_CACHE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// cacheLocation is passed to cache.Open ("", "off", a directory or a
	// redis:// URL).
	cacheLocation string

	// metricsFile receives Prometheus metrics in text format after a
	// successful command.
	metricsFile string
	registry    *prometheus.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Slanttower generates parametric calibration towers",
		Long: `Slanttower builds a hollow rectangular tower and composes per-face features
onto it: raised or engraved text, filleted or chamfered holes, cutout grids,
bump grids and grooves. The finished part is exported as STL, a JSON build
report, or an SVG drawing of every face.`,
		Version:      buildinfo.Resolve().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.metricsFile != "" {
				c.registry = prometheus.NewRegistry()
				prom.NewRecorder(c.registry).Install()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.registry == nil {
				return nil
			}
			defer observability.Reset()
			if err := prom.WriteTextfile(c.registry, c.metricsFile); err != nil {
				return err
			}
			c.Logger.Debug("wrote metrics", "path", c.metricsFile)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.cacheLocation, "cache", os.Getenv(envCache),
		`cache location: a directory, a redis:// URL, or "off" (default: user cache dir, env `+envCache+`)`)
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "",
		"write Prometheus metrics to this file after the command")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.facesCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped by
// version so a shared cache never serves artifacts from another kernel.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Resolve().Version+":")
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

// openCache opens the configured cache. An unusable cache is reported and
// replaced by a NullCache so builds still run.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, c.cacheLocation)
	if err != nil {
		c.Logger.Warn("cache disabled", "location", c.cacheLocation, "error", err)
		return cache.NewNullCache(), nil
	}
	return cc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// buildFlags are the flags shared by commands that run the pipeline.
type buildFlags struct {
	resolution float64
	cellSize   float64
	parallel   bool
	refresh    bool
	noCache    bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.resolution, "resolution", pipeline.DefaultResolution, "kernel sampling cell in mm")
	cmd.Flags().Float64Var(&f.cellSize, "cell", pipeline.DefaultCellSize, "STL voxel edge in mm")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "run face builders concurrently")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild even when cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f *buildFlags) options(cfg *config.Config, formats []string) pipeline.Options {
	return pipeline.Options{
		Config:     cfg,
		Formats:    formats,
		Resolution: f.resolution,
		CellSize:   f.cellSize,
		Parallel:   f.parallel,
		Refresh:    f.refresh,
	}
}

// loadConfig reads the config named by args, or returns the canonical
// tower when none is given.
func loadConfig(args []string) (*config.Config, error) {
	if len(args) == 0 {
		return config.Default(), nil
	}
	return config.Load(args[0])
}
