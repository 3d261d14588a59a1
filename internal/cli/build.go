package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/pipeline"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags   buildFlags
		output  string
		formats string
	)

	cmd := &cobra.Command{
		Use:   "build [config.toml]",
		Short: "Build the tower and export it",
		Long: `Build assembles the tower described by a TOML config (the canonical tower when
none is given) and writes one file per export format.

Output files are named after --output with the format's extension. With a
single format, --output may carry its own extension; "-" writes to stdout.`,
		Example: `  slanttower build
  slanttower build tower.toml -f stl,json -o out/tower
  slanttower build -f svg -o - > faces.svg`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeConfigFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}
			fs := pipeline.ParseFormats(formats)
			if err := pipeline.ValidateFormats(fs); err != nil {
				return err
			}
			if output == "-" && len(fs) != 1 {
				return errs.New(errs.ErrCodeInvalidInput, "writing to stdout needs exactly one format, got %d", len(fs))
			}
			if slices.Contains(fs, pipeline.FormatSTL) && slices.Contains(fs, pipeline.FormatSTLASCII) && output != "-" {
				return errs.New(errs.ErrCodeInvalidInput, "stl and stl-ascii would both write %s", outputPath(output, cfg.Name, pipeline.FormatSTL, len(fs)))
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(ctx))
			spin := newSpinner(ctx, "Building "+cfg.Name)
			spin.Start()
			res, err := runner.Execute(ctx, flags.options(cfg, fs))
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done("Built " + cfg.Name)

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(res.Artifacts[fs[0]])
				return err
			}

			printSuccess("Built %s", StyleValue.Render(cfg.Name))
			printStats(res.Report.Volume, res.Report.BaseVolume, res.CacheInfo.Hit)
			for _, format := range fs {
				path := outputPath(output, cfg.Name, format, len(fs))
				if err := writeFile(path, res.Artifacts[format]); err != nil {
					return err
				}
				printFile(path)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path or base name (default: the tower name)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSTL, "comma-separated formats: stl, stl-ascii, json, svg")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// outputPath names the file for one format. A known extension on output is
// kept for single-format builds and replaced otherwise.
func outputPath(output, name, format string, n int) string {
	base := output
	if base == "" {
		base = name
	}
	ext := filepath.Ext(base)
	if knownExt(ext) {
		if n == 1 {
			return base
		}
		base = strings.TrimSuffix(base, ext)
	}
	return base + pipeline.Extension(format)
}

func knownExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".stl", ".json", ".svg":
		return true
	}
	return false
}

// writeFile writes data, creating parent directories.
func writeFile(path string, data []byte) error {
	if err := errs.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
