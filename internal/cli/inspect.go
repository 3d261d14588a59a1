package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slanttower/pkg/dims"
	"github.com/matzehuels/slanttower/pkg/pipeline"
	"github.com/matzehuels/slanttower/pkg/sink"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags   buildFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [config.toml]",
		Short: "Print the build report of a tower",
		Long: `Inspect builds the tower (or reads its report from cache) and prints its
volume, envelope and the solids each face contributed.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeConfigFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(ctx, flags.options(cfg, []string{pipeline.FormatJSON}))
			if err != nil {
				return err
			}

			if jsonOut {
				out := cmd.OutOrStdout()
				if _, err := out.Write(res.Artifacts[pipeline.FormatJSON]); err != nil {
					return err
				}
				_, err = fmt.Fprintln(out)
				return err
			}
			printReport(res.Report, res.ConfigHash, res.CacheInfo.Hit)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")

	return cmd
}

func printReport(r sink.Report, hash string, cached bool) {
	printTitle(r.Name)
	if d, err := dims.New(r.Dims); err == nil {
		printKeyValue("dims", d.String())
	}
	printKeyValue("volume", fmt.Sprintf("%.1f mm³", r.Volume))
	printKeyValue("base", fmt.Sprintf("%.1f mm³", r.BaseVolume))
	if r.BaseVolume > 0 {
		printKeyValue("net", fmt.Sprintf("%+.1f mm³ (%+.2f%%)", r.Volume-r.BaseVolume, 100*(r.Volume-r.BaseVolume)/r.BaseVolume))
	}
	printKeyValue("envelope", formatBox(r.Envelope))
	printKeyValue("bounds", formatBox(r.Bounds))
	printKeyValue("build", (time.Duration(r.DurationMS) * time.Millisecond).String())
	if len(hash) >= 12 {
		printKeyValue("config", hash[:12])
	}
	printStats(r.Volume, r.BaseVolume, cached)

	printTitle("faces")
	for _, f := range r.Faces {
		printKeyValue(f.Face.String(), roleCounts(f.Add, f.Subtract))
	}
}

func formatBox(b sink.Box) string {
	return fmt.Sprintf("[%g, %g, %g] to [%g, %g, %g]", b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
