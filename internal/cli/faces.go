package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slanttower/pkg/feature"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/pipeline"
	"github.com/matzehuels/slanttower/pkg/sink"
)

// facesCommand creates the faces command.
func (c *CLI) facesCommand() *cobra.Command {
	var (
		svgPath    string
		scale      float64
		resolution float64
	)

	cmd := &cobra.Command{
		Use:   "faces [config.toml]",
		Short: "List the features placed on each face",
		Long: `Faces prints every feature footprint in face-local (u, v) millimetres without
building geometry. With --svg it also draws the unfolded tower.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeConfigFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			marks, err := runner.Marks(pipeline.Options{Config: cfg, Resolution: resolution})
			if err != nil {
				return err
			}

			for _, face := range frame.Order {
				printTitle(face.String())
				if len(marks[face]) == 0 {
					printDetail("plain")
				}
				for _, m := range marks[face] {
					printMark(m)
				}
			}

			if svgPath == "" {
				return nil
			}
			d, err := cfg.Dimensions()
			if err != nil {
				return err
			}
			if err := writeFile(svgPath, sink.RenderSVG(d, marks, sink.WithSVGTitle(cfg.Name), sink.WithSVGScale(scale))); err != nil {
				return err
			}
			printFile(svgPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&svgPath, "svg", "", "also write an SVG drawing of the faces")
	cmd.Flags().Float64Var(&scale, "scale", 4, "SVG pixels per millimetre")
	cmd.Flags().Float64Var(&resolution, "resolution", pipeline.DefaultResolution, "kernel sampling cell in mm")

	return cmd
}

func printMark(m feature.Mark) {
	role := styleAdd.Render(string(m.Role))
	if m.Role == feature.Subtract {
		role = styleSubtract.Render(string(m.Role))
	}
	c, s := m.Bounds.Center(), m.Bounds.Size()
	line := fmt.Sprintf("  %-7s %s  %-6s at (%.1f, %.1f) size %.1f x %.1f", m.Feature, role, m.Shape, c.X, c.Y, s.X, s.Y)
	if m.Label != "" {
		line += "  " + StyleDim.Render(fmt.Sprintf("%q", m.Label))
	}
	fmt.Fprintln(stdout, line)
}
