package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slanttower/pkg/config"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/frame"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write and check tower configs",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configCheckCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the canonical tower config as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Default().Encode()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if _, err := os.Stat(output); err == nil && !force {
				return errs.New(errs.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", output)
			}
			if err := writeFile(output, data); err != nil {
				return err
			}
			printSuccess("Wrote config")
			printFile(output)
			printNextStep("Build it", "slanttower build "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// configCheckCommand creates the "config check" subcommand.
func (c *CLI) configCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "check <config.toml>",
		Short:             "Validate a tower config",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeConfigFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			d, err := cfg.Dimensions()
			if err != nil {
				return err
			}
			hash, err := cfg.Hash()
			if err != nil {
				return err
			}

			printSuccess("%s is valid", args[0])
			printKeyValue("name", cfg.Name)
			printKeyValue("dims", d.String())
			printKeyValue("hash", hash[:12])
			for _, face := range frame.Order {
				fc, _ := cfg.Face(face)
				if fc.Empty() {
					printKeyValue(face.String(), StyleDim.Render("plain"))
					continue
				}
				printKeyValue(face.String(), strings.Join(fc.Kinds(), ", "))
			}
			if cfg.MinicubeHeight > 0 {
				printWarning("minicube_height is informational and does not change the part")
			}
			return nil
		},
	}
}
