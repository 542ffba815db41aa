package cli

import (
	"fmt"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *App) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective defaults as YAML",
		Long: `Print the defaults ec2ssm would use, after layering the config file,
EC2SSM_* environment variables and any -r/-p/--inventory flags.

The output is valid config file content:
  ec2ssm config > ~/.config/ec2ssm/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, path, err := config.LoadSettings(a.opts.ConfigPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("region") {
				settings.Region = a.opts.Region
			}
			if flags.Changed("profile") {
				settings.Profile = a.opts.Profile
			}
			if flags.Changed("inventory") {
				settings.Inventory = a.opts.Inventory
			}

			out, err := yaml.Marshal(settings)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render config", "")
			}

			source := "built-in defaults"
			if path != "" {
				source = path
			}
			fmt.Fprintf(a.Stdout, "# source: %s\n%s", source, out)
			return nil
		},
	}
}
