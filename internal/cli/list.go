package cli

import (
	"fmt"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/spf13/cobra"
)

func (a *App) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list -n <name> | -t <key[=value]>",
		Short: "Print the instances a selector matches",
		Long: `Print the running instances matching a tag, one per line as
"<instance-id><TAB><name>", in the order the API returned them. Nothing is
connected. The first line is the instance ec2ssm would pick without -s.

Examples:
  ec2ssm list -n web-1
  ec2ssm list -t env=staging -r eu-west-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Tag == nil {
				return errors.NewUsage("No tag selector given", "Pass -n <name> or -t <key[=value]>.")
			}

			instances, err := a.resolve(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if len(instances) == 0 {
				fmt.Fprintf(a.Stdout, "no instances found for %s in %s\n", cfg.Selector(), cfg.Region)
				return nil
			}
			for _, inst := range instances {
				fmt.Fprintf(a.Stdout, "%s\t%s\n", inst.ID, inst.Name)
			}
			return nil
		},
	}

	addSelectorFlags(cmd.Flags(), &a.opts)
	return cmd
}
