package cli

import (
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/spf13/cobra"
)

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion scripts for ec2ssm.

Examples:
  # Bash
  ec2ssm completion bash > /etc/bash_completion.d/ec2ssm

  # Zsh
  ec2ssm completion zsh > "${fpath[1]}/_ec2ssm"

  # Fish
  ec2ssm completion fish > ~/.config/fish/completions/ec2ssm.fish`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletion(out)
			default:
				return errors.NewUsage(
					"Unknown shell: "+args[0],
					"Supported shells: bash, zsh, fish, powershell")
			}
		},
	}
}
