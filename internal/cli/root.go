package cli

import (
	goerrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/util"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree bound to a.
func (a *App) NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ec2ssm -n <name> | -t <key[=value]> | -x <instance-id> [flags]",
		Short: "Open an SSM shell or SSH tunnel to an EC2 instance found by tag",
		Long: `Find a running EC2 instance by tag and open an AWS Systems Manager session to it.

With -a ssh (the default) you get an interactive shell. With -a tunnel, local
port -o (default 9999) is forwarded to port 22 on the instance, so you can
point ssh, scp or rsync at localhost.

Examples:
  ec2ssm -n web-1
  ec2ssm -t env=staging -s
  ec2ssm -a tunnel -n bastion -o 2222
  ec2ssm -x i-0123456789abcdef0 -r eu-west-1 -p prod`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return a.connect(cmd.Context(), cfg)
		},
	}

	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	root.SetVersionTemplate("ec2ssm {{.Version}}\n")

	addGlobalFlags(root.PersistentFlags(), &a.opts)
	addConnectFlags(root.Flags(), &a.opts)

	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.WrapWithCode(err, errors.ErrUsage, "Invalid arguments", "")
	})

	// -h prints usage and exits 1; see Run.
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		a.helpShown = true
		defaultHelp(c, args)
	})

	root.AddCommand(
		a.newDoctorCmd(),
		a.newListCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(root),
	)

	return root
}

// loadConfig reads settings from the config file and environment and
// layers cmd's explicit flags on top.
func (a *App) loadConfig(cmd *cobra.Command) (config.Config, error) {
	settings, path, err := config.LoadSettings(a.opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		a.logger().Debug("loaded settings from %s", path)
	}

	return BuildConfig(a.opts, settings, cmd.Flags().Changed, a.logger())
}

// Run executes the command line and returns the process exit status.
func (a *App) Run(args []string) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root := a.NewRootCmd()
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	if err == nil {
		if a.helpShown {
			return 1
		}
		return 0
	}

	return a.report(cmd, err)
}

// report prints err to stderr and returns the status to exit with.
func (a *App) report(cmd *cobra.Command, err error) int {
	var structured *errors.Error
	if !goerrors.As(err, &structured) {
		// The child already talked to the operator; just pass its status on.
		if code, ok := errors.GetExitCode(err); ok {
			return code
		}
		err = cobraError(cmd, err)
	}

	fmt.Fprint(a.Stderr, err.Error())

	if errors.IsCode(err, errors.ErrUsage) || errors.IsCode(err, errors.ErrDispatch) {
		fmt.Fprintln(a.Stderr)
		fmt.Fprint(a.Stderr, cmd.UsageString())
	}

	return errors.ExitCodeFor(err)
}

// cobraError converts cobra's own plain errors (unknown command, wrong
// argument count) to usage errors, suggesting a subcommand where one is close.
func cobraError(cmd *cobra.Command, err error) error {
	if !isUnknownCommandError(err) {
		return errors.WrapWithCode(err, errors.ErrUsage, "Invalid arguments", "")
	}

	suggestion := "Run 'ec2ssm --help' to see available commands."
	if name := extractUnknownCommand(err); name != "" {
		var names []string
		for _, c := range cmd.Root().Commands() {
			names = append(names, c.Name())
		}
		if similar := util.SuggestSimilar(name, names, 2); len(similar) > 0 {
			suggestion = "Did you mean: " + strings.Join(similar, ", ") + "?"
		}
	}

	return errors.NewUsage(capitalizeFirst(err.Error()), suggestion)
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls "foo" out of `unknown command "foo" for "ec2ssm"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-32) + s[1:]
	}
	return s
}

// Execute runs ec2ssm with os.Args and exits.
func Execute() {
	os.Exit(NewApp().Run(os.Args[1:]))
}
