package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/ec2ssm/internal/exec"
)

// CLIVersionCheck verifies the aws CLI is installed and new enough to drive
// Session Manager.
type CLIVersionCheck struct {
	Runner     exec.Runner
	AWSCLI     string
	MinVersion string
}

func (c *CLIVersionCheck) Name() string     { return "aws_cli_version" }
func (c *CLIVersionCheck) Category() string { return "AWS" }

func (c *CLIVersionCheck) Run(ctx context.Context) CheckResult {
	res, err := c.Runner.Capture(ctx, c.AWSCLI, "--version")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s not found", c.AWSCLI),
			Suggestion: "Install the AWS CLI: https://docs.aws.amazon.com/cli/latest/userguide/getting-started-install.html",
		}
	}
	if res.ExitCode != 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s --version exited with code %d", c.AWSCLI, res.ExitCode),
			Suggestion: strings.TrimSpace(string(res.Stderr)),
		}
	}

	// aws v1 printed its version on stderr.
	version, err := ParseCLIVersion(string(res.Stdout) + "\n" + string(res.Stderr))
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Couldn't tell which aws CLI version is installed: %v", err),
			Suggestion: "Reinstall the AWS CLI.",
		}
	}

	if !VersionAtLeast(version, c.MinVersion) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("aws CLI %s is older than %s", version, c.MinVersion),
			Suggestion: "Upgrade the AWS CLI; Session Manager support arrived in " + c.MinVersion + ".",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("aws CLI %s", version),
	}
}

func (c *CLIVersionCheck) Fix(context.Context) error {
	return nil // Upgrading the CLI is left to the operator
}
