package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
)

// PluginCheck verifies the session-manager-plugin binary is present. A file
// at Path is the only thing looked at; PATH is not searched.
type PluginCheck struct {
	Path      string
	Installer Installer
}

func (c *PluginCheck) Name() string     { return "session_manager_plugin" }
func (c *PluginCheck) Category() string { return "SESSION" }

func (c *PluginCheck) Run(context.Context) CheckResult {
	info, err := os.Stat(c.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("session-manager-plugin not found at %s", c.Path),
			Suggestion: "Run: ec2ssm doctor --fix",
			Fixable:    c.Installer != nil,
		}
	}

	if info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is a directory, not the plugin binary", c.Path),
			Suggestion: "Remove it or set plugin_path in the config.",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("session-manager-plugin at %s", c.Path),
	}
}

func (c *PluginCheck) Fix(ctx context.Context) error {
	if c.Installer == nil {
		return errors.NewEnvironment("No installer configured for session-manager-plugin", "")
	}
	return c.Installer.Install(ctx)
}
