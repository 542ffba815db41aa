package doctor

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
)

// ConfigFileCheck verifies the defaults file, if any, loads cleanly.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty for the default location
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	_, path, err := config.LoadSettings(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config is invalid: " + describe(err),
			Suggestion: "Fix the file, or run 'ec2ssm config' to see the values in effect.",
		}
	}

	if path == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No config file; using built-in defaults",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

func (c *ConfigFileCheck) Fix(context.Context) error {
	return nil // Config mistakes need a human
}

// describe flattens a structured error to one line for a report.
func describe(err error) string {
	var structured *errors.Error
	if !goerrors.As(err, &structured) {
		return err.Error()
	}
	if structured.Cause != nil {
		return structured.Message + " (" + structured.Cause.Error() + ")"
	}
	return structured.Message
}
