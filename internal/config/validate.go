package config

import (
	"fmt"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
)

// Validate checks the invocation config. Every failure is a usage error.
func Validate(cfg Config) error {
	if cfg.Tag == nil && cfg.InstanceID == "" {
		return errors.NewUsage(
			"No instance selector given",
			"Pick a target with -n <name>, -t <key[=value]> or -x <instance-id>.")
	}

	if !cfg.Action.Valid() {
		return errors.NewUsage(
			fmt.Sprintf("Unknown action %q", cfg.Action.String()),
			"Use -a ssh for a shell or -a tunnel for port forwarding.")
	}

	if err := ValidatePort(cfg.LocalPort); err != nil {
		return err
	}

	if cfg.Region == "" {
		return errors.NewUsage("Region is empty", "Pass -r <region> or set region in the config file.")
	}

	if err := validateInventory(cfg.Inventory); err != nil {
		return errors.NewUsage(err.Error(), "Use --inventory api or --inventory cli.")
	}

	return nil
}

// ValidatePort rejects privileged and out-of-range local ports.
func ValidatePort(port int) error {
	if port <= MinLocalPort {
		return errors.NewUsage(
			fmt.Sprintf("Port %d is not allowed", port),
			fmt.Sprintf("Tunnel ports must be above %d, e.g. -o %d.", MinLocalPort, DefaultPort))
	}
	if port > 65535 {
		return errors.NewUsage(
			fmt.Sprintf("Port %d is out of range", port),
			"Ports go up to 65535.")
	}
	return nil
}

// ValidateSettings checks values loaded from the config file and environment.
func ValidateSettings(s Settings) error {
	if s.Port <= MinLocalPort || s.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("port %d in config is out of range", s.Port),
			fmt.Sprintf("Set port to a value between %d and 65535.", MinLocalPort+1))
	}
	if err := validateInventory(s.Inventory); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Set inventory to api or cli.")
	}
	if s.PluginPath == "" {
		return errors.New(errors.ErrConfig, "plugin_path is empty",
			"Remove plugin_path from the config to use "+DefaultPluginPath+".")
	}
	if s.AWSCLI == "" {
		return errors.New(errors.ErrConfig, "aws_cli is empty",
			"Remove aws_cli from the config to use the aws on your PATH.")
	}
	return nil
}

func validateInventory(name string) error {
	switch name {
	case InventoryAPI, InventoryCLI:
		return nil
	default:
		return fmt.Errorf("unknown inventory backend %q", name)
	}
}
