package cli

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/doctor"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
	"github.com/rileyhilliard/ec2ssm/internal/session"
	"github.com/rileyhilliard/ec2ssm/internal/ui"
)

// connect runs the pipeline: preflight, resolve, select, dispatch. Each
// stage either hands a value to the next or ends the run.
func (a *App) connect(ctx context.Context, cfg config.Config) error {
	log := a.logger()

	if err := doctor.Preflight(ctx, a.preflightChecks(cfg), cfg.AutoInstall, log); err != nil {
		return err
	}

	target := cfg.InstanceID
	if cfg.UsesExplicitInstance() {
		if cfg.Tag != nil {
			log.Debug("instance %s given, not looking up tag %s", cfg.InstanceID, cfg.Tag)
		}
	} else {
		instances, err := a.resolve(ctx, cfg)
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			fmt.Fprintf(a.Stdout, "no instances found for %s in %s\n", cfg.Selector(), cfg.Region)
			return nil
		}

		selector := &ui.Selector{
			Mode:       ui.ModeFor(cfg.Interactive, cfg.Picker),
			Title:      fmt.Sprintf("%s in %s", cfg.Selector(), cfg.Region),
			In:         a.Stdin,
			Out:        a.Stdout,
			Log:        log,
			IsTerminal: a.IsTerminal,
		}
		chosen, err := selector.Select(instances)
		if err != nil {
			return err
		}
		log.Debug("selected %s", chosen.Label())
		target = chosen.ID
	}

	req := session.NewRequest(cfg.Action, target, cfg.Region, cfg.Profile, cfg.LocalPort)
	return session.NewDispatcher(a.Runner, cfg.AWSCLI, log).Dispatch(ctx, req)
}

// preflightChecks are the checks that must pass before a session starts.
func (a *App) preflightChecks(cfg config.Config) []doctor.Check {
	return []doctor.Check{
		&doctor.PluginCheck{
			Path:      cfg.PluginPath,
			Installer: a.NewInstaller(cfg, a.Runner, a.logger()),
		},
		&doctor.CLIVersionCheck{
			Runner:     a.Runner,
			AWSCLI:     cfg.AWSCLI,
			MinVersion: cfg.MinCLIVersion,
		},
	}
}

// resolve lists the running instances matching cfg.Tag, with a spinner on
// stderr when it's a terminal.
func (a *App) resolve(ctx context.Context, cfg config.Config) ([]inventory.Instance, error) {
	inv, err := a.NewInventory(ctx, cfg, a.Runner, a.logger())
	if err != nil {
		return nil, err
	}

	var spinner *ui.Spinner
	if ui.IsTerminal(a.Stderr) {
		spinner = ui.NewSpinner(a.Stderr, "Looking up "+cfg.Selector()+" in "+cfg.Region)
		spinner.Start()
	}

	instances, err := inventory.NewResolver(inv, a.logger()).Resolve(ctx, *cfg.Tag)

	if spinner != nil {
		if err != nil {
			spinner.Fail()
		} else {
			spinner.Success()
		}
	}
	return instances, err
}
