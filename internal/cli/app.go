package cli

import (
	"context"
	"io"
	"os"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/doctor"
	"github.com/rileyhilliard/ec2ssm/internal/exec"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/rileyhilliard/ec2ssm/internal/ui"
)

// App holds the collaborators every command runs against. NewApp wires the
// real ones; tests replace individual fields.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Runner launches aws and the plugin installer.
	Runner exec.Runner

	// NewInventory opens the inventory backend named in cfg.
	NewInventory func(ctx context.Context, cfg config.Config, runner exec.Runner, log logger.Logger) (inventory.Inventory, error)

	// NewInstaller builds the session-manager-plugin installer.
	NewInstaller func(cfg config.Config, runner exec.Runner, log logger.Logger) doctor.Installer

	// IsTerminal reports whether Stdin is an interactive terminal.
	IsTerminal func() bool

	opts      Options
	log       logger.Logger
	helpShown bool
}

// NewApp returns an App on the process's own stdio.
func NewApp() *App {
	return &App{
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Runner:       exec.NewLocalRunner(),
		NewInventory: inventory.New,
		NewInstaller: newBundleInstaller,
		IsTerminal:   func() bool { return ui.IsTerminal(os.Stdin) },
		log:          logger.Default(),
	}
}

// newBundleInstaller asks before downloading when someone is at the terminal.
func newBundleInstaller(cfg config.Config, runner exec.Runner, log logger.Logger) doctor.Installer {
	inst := doctor.NewBundleInstaller(cfg.PluginPath, runner, log)
	inst.Confirm = func(prompt string) (bool, error) {
		return ui.Confirm(prompt, "", true)
	}
	return inst
}

// setupLogging builds the logger once flags are parsed.
func (a *App) setupLogging() {
	a.log = logger.New(a.Stderr, "", logger.LevelFromEnv(a.opts.Verbose))
	logger.SetDefault(a.log)

	if a.opts.NoColor || os.Getenv("NO_COLOR") != "" {
		ui.DisableColors()
	}
}

func (a *App) logger() logger.Logger {
	if a.log == nil {
		return logger.Default()
	}
	return a.log
}
