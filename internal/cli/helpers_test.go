package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/doctor"
	"github.com/rileyhilliard/ec2ssm/internal/exec"
	extesting "github.com/rileyhilliard/ec2ssm/internal/exec/testing"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/stretchr/testify/require"
)

type stubInventory struct {
	instances []inventory.Instance
	err       error
	filters   []config.TagFilter
}

func (s *stubInventory) Instances(_ context.Context, f config.TagFilter) ([]inventory.Instance, error) {
	s.filters = append(s.filters, f)
	return s.instances, s.err
}

// stubInstaller writes the plugin file, like a successful install would.
type stubInstaller struct {
	path  string
	err   error
	calls int
}

func (s *stubInstaller) Describe() string { return "stub install" }

func (s *stubInstaller) Install(context.Context) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(s.path, []byte("#!/bin/sh\n"), 0o755)
}

type harness struct {
	app        *App
	runner     *extesting.FakeRunner
	inv        *stubInventory
	installer  *stubInstaller
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
	pluginPath string
	invOpened  int
	lastConfig config.Config
}

// newHarness returns an App whose environment is fully faked: HOME is a
// temp dir, the plugin exists, and aws reports a recent version.
func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv(logger.DebugEnvVar, "")
	for _, key := range []string{"REGION", "PROFILE", "PORT", "INVENTORY", "PLUGIN_PATH", "MIN_CLI_VERSION", "AWS_CLI", "AUTO_INSTALL"} {
		t.Setenv(config.EnvPrefix+"_"+key, "")
		os.Unsetenv(config.EnvPrefix + "_" + key)
	}

	pluginPath := filepath.Join(home, "session-manager-plugin")
	require.NoError(t, os.WriteFile(pluginPath, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("EC2SSM_PLUGIN_PATH", pluginPath)

	h := &harness{
		runner:     extesting.NewFakeRunner().On("aws --version", extesting.Response{Stdout: "aws-cli/2.15.0 Python/3.11.6 Linux/6.5 exe/x86_64\n"}),
		inv:        &stubInventory{},
		installer:  &stubInstaller{path: pluginPath},
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
		pluginPath: pluginPath,
	}

	h.app = &App{
		Stdin:  strings.NewReader(stdin),
		Stdout: h.stdout,
		Stderr: h.stderr,
		Runner: h.runner,
		NewInventory: func(_ context.Context, cfg config.Config, _ exec.Runner, _ logger.Logger) (inventory.Inventory, error) {
			h.invOpened++
			h.lastConfig = cfg
			return h.inv, nil
		},
		NewInstaller: func(config.Config, exec.Runner, logger.Logger) doctor.Installer {
			return h.installer
		},
		IsTerminal: func() bool { return false },
	}
	return h
}

func (h *harness) run(args ...string) int {
	return h.app.Run(args)
}

// sessionCall returns the dispatched `aws ssm start-session` call.
func (h *harness) sessionCall(t *testing.T) extesting.Call {
	t.Helper()
	for _, c := range h.runner.Calls {
		if strings.HasPrefix(c.CommandLine(), "aws ssm start-session") {
			return c
		}
	}
	t.Fatalf("no session dispatched; calls: %v", h.runner.Calls)
	return extesting.Call{}
}

func (h *harness) dispatched() bool {
	return h.runner.Called("aws ssm start-session")
}

func threeMatches() []inventory.Instance {
	return []inventory.Instance{
		{ID: "i-0001", Name: "web-1"},
		{ID: "i-0002", Name: "web-1"},
		{ID: "i-0003", Name: "web-1"},
	}
}
