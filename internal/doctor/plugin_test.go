package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInstaller records calls and optionally creates the plugin file.
type stubInstaller struct {
	createAt string
	err      error
	calls    int
}

func (s *stubInstaller) Describe() string { return "stub install" }

func (s *stubInstaller) Install(context.Context) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.createAt != "" {
		return os.WriteFile(s.createAt, []byte("#!/bin/sh\n"), 0o755)
	}
	return nil
}

func TestPluginCheck_Present(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session-manager-plugin")
	require.NoError(t, os.WriteFile(path, []byte("bin"), 0o755))

	result := (&PluginCheck{Path: path}).Run(context.Background())

	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, path)
}

func TestPluginCheck_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session-manager-plugin")

	result := (&PluginCheck{Path: path, Installer: &stubInstaller{}}).Run(context.Background())

	assert.Equal(t, StatusFail, result.Status)
	assert.True(t, result.Fixable)
	assert.Contains(t, result.Message, "not found")
}

func TestPluginCheck_MissingWithoutInstaller(t *testing.T) {
	result := (&PluginCheck{Path: filepath.Join(t.TempDir(), "nope")}).Run(context.Background())

	assert.Equal(t, StatusFail, result.Status)
	assert.False(t, result.Fixable)
}

func TestPluginCheck_Directory(t *testing.T) {
	result := (&PluginCheck{Path: t.TempDir()}).Run(context.Background())

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "is a directory")
}

func TestPluginCheck_PreflightInstalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session-manager-plugin")
	installer := &stubInstaller{createAt: path}
	check := &PluginCheck{Path: path, Installer: installer}

	err := Preflight(context.Background(), []Check{check}, true, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
	assert.FileExists(t, path)
}

func TestPluginCheck_InstallFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session-manager-plugin")
	installer := &stubInstaller{err: errors.NewEnvironment("no sudo", "")}
	check := &PluginCheck{Path: path, Installer: installer}

	err := Preflight(context.Background(), []Check{check}, true, nil)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrEnvironment))
}

func TestPluginCheck_FixWithoutInstaller(t *testing.T) {
	err := (&PluginCheck{Path: "/nope"}).Fix(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrEnvironment))
}
