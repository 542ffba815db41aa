package cli

import (
	"errors"
	"testing"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	ec2errors "github.com/rileyhilliard/ec2ssm/internal/errors"
	extesting "github.com/rileyhilliard/ec2ssm/internal/exec/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no selector", args: nil, wantErr: "No instance selector given"},
		{name: "privileged port", args: []string{"-n", "web-1", "-o", "1024"}, wantErr: "Port 1024 is not allowed"},
		{name: "port zero", args: []string{"-n", "web-1", "-o", "0"}, wantErr: "Port 0 is not allowed"},
		{name: "unknown action", args: []string{"-n", "web-1", "-a", "scp"}, wantErr: "Unknown action 'scp'"},
		{name: "empty tag key", args: []string{"-t", "=web"}, wantErr: "Malformed tag '=web'"},
		{name: "unknown flag", args: []string{"-n", "web-1", "--bogus"}, wantErr: "unknown flag: --bogus"},
		{name: "non-numeric port", args: []string{"-n", "web-1", "-o", "http"}, wantErr: "Invalid arguments"},
		{name: "stray argument", args: []string{"web-1"}, wantErr: `Unknown command "web-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")

			code := h.run(tt.args...)

			assert.Equal(t, 1, code)
			assert.Contains(t, h.stderr.String(), tt.wantErr)
			assert.Contains(t, h.stderr.String(), "Usage:", "usage errors print usage")
			assert.False(t, h.dispatched())
			assert.Zero(t, h.invOpened)
		})
	}
}

func TestRun_HelpExitsOne(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, 1, h.run("-h"))
	assert.Contains(t, h.stdout.String(), "Usage:")
	assert.Contains(t, h.stdout.String(), "--instance")
	assert.False(t, h.dispatched())
}

func TestRun_VersionExitsZero(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })
	version = "1.4.0"

	h := newHarness(t, "")

	assert.Equal(t, 0, h.run("-v"))
	assert.Equal(t, "ec2ssm 1.4.0\n", h.stdout.String())
}

func TestRun_UnknownCommandSuggestion(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, 1, h.run("doctr"))
	assert.Contains(t, h.stderr.String(), "Did you mean: doctor?")
}

func TestRun_ChildExitStatusPassesThrough(t *testing.T) {
	h := newHarness(t, "")
	h.runner.On("aws ssm start-session", extesting.Response{ExitCode: 130})

	code := h.run("-x", "i-0abc")

	assert.Equal(t, 130, code)
	assert.Empty(t, h.stderr.String(), "the child already reported its failure")
}

func TestRun_InventoryFailure(t *testing.T) {
	h := newHarness(t, "")
	h.inv.err = ec2errors.New(ec2errors.ErrInventory, "Couldn't list instances in us-east-1", "Check your credentials.")

	assert.Equal(t, 1, h.run("-n", "web-1"))
	assert.Contains(t, h.stderr.String(), "Couldn't list instances")
	assert.NotContains(t, h.stderr.String(), "Usage:")
	assert.False(t, h.dispatched())
}

func TestIsUnknownCommandError(t *testing.T) {
	assert.True(t, isUnknownCommandError(errors.New(`unknown command "foo" for "ec2ssm"`)))
	assert.True(t, isUnknownCommandError(errors.New(`unknown flag: --foo`)))
	assert.True(t, isUnknownCommandError(errors.New(`unknown shorthand flag: 'z' in -z`)))
	assert.False(t, isUnknownCommandError(errors.New("connection failed")))
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "standard cobra format", err: errors.New(`unknown command "foo" for "ec2ssm"`), want: "foo"},
		{name: "command with hyphen", err: errors.New(`unknown command "my-cmd" for "ec2ssm"`), want: "my-cmd"},
		{name: "no quotes", err: errors.New("unknown command foo"), want: ""},
		{name: "unterminated quote", err: errors.New(`unknown command "foo`), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "", capitalizeFirst(""))
	assert.Equal(t, "Unknown flag", capitalizeFirst("unknown flag"))
	assert.Equal(t, "SSH", capitalizeFirst("SSH"))
	assert.Equal(t, "-flag", capitalizeFirst("-flag"))
}

func TestNewRootCmd_Flags(t *testing.T) {
	root := NewApp().NewRootCmd()

	shorthands := map[string]string{
		"a": "action", "n": "name", "t": "tag", "r": "region", "p": "profile",
		"o": "port", "x": "instance", "s": "select",
	}
	for short, long := range shorthands {
		f := root.Flags().ShorthandLookup(short)
		if f == nil {
			f = root.PersistentFlags().ShorthandLookup(short)
		}
		require.NotNil(t, f, "-%s", short)
		assert.Equal(t, long, f.Name)
	}

	for _, long := range []string{"picker", "inventory", "no-install", "config", "verbose", "no-color"} {
		f := root.Flags().Lookup(long)
		if f == nil {
			f = root.PersistentFlags().Lookup(long)
		}
		assert.NotNil(t, f, "--%s", long)
	}

	assert.Equal(t, config.DefaultRegion, root.PersistentFlags().Lookup("region").DefValue)
	assert.Equal(t, "9999", root.Flags().Lookup("port").DefValue)
	assert.Equal(t, "ssh", root.Flags().Lookup("action").DefValue)
}
