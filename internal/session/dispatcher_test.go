package session

import (
	"context"
	"testing"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	extesting "github.com/rileyhilliard/ec2ssm/internal/exec/testing"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_Shell(t *testing.T) {
	runner := extesting.NewFakeRunner()
	d := NewDispatcher(runner, "aws", logger.Noop())

	err := d.Dispatch(context.Background(), NewRequest(config.ActionShell, "i-0abc", "us-east-1", "", 9999))
	require.NoError(t, err)

	call, ok := runner.LastCall()
	require.True(t, ok)
	assert.True(t, call.Interactive, "sessions run attached to the terminal")
	assert.Equal(t, "aws", call.Name)
	assert.Equal(t, []string{"ssm", "start-session", "--target", "i-0abc", "--region", "us-east-1"}, call.Args)
}

func TestDispatch_TunnelLogsForwarding(t *testing.T) {
	runner := extesting.NewFakeRunner()
	log := logger.NewBufferLogger()
	d := NewDispatcher(runner, "/opt/aws/bin/aws", log)

	err := d.Dispatch(context.Background(), NewRequest(config.ActionTunnel, "i-0abc", "us-east-1", "", 8080))
	require.NoError(t, err)

	call, _ := runner.LastCall()
	assert.Equal(t, "/opt/aws/bin/aws", call.Name)
	assert.Contains(t, call.Args, `{"portNumber":["22"],"localPortNumber":["8080"]}`)
	assert.True(t, log.Contains("localhost:8080"))
	assert.True(t, log.Contains("'{\"portNumber\""), "argv is logged shell-quoted")
}

func TestDispatch_PropagatesExitStatus(t *testing.T) {
	for _, code := range []int{1, 130, 255} {
		runner := extesting.NewFakeRunner().On("aws ssm", extesting.Response{ExitCode: code})
		d := NewDispatcher(runner, "aws", logger.Noop())

		err := d.Dispatch(context.Background(), NewRequest(config.ActionShell, "i-0abc", "us-east-1", "", 9999))
		require.Error(t, err)

		got, ok := errors.GetExitCode(err)
		require.True(t, ok)
		assert.Equal(t, code, got)
		assert.Equal(t, code, errors.ExitCodeFor(err))
	}
}

func TestDispatch_LaunchFailure(t *testing.T) {
	launchErr := errors.NewEnvironment("'aws' wasn't found in your PATH", "")
	runner := extesting.NewFakeRunner().On("aws", extesting.Response{ExitCode: -1, Err: launchErr})
	d := NewDispatcher(runner, "aws", logger.Noop())

	err := d.Dispatch(context.Background(), NewRequest(config.ActionShell, "i-0abc", "us-east-1", "", 9999))
	assert.True(t, errors.IsCode(err, errors.ErrEnvironment))
}

func TestDispatch_UnknownAction(t *testing.T) {
	runner := extesting.NewFakeRunner()
	d := NewDispatcher(runner, "aws", logger.Noop())

	err := d.Dispatch(context.Background(), NewRequest(config.Action(42), "i-0abc", "us-east-1", "", 9999))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDispatch))
	assert.Empty(t, runner.Calls, "nothing is launched for an unknown action")
}

func TestNewDispatcher_DefaultCLI(t *testing.T) {
	runner := extesting.NewFakeRunner()
	d := NewDispatcher(runner, "", logger.Noop())

	require.NoError(t, d.Dispatch(context.Background(), NewRequest(config.ActionShell, "i-0abc", "us-east-1", "", 9999)))
	call, _ := runner.LastCall()
	assert.Equal(t, "aws", call.Name)
}
