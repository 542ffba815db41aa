package doctor

import (
	"context"
	"testing"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(name string) *mockCheck {
	return &mockCheck{name: name, result: CheckResult{Name: name, Status: StatusPass}}
}

func TestPreflight_AllPass(t *testing.T) {
	a, b := passing("a"), passing("b")

	err := Preflight(context.Background(), []Check{a, b}, true, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, a.runCalls)
	assert.Equal(t, 1, b.runCalls)
}

func TestPreflight_StopsAtFirstFailure(t *testing.T) {
	bad := &mockCheck{name: "cli", result: CheckResult{
		Status:     StatusFail,
		Message:    "aws CLI 1.2.5 is older than 1.16.299",
		Suggestion: "Upgrade the AWS CLI",
	}}
	after := passing("after")

	err := Preflight(context.Background(), []Check{bad, after}, true, nil)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrEnvironment))
	assert.Contains(t, err.Error(), "older than 1.16.299")
	assert.Equal(t, 0, bad.fixCalls, "unfixable checks are never fixed")
	assert.Equal(t, 0, after.runCalls)
}

func TestPreflight_FixesAndReruns(t *testing.T) {
	plugin := &mockCheck{name: "plugin", results: []CheckResult{
		{Status: StatusFail, Message: "missing", Fixable: true},
		{Status: StatusPass},
	}}

	err := Preflight(context.Background(), []Check{plugin}, true, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, plugin.fixCalls)
	assert.Equal(t, 2, plugin.runCalls)
}

func TestPreflight_NoAutoFix(t *testing.T) {
	plugin := &mockCheck{name: "plugin", result: CheckResult{Status: StatusFail, Message: "missing", Fixable: true}}

	err := Preflight(context.Background(), []Check{plugin}, false, nil)

	require.Error(t, err)
	assert.Equal(t, 0, plugin.fixCalls)
}

func TestPreflight_FixError(t *testing.T) {
	fixErr := errors.NewEnvironment("sudo unavailable", "")
	plugin := &mockCheck{
		name:   "plugin",
		result: CheckResult{Status: StatusFail, Message: "missing", Fixable: true},
		fixErr: fixErr,
	}

	err := Preflight(context.Background(), []Check{plugin}, true, nil)

	assert.Equal(t, fixErr, err)
}

func TestPreflight_StillFailingAfterFix(t *testing.T) {
	plugin := &mockCheck{name: "plugin", result: CheckResult{Status: StatusFail, Message: "still missing", Fixable: true}}

	err := Preflight(context.Background(), []Check{plugin}, true, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "still missing")
	assert.Equal(t, 1, plugin.fixCalls)
}

func TestPreflight_WarningsDoNotBlock(t *testing.T) {
	warn := &mockCheck{name: "hostkey", result: CheckResult{Status: StatusWarn, Message: "pinned host key"}}
	log := logger.NewBufferLogger()

	err := Preflight(context.Background(), []Check{warn, passing("next")}, false, log)

	require.NoError(t, err)
	assert.True(t, log.HasLevel("warn"))
	assert.True(t, log.Contains("pinned host key"))
}
