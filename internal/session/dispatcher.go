package session

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/exec"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/rileyhilliard/ec2ssm/internal/util"
)

// Dispatcher runs session requests through the aws CLI.
type Dispatcher struct {
	runner exec.Runner
	awsCLI string
	log    logger.Logger
}

// NewDispatcher returns a dispatcher that launches awsCLI via runner.
func NewDispatcher(runner exec.Runner, awsCLI string, log logger.Logger) *Dispatcher {
	if awsCLI == "" {
		awsCLI = config.DefaultAWSCLI
	}
	return &Dispatcher{runner: runner, awsCLI: awsCLI, log: log}
}

// Dispatch starts the session and blocks until it ends. The child owns the
// terminal meanwhile. A non-zero exit comes back as an *errors.ExitError
// carrying the child's status.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	if !req.Action().Valid() {
		return errors.New(errors.ErrDispatch,
			fmt.Sprintf("Unknown action %q", req.Action().String()),
			"Use -a ssh for a shell or -a tunnel for port forwarding.")
	}

	args, err := req.Args()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDispatch,
			"Couldn't build the session parameters",
			"This shouldn't happen - please report this bug!")
	}

	if req.Action() == config.ActionTunnel {
		d.log.Info("forwarding localhost:%d to %s:%d", req.LocalPort(), req.Target(), req.RemotePort())
	}
	d.log.Debug("running %s", util.ShellJoin(append([]string{d.awsCLI}, args...)))

	code, err := d.runner.Run(ctx, d.awsCLI, args...)
	if err != nil {
		return err
	}
	if code != 0 {
		d.log.Debug("session ended with status %d", code)
		return errors.NewExitError(code)
	}
	return nil
}
