package exec

import (
	"bytes"
	"context"
	goerrors "errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
)

// Result is the captured outcome of a non-interactive command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner launches external processes. A non-zero exit is reported through
// the exit code, not the error; the error is reserved for processes that
// could not be started at all.
type Runner interface {
	// Capture runs name with args and collects its output.
	Capture(ctx context.Context, name string, args ...string) (Result, error)
	// Run runs name with args attached to the runner's stdio and waits for
	// it. SIGINT and SIGTERM received meanwhile are forwarded to the child.
	Run(ctx context.Context, name string, args ...string) (int, error)
}

// LocalRunner runs commands on this machine.
type LocalRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Dir    string
}

// NewLocalRunner returns a runner wired to the process's own stdio.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Capture runs the command with no stdin and returns its output.
func (r *LocalRunner) Capture(ctx context.Context, name string, args ...string) (Result, error) {
	command := exec.CommandContext(ctx, name, args...)
	if r.Dir != "" {
		command.Dir = r.Dir
	}

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	runErr := command.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if runErr != nil {
		var exitErr *exec.ExitError
		if goerrors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, launchError(name, runErr)
	}

	return res, nil
}

// Run starts the command with inherited stdio and blocks until it exits.
// Interrupts are relayed to the child rather than terminating this process,
// so the caller always gets the child's own exit status.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	command := exec.CommandContext(ctx, name, args...)
	if r.Dir != "" {
		command.Dir = r.Dir
	}
	command.Stdin = r.Stdin
	command.Stdout = r.Stdout
	command.Stderr = r.Stderr

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := command.Start(); err != nil {
		return -1, launchError(name, err)
	}

	done := make(chan struct{})
	defer close(done)
	go forwardSignals(command.Process, sigs, done)

	waitErr := command.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if goerrors.As(waitErr, &exitErr) {
			return exitStatus(exitErr), nil
		}
		return -1, errors.WrapWithCode(waitErr, errors.ErrDispatch,
			"Lost track of "+name+" while waiting for it",
			"This shouldn't happen - please report this bug!")
	}

	return 0, nil
}

func forwardSignals(p *os.Process, sigs <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case sig := <-sigs:
			// The child may already be gone; nothing to do then.
			_ = p.Signal(sig)
		case <-done:
			return
		}
	}
}

// exitStatus maps a child that died from a signal to the conventional
// 128+signal status a shell would report.
func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}

func launchError(name string, err error) error {
	if goerrors.Is(err, exec.ErrNotFound) {
		return errors.WrapWithCode(err, errors.ErrEnvironment,
			"'"+name+"' wasn't found in your PATH",
			"Install it, or point ec2ssm at it with aws_cli in the config file.")
	}
	return errors.WrapWithCode(err, errors.ErrEnvironment,
		"Couldn't start '"+name+"'",
		"Make sure the command exists and is executable.")
}
