// Package testing provides test doubles for the exec package.
package testing

import (
	"context"
	"strings"
	"sync"

	"github.com/rileyhilliard/ec2ssm/internal/exec"
)

// Call records one invocation made through the FakeRunner.
type Call struct {
	Name        string
	Args        []string
	Interactive bool
}

// CommandLine joins name and args with spaces.
func (c Call) CommandLine() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is what the FakeRunner returns for a matching command.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
	// Hook runs before the response is returned, e.g. to create a file the
	// real command would have produced.
	Hook func(Call)
}

type rule struct {
	prefix string
	resp   Response
}

// FakeRunner is an exec.Runner that never starts a process. Responses are
// matched on the longest registered prefix of the command line, the latest
// registration winning a tie; commands with no match succeed with empty
// output.
type FakeRunner struct {
	mu    sync.Mutex
	rules []rule

	Calls []Call
}

// NewFakeRunner creates an empty fake runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers resp for every command line starting with prefix.
func (f *FakeRunner) On(prefix string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{prefix: prefix, resp: resp})
	return f
}

// Capture implements exec.Runner.
func (f *FakeRunner) Capture(_ context.Context, name string, args ...string) (exec.Result, error) {
	resp := f.record(Call{Name: name, Args: args})
	return exec.Result{
		Stdout:   []byte(resp.Stdout),
		Stderr:   []byte(resp.Stderr),
		ExitCode: resp.ExitCode,
	}, resp.Err
}

// Run implements exec.Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (int, error) {
	resp := f.record(Call{Name: name, Args: args, Interactive: true})
	return resp.ExitCode, resp.Err
}

// Called reports whether any command line started with prefix.
func (f *FakeRunner) Called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if strings.HasPrefix(c.CommandLine(), prefix) {
			return true
		}
	}
	return false
}

// LastCall returns the most recent call, or false if there were none.
func (f *FakeRunner) LastCall() (Call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return Call{}, false
	}
	return f.Calls[len(f.Calls)-1], true
}

func (f *FakeRunner) record(c Call) Response {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)

	line := c.CommandLine()
	var best *rule
	for i := range f.rules {
		r := &f.rules[i]
		if strings.HasPrefix(line, r.prefix) && (best == nil || len(r.prefix) >= len(best.prefix)) {
			best = r
		}
	}
	f.mu.Unlock()

	if best == nil {
		return Response{}
	}
	if best.resp.Hook != nil {
		best.resp.Hook(c)
	}
	return best.resp
}
