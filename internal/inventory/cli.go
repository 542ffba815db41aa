package inventory

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/exec"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/rileyhilliard/ec2ssm/internal/util"
)

// maxLineSize bounds one line of describe-instances text output.
const maxLineSize = 1 << 20

// instanceQuery asks the CLI for one "<id>\t<name>" line per instance.
const instanceQuery = "Reservations[].Instances[].[InstanceId, Tags[?Key==`Name`].Value | [0]]"

// CLIInventory runs "aws ec2 describe-instances" and parses its text output.
type CLIInventory struct {
	runner  exec.Runner
	awsCLI  string
	region  string
	profile string
	log     logger.Logger
}

// NewCLIInventory creates a CLI-backed inventory. awsCLI is the executable
// name or path of the aws CLI.
func NewCLIInventory(runner exec.Runner, awsCLI, region, profile string, log logger.Logger) *CLIInventory {
	if log == nil {
		log = logger.Noop()
	}
	return &CLIInventory{runner: runner, awsCLI: awsCLI, region: region, profile: profile, log: log}
}

// Args returns the CLI arguments for a describe-instances call. Filters are
// passed as JSON so tag values may contain commas.
func (c *CLIInventory) Args(filter config.TagFilter) ([]string, error) {
	filters, err := json.Marshal(BuildFilters(filter))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrInventory, "Couldn't encode the instance filters", "")
	}
	args := []string{"ec2", "describe-instances", "--filters", string(filters)}
	args = append(args,
		"--query", instanceQuery,
		"--output", "text",
		"--region", c.region,
	)
	if c.profile != "" {
		args = append(args, "--profile", c.profile)
	}
	return args, nil
}

// Instances runs the CLI and parses its output.
func (c *CLIInventory) Instances(ctx context.Context, filter config.TagFilter) ([]Instance, error) {
	args, err := c.Args(filter)
	if err != nil {
		return nil, err
	}
	c.log.Debug("running %s", util.ShellJoin(append([]string{c.awsCLI}, args...)))

	res, err := c.runner.Capture(ctx, c.awsCLI, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, exec.ClassifyCLIError(errors.ErrInventory,
			"Couldn't list instances in "+c.region, string(res.Stderr), res.ExitCode)
	}

	instances, err := ParseInstanceLines(string(res.Stdout))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrInventory,
			"Couldn't read the instance list from "+c.awsCLI,
			"Run the same aws command by hand with --debug to see more.")
	}
	c.log.Debug("found %d instance(s)", len(instances))
	return instances, nil
}

// ParseInstanceLines parses text output where each line is an instance id
// followed by its name. Blank lines are skipped and a "None" name, which the
// CLI prints for a missing tag, becomes empty.
func ParseInstanceLines(output string) ([]Instance, error) {
	var instances []Instance
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, name := line, ""
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			id, name = line[:i], strings.TrimSpace(line[i+1:])
		}
		if name == "None" {
			name = ""
		}
		instances = append(instances, Instance{ID: id, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return instances, nil
}
