package exec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
)

// cliFailure pairs a stderr pattern from the aws CLI with a fix the operator
// can act on. The first submatch, when present, is substituted into the
// message with %s.
type cliFailure struct {
	pattern    *regexp.Regexp
	message    string
	suggestion string
}

// cliFailures are checked in order; the first match wins.
var cliFailures = []cliFailure{
	{
		pattern:    regexp.MustCompile(`(?i)Unable to locate credentials`),
		message:    "No AWS credentials found",
		suggestion: "Run 'aws configure', export AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY, or pass -p <profile>.",
	},
	{
		pattern:    regexp.MustCompile(`(?i)The config profile \(([^)]+)\) could not be found`),
		message:    "AWS profile '%s' doesn't exist",
		suggestion: "Check the profile name against ~/.aws/config.",
	},
	{
		pattern:    regexp.MustCompile(`(?i)(ExpiredToken|RequestExpired|token included in the request is expired)`),
		message:    "AWS credentials have expired",
		suggestion: "Refresh your session (e.g. 'aws sso login') and try again.",
	},
	{
		pattern:    regexp.MustCompile(`(?i)(UnauthorizedOperation|AccessDenied)`),
		message:    "AWS denied the request",
		suggestion: "Your identity needs ec2:DescribeInstances and ssm:StartSession.",
	},
	{
		pattern:    regexp.MustCompile(`(?i)Invalid choice: '([^']+)'`),
		message:    "The aws CLI doesn't know '%s'",
		suggestion: "Upgrade the aws CLI; Session Manager needs version 1.16.299 or newer.",
	},
	{
		pattern:    regexp.MustCompile(`(?i)SessionManagerPlugin is not found`),
		message:    "session-manager-plugin is not installed",
		suggestion: "Run: ec2ssm doctor --fix",
	},
	{
		pattern:    regexp.MustCompile(`(?i)TargetNotConnected`),
		message:    "The instance isn't connected to Systems Manager",
		suggestion: "Check the SSM agent is running and the instance profile allows SSM.",
	},
}

// ClassifyCLIError turns a failed aws CLI invocation into a structured error.
// It returns nil when exitCode is zero. Unrecognised failures fall back to
// the trimmed stderr under the given code.
func ClassifyCLIError(code, what, stderr string, exitCode int) error {
	if exitCode == 0 {
		return nil
	}

	for _, f := range cliFailures {
		m := f.pattern.FindStringSubmatch(stderr)
		if m == nil {
			continue
		}
		msg := f.message
		if strings.Contains(msg, "%s") && len(m) > 1 {
			msg = fmt.Sprintf(msg, m[1])
		}
		return errors.New(code, what+": "+msg, f.suggestion)
	}

	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = fmt.Sprintf("exited with code %d", exitCode)
	}
	return errors.New(code, what+": "+detail, "Run the same aws command by hand with --debug to see more.")
}
