package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/ec2ssm/pkg/sshutil"
)

// TunnelHostKeyCheck warns when known_hosts pins a key for the tunnel's
// local address. Every instance behind the same local port has a different
// host key, so a pinned entry makes ssh refuse the next tunnel.
type TunnelHostKeyCheck struct {
	Port           int
	SSHConfigPath  string // defaults to ~/.ssh/config
	KnownHostsPath string // used when ssh_config sets no UserKnownHostsFile
}

func (c *TunnelHostKeyCheck) Name() string     { return "tunnel_host_key" }
func (c *TunnelHostKeyCheck) Category() string { return "SSH" }

func (c *TunnelHostKeyCheck) Run(context.Context) CheckResult {
	configPath := c.SSHConfigPath
	if configPath == "" {
		configPath = sshutil.DefaultConfigPath()
	}

	settings, err := sshutil.LookupHost(configPath, sshutil.TunnelHost)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Couldn't read ssh config: %v", err),
			Suggestion: "Check the syntax of " + configPath,
		}
	}

	if settings.SkipsHostKeyCheck() {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "ssh config skips host key checks for localhost",
		}
	}

	files := settings.UserKnownHostsFiles
	if len(files) == 0 {
		files = []string{c.knownHostsPath()}
	}

	pinned, err := sshutil.PinnedKeys(files, sshutil.TunnelHost, c.Port)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Couldn't read known_hosts: %v", err),
			Suggestion: "Check the syntax of " + strings.Join(files, ", "),
		}
	}

	addr := sshutil.KnownHostsAddress(sshutil.TunnelHost, c.Port)
	if len(pinned) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("No host key pinned for %s", addr),
		}
	}

	first := pinned[0]
	return CheckResult{
		Name:   c.Name(),
		Status: StatusWarn,
		Message: fmt.Sprintf("%s has a pinned %s key (%s:%d); ssh over a tunnel to another instance will fail",
			addr, first.Type, first.Filename, first.Line),
		Suggestion: fmt.Sprintf("Remove it with: ssh-keygen -R '%s'\n\n  Or add to ~/.ssh/config:\n\n%s",
			addr, indent(sshutil.TunnelConfigSnippet("ec2ssm-tunnel", c.Port), "    ")),
	}
}

func (c *TunnelHostKeyCheck) Fix(context.Context) error {
	return nil // Editing known_hosts is left to the operator
}

func (c *TunnelHostKeyCheck) knownHostsPath() string {
	if c.KnownHostsPath != "" {
		return c.KnownHostsPath
	}
	return sshutil.DefaultKnownHostsPath()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
