// Package sshutil inspects the local OpenSSH setup that a port-forwarding
// session relies on. A tunnel exposes the instance's sshd on
// localhost:<port>, so ~/.ssh/config and known_hosts entries for
// "localhost" decide whether "ssh -p <port> localhost" will connect.
package sshutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// TunnelHost is the host a tunnel is reached through.
const TunnelHost = "localhost"

// HostSettings are the ssh_config values that matter for a tunnel host.
type HostSettings struct {
	Host                  string
	User                  string
	Port                  string
	StrictHostKeyChecking string
	UserKnownHostsFiles   []string
	// MatchLine is the 1-based line of the first Match directive, or 0.
	// Entries after it are not seen.
	MatchLine int
}

// SkipsHostKeyCheck reports whether ssh won't verify or record host keys for
// this host, which is what a tunnel to changing instances needs.
func (s HostSettings) SkipsHostKeyCheck() bool {
	if !strings.EqualFold(s.StrictHostKeyChecking, "no") {
		return false
	}
	for _, f := range s.UserKnownHostsFiles {
		if f != "/dev/null" {
			return false
		}
	}
	return len(s.UserKnownHostsFiles) > 0
}

// DefaultConfigPath returns ~/.ssh/config.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// DefaultKnownHostsPath returns ~/.ssh/known_hosts.
func DefaultKnownHostsPath() string {
	return filepath.Join(homeDir(), ".ssh", "known_hosts")
}

// LookupHost reads the settings for host from the ssh config at configPath.
// A missing config file yields empty settings and no error.
func LookupHost(configPath, host string) (HostSettings, error) {
	settings := HostSettings{Host: host}

	content, matchLine, err := preprocessSSHConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil // No SSH config is fine
		}
		return settings, err
	}
	settings.MatchLine = matchLine

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return settings, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if user, _ := cfg.Get(host, "User"); user != "" {
		settings.User = user
	}
	if port, _ := cfg.Get(host, "Port"); port != "" {
		settings.Port = port
	}
	if strict, _ := cfg.Get(host, "StrictHostKeyChecking"); strict != "" {
		settings.StrictHostKeyChecking = strict
	}
	if files, _ := cfg.Get(host, "UserKnownHostsFile"); files != "" {
		for _, f := range strings.Fields(files) {
			settings.UserKnownHostsFiles = append(settings.UserKnownHostsFiles, expandPath(f))
		}
	}

	return settings, nil
}

// TunnelConfigSnippet is an ssh_config block that connects through a tunnel
// on port without pinning a host key.
func TunnelConfigSnippet(alias string, port int) string {
	return fmt.Sprintf(`Host %s
    HostName %s
    Port %d
    StrictHostKeyChecking no
    UserKnownHostsFile /dev/null
`, alias, TunnelHost, port)
}

// preprocessSSHConfig reads the SSH config and returns content up to the first Match directive.
// Returns the original content if no Match directive is found.
// Also returns the line number where Match was found (0 if not found).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		// The ssh_config library can't parse Match blocks
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
