package config

import (
	"fmt"
	"strings"
)

// Built-in defaults. Settings from the config file and environment layer on
// top of these, and explicit flags win over everything.
const (
	DefaultRegion        = "us-east-1"
	DefaultPort          = 9999
	DefaultPluginPath    = "/usr/local/bin/session-manager-plugin"
	DefaultMinCLIVersion = "1.16.299"
	DefaultAWSCLI        = "aws"

	// MinLocalPort is the highest port a tunnel may NOT bind to.
	// Ports at or below it are privileged.
	MinLocalPort = 1024

	// NameTagKey is the tag the -n shorthand filters on.
	NameTagKey = "Name"
)

// Inventory backends.
const (
	InventoryAPI = "api"
	InventoryCLI = "cli"
)

// Action is what to open once an instance is chosen.
type Action int

const (
	// ActionShell opens an interactive shell on the instance.
	ActionShell Action = iota
	// ActionTunnel forwards a local port to port 22 on the instance.
	ActionTunnel
)

// ParseAction maps the -a flag value to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ssh", "shell":
		return ActionShell, nil
	case "tunnel":
		return ActionTunnel, nil
	default:
		return 0, fmt.Errorf("unknown action %q (expected ssh or tunnel)", s)
	}
}

// String returns the flag spelling of the action.
func (a Action) String() string {
	switch a {
	case ActionShell:
		return "ssh"
	case ActionTunnel:
		return "tunnel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionShell || a == ActionTunnel
}

// TagFilter selects instances by tag. It is either a bare key (any value
// matches) or a key with an exact value.
type TagFilter struct {
	key      string
	value    string
	hasValue bool
}

// KeyFilter matches any instance carrying the tag key.
func KeyFilter(key string) TagFilter {
	return TagFilter{key: key}
}

// KeyValueFilter matches instances whose tag key has exactly value.
func KeyValueFilter(key, value string) TagFilter {
	return TagFilter{key: key, value: value, hasValue: true}
}

// ParseTagFilter parses "key" or "key=value". Only the first '=' separates,
// so values may contain '='.
func ParseTagFilter(s string) (TagFilter, error) {
	key, value, hasValue := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return TagFilter{}, fmt.Errorf("tag %q has an empty key", s)
	}
	if !hasValue {
		return KeyFilter(key), nil
	}
	return KeyValueFilter(key, value), nil
}

// Key returns the tag key.
func (f TagFilter) Key() string { return f.key }

// Value returns the tag value and whether one was given.
func (f TagFilter) Value() (string, bool) { return f.value, f.hasValue }

// HasValue reports whether the filter pins a value.
func (f TagFilter) HasValue() bool { return f.hasValue }

// String renders the filter the way it was written on the command line.
func (f TagFilter) String() string {
	if f.hasValue {
		return f.key + "=" + f.value
	}
	return f.key
}

// Settings are the defaults read from the config file and environment.
type Settings struct {
	Region        string `yaml:"region" mapstructure:"region"`
	Profile       string `yaml:"profile" mapstructure:"profile"`
	Port          int    `yaml:"port" mapstructure:"port"`
	Inventory     string `yaml:"inventory" mapstructure:"inventory"`
	PluginPath    string `yaml:"plugin_path" mapstructure:"plugin_path"`
	MinCLIVersion string `yaml:"min_cli_version" mapstructure:"min_cli_version"`
	AWSCLI        string `yaml:"aws_cli" mapstructure:"aws_cli"`
	AutoInstall   bool   `yaml:"auto_install" mapstructure:"auto_install"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Region:        DefaultRegion,
		Port:          DefaultPort,
		Inventory:     InventoryAPI,
		PluginPath:    DefaultPluginPath,
		MinCLIVersion: DefaultMinCLIVersion,
		AWSCLI:        DefaultAWSCLI,
		AutoInstall:   true,
	}
}

// Config is one invocation's fully resolved configuration. It is built once
// by the argument parser and passed by value downstream.
type Config struct {
	Action      Action
	Region      string
	Profile     string
	Tag         *TagFilter
	InstanceID  string
	LocalPort   int
	Interactive bool
	Picker      bool

	Inventory     string
	PluginPath    string
	MinCLIVersion string
	AWSCLI        string
	AutoInstall   bool
}

// UsesExplicitInstance reports whether the resolver should be skipped.
func (c Config) UsesExplicitInstance() bool {
	return c.InstanceID != ""
}

// Selector describes how the target is chosen, for messages.
func (c Config) Selector() string {
	if c.UsesExplicitInstance() {
		return "instance " + c.InstanceID
	}
	if c.Tag != nil {
		return "tag " + c.Tag.String()
	}
	return "(none)"
}
