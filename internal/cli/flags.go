package cli

import (
	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/spf13/pflag"
)

// Options holds raw flag values before they are layered over the config
// file and validated.
type Options struct {
	Action      string
	Name        string
	Tag         string
	Region      string
	Profile     string
	Port        int
	InstanceID  string
	Interactive bool
	Picker      bool
	Inventory   string
	NoInstall   bool
	ConfigPath  string
	Verbose     bool
	NoColor     bool
}

// addGlobalFlags registers flags every command understands.
func addGlobalFlags(fs *pflag.FlagSet, opts *Options) {
	fs.StringVarP(&opts.Region, "region", "r", config.DefaultRegion, "AWS region")
	fs.StringVarP(&opts.Profile, "profile", "p", "", "AWS named profile (default: the SDK's default credentials)")
	fs.StringVar(&opts.Inventory, "inventory", config.InventoryAPI, "how to list instances: api or cli")
	fs.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/ec2ssm/config.yaml)")
	fs.BoolVar(&opts.Verbose, "verbose", false, "log every decision to stderr")
	fs.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
}

// addSelectorFlags registers -n and -t.
func addSelectorFlags(fs *pflag.FlagSet, opts *Options) {
	fs.StringVarP(&opts.Name, "name", "n", "", "instance Name tag (shorthand for -t Name=<value>)")
	fs.StringVarP(&opts.Tag, "tag", "t", "", "tag filter: key or key=value")
}

// addPortFlag registers -o.
func addPortFlag(fs *pflag.FlagSet, opts *Options) {
	fs.IntVarP(&opts.Port, "port", "o", config.DefaultPort, "local port for tunnels")
}

// addConnectFlags registers the flags only the root connect command takes.
func addConnectFlags(fs *pflag.FlagSet, opts *Options) {
	addSelectorFlags(fs, opts)
	addPortFlag(fs, opts)
	fs.StringVarP(&opts.Action, "action", "a", config.ActionShell.String(), "ssh for a shell, tunnel for port forwarding")
	fs.StringVarP(&opts.InstanceID, "instance", "x", "", "instance id; skips the tag lookup")
	fs.BoolVarP(&opts.Interactive, "select", "s", false, "choose from a numbered list of matches")
	fs.BoolVar(&opts.Picker, "picker", false, "choose from a full-screen filterable list")
	fs.BoolVar(&opts.NoInstall, "no-install", false, "report a missing session-manager-plugin instead of installing it")
}

// BuildConfig layers flags over settings. A flag only wins when it was set
// explicitly (changed reports that); otherwise the config file or
// environment value applies. The result is not validated.
func BuildConfig(opts Options, s config.Settings, changed func(name string) bool, log logger.Logger) (config.Config, error) {
	if log == nil {
		log = logger.Noop()
	}

	cfg := config.Config{
		Region:        s.Region,
		Profile:       s.Profile,
		LocalPort:     s.Port,
		Inventory:     s.Inventory,
		PluginPath:    s.PluginPath,
		MinCLIVersion: s.MinCLIVersion,
		AWSCLI:        s.AWSCLI,
		AutoInstall:   s.AutoInstall && !opts.NoInstall,
		InstanceID:    opts.InstanceID,
		Interactive:   opts.Interactive || opts.Picker,
		Picker:        opts.Picker,
	}

	if changed("region") {
		cfg.Region = opts.Region
	}
	if changed("profile") {
		cfg.Profile = opts.Profile
	}
	if changed("port") {
		cfg.LocalPort = opts.Port
	}
	if changed("inventory") {
		cfg.Inventory = opts.Inventory
	}

	action := opts.Action
	if action == "" {
		action = config.ActionShell.String()
	}
	a, err := config.ParseAction(action)
	if err != nil {
		return config.Config{}, errors.WrapWithCode(err, errors.ErrUsage,
			"Unknown action '"+opts.Action+"'",
			"Use -a ssh for a shell or -a tunnel for port forwarding.")
	}
	cfg.Action = a

	tag, err := selectorTag(opts, log)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Tag = tag

	return cfg, nil
}

// selectorTag turns -n / -t into a filter. -n wins when both are given.
func selectorTag(opts Options, log logger.Logger) (*config.TagFilter, error) {
	if opts.Name != "" {
		if opts.Tag != "" {
			log.Debug("both -n %s and -t %s given, using -n", opts.Name, opts.Tag)
		}
		f := config.KeyValueFilter(config.NameTagKey, opts.Name)
		return &f, nil
	}

	if opts.Tag == "" {
		return nil, nil
	}

	f, err := config.ParseTagFilter(opts.Tag)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrUsage,
			"Malformed tag '"+opts.Tag+"'",
			"Use -t key or -t key=value.")
	}
	return &f, nil
}
