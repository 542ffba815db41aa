package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every setting read from the environment,
	// e.g. EC2SSM_REGION or EC2SSM_PLUGIN_PATH.
	EnvPrefix = "EC2SSM"
	// GlobalConfigDir is the directory for the config file, relative to home.
	GlobalConfigDir = ".config/ec2ssm"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yaml"
)

// DefaultPath returns where the config file lives. XDG_CONFIG_HOME wins over
// ~/.config when set.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ec2ssm", GlobalConfigFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadSettings layers built-in defaults, the config file and EC2SSM_*
// environment variables. An explicit path must exist; the default path is
// optional. The returned string is the file that was read, or "" if none.
func LoadSettings(explicit string) (Settings, string, error) {
	v := newViper()

	path := explicit
	if path == "" {
		path = DefaultPath()
		if path != "" {
			if _, err := os.Stat(path); err != nil {
				path = ""
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Settings{}, "", errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+explicit,
				"Check the path passed to --config")
		}
		return Settings{}, "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot access config file: "+explicit,
			"Check file permissions")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file "+path,
				"Check the file is valid YAML")
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config",
			"Check the value types in "+displayPath(path))
	}

	if err := ValidateSettings(s); err != nil {
		return Settings{}, "", err
	}

	return s, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := DefaultSettings()
	v.SetDefault("region", d.Region)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("port", d.Port)
	v.SetDefault("inventory", d.Inventory)
	v.SetDefault("plugin_path", d.PluginPath)
	v.SetDefault("min_cli_version", d.MinCLIVersion)
	v.SetDefault("aws_cli", d.AWSCLI)
	v.SetDefault("auto_install", d.AutoInstall)
	return v
}

func displayPath(path string) string {
	if path == "" {
		return "the environment"
	}
	return path
}
