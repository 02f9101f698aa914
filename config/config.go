// Package config loads meshcore runtime settings with viper. Values come from
// built-in defaults, an optional config file and MESHCORE_* environment
// variables, in increasing order of precedence.
package config

import (
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/meshcore/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// MESHCORE_MAIL_REFRESH_INTERVAL=250ms.
const EnvPrefix = "MESHCORE"

// Config is the root configuration.
type Config struct {
	Identifier IdentifierConfig `mapstructure:"identifier"`
	Mail       MailConfig       `mapstructure:"mail"`
	Log        LogConfig        `mapstructure:"log"`
}

// IdentifierConfig controls identifier generation.
type IdentifierConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// MailConfig controls the mail router.
type MailConfig struct {
	// RefreshInterval is the pause between collect/deliver rounds.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// LogConfig selects the logging backend.
type LogConfig struct {
	Level   string `mapstructure:"level"`   // debug, info, warn, error
	Format  string `mapstructure:"format"`  // json or text
	Backend string `mapstructure:"backend"` // slog or zap
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode; reaching this is a programming error.
		panic(err)
	}

	return *cfg
}

// Load reads defaults and environment overrides.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	return LoadWithViper(v)
}

// LoadWithViper decodes configuration from a prepared viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

// LoadFromFile reads a config file on top of the defaults. The format follows
// the file extension (toml, yaml, json).
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	return cfg, nil
}

var (
	levels   = []string{"debug", "info", "warn", "error"}
	formats  = []string{"json", "text"}
	backends = []string{"slog", "zap"}
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Mail.RefreshInterval <= 0 {
		return errors.Newf("mail.refresh_interval must be > 0, got %s", c.Mail.RefreshInterval)
	}

	if !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		return errors.WithHintf(errors.Newf("log.level %q is not supported", c.Log.Level), "use one of %v", levels)
	}

	if !slices.Contains(formats, strings.ToLower(c.Log.Format)) {
		return errors.WithHintf(errors.Newf("log.format %q is not supported", c.Log.Format), "use one of %v", formats)
	}

	if !slices.Contains(backends, strings.ToLower(c.Log.Backend)) {
		return errors.WithHintf(errors.Newf("log.backend %q is not supported", c.Log.Backend), "use one of %v", backends)
	}

	return nil
}
