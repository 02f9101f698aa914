package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/meshcore/ident"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("identifier.prefix", ident.DefaultPrefix)

	v.SetDefault("mail.refresh_interval", time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.backend", "slog")
}
