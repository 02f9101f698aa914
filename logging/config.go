package logging

import (
	"strings"

	"github.com/hupe1980/meshcore/config"
	"github.com/hupe1980/meshcore/errors"
)

// NewFromConfig builds the Logger selected by cfg.Backend ("slog" or "zap").
func NewFromConfig(cfg config.LogConfig) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Backend) {
	case "", "slog":
		return NewSlogLogger(level, strings.ToLower(cfg.Format), false), nil
	case "zap":
		zl, err := NewZapLogger(level, strings.ToLower(cfg.Format))
		if err != nil {
			return nil, err
		}
		return zl, nil
	default:
		return nil, errors.Newf("unknown log backend %q", cfg.Backend)
	}
}
