package blog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger. format is "console" (human readable, for
// local builds) or "json".
func NewLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return nil, fmt.Errorf("blog: log level %q: %w", level, err)
	}

	var conf zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		conf.DisableStacktrace = true
	case "json":
		conf = zap.NewProductionConfig()
		conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("blog: unsupported log format %q", format)
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	return conf.Build()
}
