package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/tickloop/internal/config"
)

// New builds a zap logger from the logging section. Unknown levels fall back
// to info; any format other than "json" yields the colored console encoder.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	return newConfig(cfg, true).Build()
}

// ToFile is like New but writes to path instead of stderr, without colors.
// Terminal views own the screen, so their logs go to a file.
func ToFile(cfg config.LoggingConfig, path string) (*zap.Logger, error) {
	zapCfg := newConfig(cfg, false)
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}
	return zapCfg.Build()
}

func newConfig(cfg config.LoggingConfig, color bool) zap.Config {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		if color {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg
}
