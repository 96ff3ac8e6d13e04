package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the zap logger.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	Level       string
}

// New builds a structured zap.Logger.
func New(cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "json"
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{}
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		fields = append(fields, zap.String("service", name))
	}
	if env := strings.TrimSpace(cfg.Environment); env != "" {
		fields = append(fields, zap.String("environment", env))
	}
	if version := strings.TrimSpace(cfg.Version); version != "" {
		fields = append(fields, zap.String("version", version))
	}
	logger = logger.With(fields...)

	zap.ReplaceGlobals(logger)
	return logger, nil
}
