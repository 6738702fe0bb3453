// Package logging builds the process logger.
//
// Every entry goes to the configured output. Warnings and errors are also
// appended to an error file, which is the place to look after a player reports
// something odd: "no ammo", failed reloads, pool exhaustion.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tomz197/driftfield/internal/config"
)

// New builds a zap logger from cfg. The returned cleanup flushes the logger
// and closes the error file.
func New(cfg config.LoggingConfig) (*zap.Logger, func(), error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if isTerminalOutput(cfg.Output) {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.Output != "" {
		if err := ensureDir(cfg.Output); err != nil {
			return nil, nil, err
		}
		zapCfg.OutputPaths = []string{cfg.Output}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	if cfg.ErrorFile == "" {
		return logger, func() { _ = logger.Sync() }, nil
	}

	if err := ensureDir(cfg.ErrorFile); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.ErrorFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open error log %s: %w", cfg.ErrorFile, err)
	}

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	errCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(fileEnc),
		zapcore.AddSync(f),
		zapcore.WarnLevel,
	)
	logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, errCore)
	}))

	cleanup := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, cleanup, nil
}

func isTerminalOutput(out string) bool {
	return out == "" || out == "stderr" || out == "stdout"
}

func ensureDir(path string) error {
	if isTerminalOutput(path) {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir %s: %w", dir, err)
	}
	return nil
}
