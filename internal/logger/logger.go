// Package logger provides structured logging using Zap.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Config controls how the process logger is built.
type Config struct {
	// Env selects the encoder: "production" logs JSON, anything else logs
	// human-readable console lines.
	Env string
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File, when set, tees every entry into a rotated log file.
	File string
}

// Init initializes the global logger. Later calls are no-ops.
func Init(cfg Config) {
	once.Do(func() {
		sugar = buildWithFallback(cfg, os.Stderr).Sugar()
	})
}

// buildWithFallback retries at info level when cfg cannot be built, so a
// bad level never silences the process.
func buildWithFallback(cfg Config, stderr io.Writer) *zap.Logger {
	base, err := build(cfg)
	if err == nil {
		return base
	}
	fmt.Fprintf(stderr, "logger: %v; falling back to info level\n", err)
	cfg.Level = "info"
	if base, err = build(cfg); err != nil {
		fmt.Fprintf(stderr, "logger: %v; logging disabled\n", err)
		return zap.NewNop()
	}
	return base
}

// New builds a standalone logger without touching the global one.
func New(cfg Config) (*zap.SugaredLogger, error) {
	base, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return base.Sugar(), nil
}

func build(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, err
	}

	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if cfg.Env == "production" {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:  cfg.File,
			MaxSize:   50, // MB
			MaxAge:    30, // days
			Compress:  true,
			LocalTime: true,
		}
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init(Config{Env: "development"})
	}
	return sugar
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
