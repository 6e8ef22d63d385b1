package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/nulzo/prism-fanout/internal/cli"
	"github.com/nulzo/prism-fanout/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines the configuration for the logger.
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, console
	EnableColor bool   // only honoured in console mode
}

var (
	global *zap.Logger
	// helpers skips one frame for the package level functions below
	helpers *zap.Logger
	once    sync.Once
)

// FromConfig starts from the file/env config and lets LOG_LEVEL, LOG_FORMAT,
// LOG_COLOR and NO_COLOR win.
func FromConfig(cfg config.LogConfig) Config {
	return Config{
		Level:       envOr("LOG_LEVEL", orDefault(cfg.Level, "info")),
		Format:      envOr("LOG_FORMAT", orDefault(cfg.Format, "console")),
		EnableColor: colorWanted(),
	}
}

// Initialize sets up the global logger. Only the first call has an effect.
func Initialize(cfg Config) {
	once.Do(func() {
		global, _ = New(cfg, zapcore.Lock(os.Stdout))
		helpers = global.WithOptions(zap.AddCallerSkip(1))
	})
}

// New builds a logger writing to out. The returned level can be changed at
// runtime.
func New(cfg Config, out zapcore.WriteSyncer) (*zap.Logger, zap.AtomicLevel) {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(enc)
	} else {
		enc.EncodeCaller = zapcore.ShortCallerEncoder
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		if cfg.EnableColor {
			enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = newHighlightEncoder(enc)
		} else {
			encoder = zapcore.NewConsoleEncoder(enc)
		}
	}
	cli.SetEnabled(cfg.EnableColor && cfg.Format != "json")

	lvl := zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	opts := []zap.Option{zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if lvl.Level() == zapcore.DebugLevel {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(zapcore.NewCore(encoder, out, lvl), opts...), lvl
}

// Get returns the global logger, initializing it from the environment when
// nothing called Initialize first.
func Get() *zap.Logger {
	Initialize(FromConfig(config.LogConfig{}))
	return global
}

func Debug(msg string, fields ...zap.Field) {
	Get()
	helpers.Debug(msg, fields...)
}

func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}

// Presence logs whether a secret is set, never its value.
func Presence(key, secret string) zap.Field {
	return zap.Bool(key, secret != "")
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return strings.ToLower(v)
	}
	return fallback
}

func orDefault(v, d string) string {
	if v == "" {
		return d
	}
	return strings.ToLower(v)
}

func parseLevel(lvl string) zapcore.Level {
	l, err := zapcore.ParseLevel(strings.ToLower(lvl))
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// colorWanted honours NO_COLOR (https://no-color.org/) and LOG_COLOR.
func colorWanted() bool {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return false
	}
	if v := os.Getenv("LOG_COLOR"); v != "" {
		return v == "true" || v == "1"
	}
	return true
}
