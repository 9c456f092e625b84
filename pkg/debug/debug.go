// Package debug wires trackr's logging.
//
// Init builds the process-wide zap logger from the log config; commands
// then log through zap.L() with typed fields. The helpers below are the
// verbose channel: they are no-ops unless debug logging is on, which is the
// case when the level is "debug" or the TRACKR_DEBUG environment variable
// is set:
//
//	TRACKR_DEBUG=1 trackr render --entity World -o chart.svg
//
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    debug.Log("processing %d records", count)
//	}
package debug

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding of the logger.
type Config struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // json or console
}

var (
	enabled atomic.Bool
	sugar   atomic.Pointer[zap.SugaredLogger]
)

func init() {
	if os.Getenv("TRACKR_DEBUG") != "" {
		enabled.Store(true)
	}
}

// Init builds a zap logger from cfg and installs it as the global logger.
func Init(cfg Config) error {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.Format, "json") {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.OutputPaths = []string{"stderr"}

	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	if enabled.Load() {
		level = zapcore.DebugLevel
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	if level == zapcore.DebugLevel {
		enabled.Store(true)
	}
	sugar.Store(logger.Sugar())
	return nil
}

// Sync flushes the global logger.
func Sync() {
	_ = zap.L().Sync()
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled.Store(e)
}

func logger() *zap.SugaredLogger {
	if s := sugar.Load(); s != nil {
		return s
	}
	return zap.S()
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled.Load() {
		return
	}
	logger().Debugf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	logger().Debugw("timing", "op", name, "elapsed", d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("myFunc")()
func LogEnterExit(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	logger().Debugf("-> %s", name)
	start := time.Now()
	return func() {
		logger().Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled.Load() {
		return
	}
	logger().Debugf("%s: %T = %+v", name, v, v)
}
