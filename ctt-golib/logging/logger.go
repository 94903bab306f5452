package logging

import (
	"os"

	"github.com/kiteco/ctt/ctt-golib/envutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is configured with datetime, caller information,
// and splits output to stdout and stderr based on error level.
var Logger *zap.Logger

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func init() {
	if lvl := envutil.GetenvDefault("CTT_LOG_LEVEL", ""); lvl != "" {
		SetLevel(lvl)
	}

	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && level.Enabled(lvl)
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && level.Enabled(lvl)
	})
	stdoutWriter := zapcore.Lock(os.Stdout)
	stderrWriter := zapcore.Lock(os.Stderr)

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(config)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, stderrWriter, isErrorLevel),
		zapcore.NewCore(encoder, stdoutWriter, isInfoLevel),
	)
	Logger = zap.New(core, zap.AddCaller())
}

// SetLevel changes the minimum level that is written. Unknown names leave the
// level unchanged and return false.
func SetLevel(name string) bool {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return false
	}
	level.SetLevel(lvl)
	return true
}

// Named returns a child of Logger tagged with the given component name.
func Named(component string) *zap.Logger {
	return Logger.Named(component)
}
