// Package logging provides the structured JSON logger used across docvault.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper of zap.SugaredLogger.
type Logger = *zap.SugaredLogger

// ParseLevel maps "debug", "info", "warn", "error", "panic" or "fatal" to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "panic":
		return zapcore.PanicLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// New creates a JSON logger writing to stdout with timestamps in loc.
func New(level string, loc *time.Location) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewWithWriter(os.Stdout, lvl, loc), nil
}

// NewWithWriter creates a JSON logger writing one object per line to w.
func NewWithWriter(w io.Writer, level zapcore.Level, loc *time.Location) Logger {
	if loc == nil {
		loc = time.UTC
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig(loc)),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel)).Sugar()
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

func encoderConfig(loc *time.Location) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "component",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
		},
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
}
