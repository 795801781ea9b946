// Package statuslog is the shared status log every tool run reports to.
// It wraps a zap sugared logger whose level can be changed at runtime and
// which can optionally be mirrored to a file.
package statuslog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level constants
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	MessageKey:     "msg",
	NameKey:        "logger",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// Logger is the status log. The zero value is not usable; use New or Nop.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
	file  *os.File
	mu    sync.Mutex
}

// New creates a status log writing human-readable lines to out. When
// filePath is set every entry is also appended to that file as JSON.
func New(level string, out io.Writer, filePath string) (*Logger, error) {
	atomic := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := setLevel(atomic, level); err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(zapcore.AddSync(out)), atomic),
	}

	var file *os.File
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("could not open status log: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(f), atomic))
	}

	return &Logger{
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
		level: atomic,
		file:  file,
	}, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{
		sugar: zap.NewNop().Sugar(),
		level: zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}

// SetLevel changes the minimum level at runtime.
// Valid levels are: "debug", "info", "warn", "error"
func (l *Logger) SetLevel(level string) error {
	return setLevel(l.level, level)
}

func setLevel(atomic zap.AtomicLevel, level string) error {
	switch strings.ToLower(level) {
	case LevelDebug:
		atomic.SetLevel(zapcore.DebugLevel)
	case LevelInfo, "":
		atomic.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		atomic.SetLevel(zapcore.WarnLevel)
	case LevelError:
		atomic.SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}

// Trace records that a tool is about to run
func (l *Logger) Trace(command string, args []string) {
	l.sugar.Info(strings.Join(append([]string{"Running tool:", command}, args...), " "))
}

// Debugf logs at debug level
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Infof logs at info level
func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warnf logs at warn level
func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Errorf logs at error level
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Close flushes buffered entries and closes the mirror file, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.sugar.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
