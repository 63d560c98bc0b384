package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ekisa-team/arniepye/internal/env"
	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

type options struct {
	writer    io.Writer
	logFile   string
	verbosity int
	logToFile bool
}

// Option configures the logger.
type Option func(*options)

// WithLogToFile enables the JSON log file in addition to the console.
func WithLogToFile(enabled bool) Option {
	return func(o *options) {
		o.logToFile = enabled
	}
}

// WithLogFile sets the path of the rotating log file.
func WithLogFile(path string) Option {
	return func(o *options) {
		o.logFile = path
	}
}

// WithVerbosity sets the console verbosity (number of -v flags).
//
//	0: info and above, message only; warnings and errors show their level
//	1: debug and above, with level
//	2: adds timestamps
//	3: adds source location
func WithVerbosity(n int) Option {
	return func(o *options) {
		o.verbosity = n
	}
}

// WithWriter sets the console writer (stderr by default).
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New builds the application logger for the given environment.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	o := &options{
		writer:  os.Stderr,
		logFile: "arniepye.log",
	}
	for _, opt := range opts {
		opt(o)
	}

	handler := consoleHandler(environment, o)

	if o.logToFile && o.logFile != "" {
		file := &lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = NewTeeHandler(handler, fileHandler)
	}

	return slog.New(handler)
}

func consoleHandler(environment env.Environment, o *options) slog.Handler {
	level := slog.LevelInfo
	if o.verbosity >= 1 || environment.IsDevelopment() {
		level = slog.LevelDebug
	}

	showTime := o.verbosity >= 2
	showLevel := o.verbosity >= 1

	return tint.NewHandler(o.writer, &tint.Options{
		Level:      level,
		AddSource:  o.verbosity >= 3,
		TimeFormat: time.DateTime,
		NoColor:    !environment.IsDevelopment(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}

			switch a.Key {
			case slog.TimeKey:
				if !showTime {
					return slog.Attr{}
				}
			case slog.LevelKey:
				if lvl, ok := a.Value.Any().(slog.Level); ok && !showLevel && lvl <= slog.LevelInfo {
					return slog.Attr{}
				}
			}

			return a
		},
	})
}
