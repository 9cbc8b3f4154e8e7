package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Output targets accepted by Options.Output.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
)

// Options describes a logrus logger. Level and Format are matched case-insensitively.
type Options struct {
	Level  string
	Format string
	// Output is "stderr" (the default), "stdout" or a file path opened for appending.
	Output string
	// Writer overrides Output when set.
	Writer io.Writer
}

// NewLogrusLogger builds a configured logrus.Logger. An unknown level falls back to
// info with a warning; any format other than "json" is text with full timestamps.
// An output file that cannot be opened falls back to stderr.
func NewLogrusLogger(opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(resolveOutput(opts, logger))

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", opts.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func resolveOutput(opts Options, logger *logrus.Logger) io.Writer {
	if opts.Writer != nil {
		return opts.Writer
	}
	switch target := strings.TrimSpace(opts.Output); strings.ToLower(target) {
	case "", OutputStderr:
		return os.Stderr
	case OutputStdout:
		return os.Stdout
	default:
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.SetOutput(os.Stderr)
			logger.Warnf("Cannot open log file '%s', logging to stderr: %v", target, err)
			return os.Stderr
		}
		return f
	}
}

// LogrusAdapter implements Logger on top of a logrus entry.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter builds a stderr Logger for the given level and format.
func NewLogrusAdapter(level, format string) Logger {
	return NewLogrusAdapterFromLogger(NewLogrusLogger(Options{Level: level, Format: format}))
}

// NewLogrusAdapterFromLogger wraps an already configured logrus.Logger.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{logger: logger, entry: logrus.NewEntry(logger)}
}

func (l *LogrusAdapter) derive(entry *logrus.Entry) Logger {
	return &LogrusAdapter{logger: l.logger, entry: entry}
}

func (l *LogrusAdapter) at(fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(convertFields(fields))
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) { l.at(fields).Debug(msg) }

func (l *LogrusAdapter) Info(msg string, fields ...Field) { l.at(fields).Info(msg) }

func (l *LogrusAdapter) Warn(msg string, fields ...Field) { l.at(fields).Warn(msg) }

func (l *LogrusAdapter) Error(msg string, fields ...Field) { l.at(fields).Error(msg) }

// Fatal logs and exits the process.
func (l *LogrusAdapter) Fatal(msg string, fields ...Field) { l.at(fields).Fatal(msg) }

// Fatalf logs a formatted message and exits the process.
func (l *LogrusAdapter) Fatalf(msg string, args ...interface{}) { l.entry.Fatalf(msg, args...) }

func (l *LogrusAdapter) WithError(err error) Logger { return l.derive(l.entry.WithError(err)) }

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return l.derive(l.entry.WithField(key, value))
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return l.derive(l.at(fields))
}

func convertFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
