// Package logging provides the structured, context-aware logger used
// across this service's binaries and packages. It wraps logrus with
// an output splitter (errors to stderr, everything else to stdout, so
// container log collectors can treat the streams differently) and a
// ContextLogger that accumulates fields across calls the way a
// request handler accumulates context as it descends into helpers.
//
// Grounded on the corpus's common/logger.go (ContextLogger,
// WithField/WithFields/WithError chaining) and common/logging.go
// (OutputSplitter, the global pre-configured Logger).
package logging

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"eventlog.dev/service/ambient"
)

// Level is the minimum severity a Logger will emit.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config controls how New builds a logrus.Logger.
type Config struct {
	Level      Level
	JSON       bool
	Service    string
	TimeFormat string
}

// DefaultConfig returns JSON-formatted, info-level output tagged with
// the given service name, matching production defaults; development
// builds can override Level/JSON.
func DefaultConfig(service string) Config {
	return Config{
		Level:      LevelInfo,
		JSON:       true,
		Service:    service,
		TimeFormat: time.RFC3339,
	}
}

// OutputSplitter routes formatted log lines to stderr when they carry
// an error level and stdout otherwise, so container platforms can
// apply different handling (alerting, retention) per stream.
type OutputSplitter struct{}

func (OutputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) || bytes.Contains(p, []byte(`"level":"error"`)) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// New builds a logrus.Logger per cfg, routed through OutputSplitter.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()

	switch cfg.Level {
	case LevelDebug:
		logger.SetLevel(logrus.DebugLevel)
	case LevelWarn:
		logger.SetLevel(logrus.WarnLevel)
	case LevelError:
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timeFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: timeFormat, FullTimestamp: true})
	}
	logger.SetOutput(OutputSplitter{})

	return logger
}

// ContextLogger accumulates structured fields across a chain of
// WithField/WithFields/WithError/WithContext calls; each call returns
// a new ContextLogger, leaving the receiver untouched, so a base
// logger can be shared and specialized per call site without data
// races.
type ContextLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// NewContextLogger wraps logger (or logrus.StandardLogger() if nil)
// with the given base fields.
func NewContextLogger(logger *logrus.Logger, fields logrus.Fields) *ContextLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	base := make(logrus.Fields, len(fields))
	for k, v := range fields {
		base[k] = v
	}
	return &ContextLogger{logger: logger, fields: base}
}

// ServiceLogger builds a ContextLogger pre-tagged with the service name.
func ServiceLogger(logger *logrus.Logger, service string) *ContextLogger {
	return NewContextLogger(logger, logrus.Fields{"service": service})
}

func (cl *ContextLogger) with(fields logrus.Fields) *ContextLogger {
	merged := make(logrus.Fields, len(cl.fields)+len(fields))
	for k, v := range cl.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ContextLogger{logger: cl.logger, fields: merged}
}

// WithField returns a ContextLogger with one additional field.
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	return cl.with(logrus.Fields{key: value})
}

// WithFields returns a ContextLogger with the given fields merged in.
func (cl *ContextLogger) WithFields(fields logrus.Fields) *ContextLogger {
	return cl.with(fields)
}

// WithError attaches an error field.
func (cl *ContextLogger) WithError(err error) *ContextLogger {
	if err == nil {
		return cl
	}
	return cl.with(logrus.Fields{"error": err.Error()})
}

// WithContext attaches the ambient correlation/trace/span identifiers
// carried on ctx, when present, so a log line can be joined back to
// the event stream it was emitted alongside.
func (cl *ContextLogger) WithContext(ctx context.Context) *ContextLogger {
	v, ok := ambient.FromContext(ctx)
	if !ok {
		return cl
	}
	fields := logrus.Fields{}
	if v.CorrelationID != "" {
		fields["correlation_id"] = v.CorrelationID
	}
	if v.TraceID != "" {
		fields["trace_id"] = v.TraceID
	}
	if v.SpanID != "" {
		fields["span_id"] = v.SpanID
	}
	if v.BatchID != "" {
		fields["batch_id"] = v.BatchID
	}
	return cl.with(fields)
}

func (cl *ContextLogger) Debug(msg string) { cl.logger.WithFields(cl.fields).Debug(msg) }
func (cl *ContextLogger) Info(msg string)  { cl.logger.WithFields(cl.fields).Info(msg) }
func (cl *ContextLogger) Warn(msg string)  { cl.logger.WithFields(cl.fields).Warn(msg) }
func (cl *ContextLogger) Error(msg string) { cl.logger.WithFields(cl.fields).Error(msg) }

func (cl *ContextLogger) Debugf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Debugf(format, args...)
}
func (cl *ContextLogger) Infof(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Infof(format, args...)
}
func (cl *ContextLogger) Warnf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Warnf(format, args...)
}
func (cl *ContextLogger) Errorf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Errorf(format, args...)
}
