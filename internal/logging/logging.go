// Package logging provides the structured logger injected into services and
// HTTP handlers, backed by logrus.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"buddy-server/internal/config"
)

// Fields carries structured attributes of a log entry.
type Fields = logrus.Fields

// Logger is the leveled logging capability handed to request handlers.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, err error, fields ...Fields)
	With(fields Fields) Logger
}

// diagnostic errors expose extra attributes for the error log entry.
type diagnostic interface {
	error
	Fields() map[string]any
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New builds the process logger from configuration. The returned closer
// releases the rotating log file, if one is configured.
func New(cfg config.Logging) (Logger, io.Closer, error) {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	base.SetLevel(level)

	switch cfg.Format {
	case config.FormatJSON:
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		base.SetOutput(io.MultiWriter(os.Stdout, file))
		closer = file
	} else {
		base.SetOutput(os.Stdout)
	}

	return FromLogrus(base), closer, nil
}

// FromLogrus adapts an existing logrus logger.
func FromLogrus(l *logrus.Logger) Logger {
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(msg string, fields ...Fields) {
	l.withFields(fields).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...Fields) {
	l.withFields(fields).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...Fields) {
	l.withFields(fields).Warn(msg)
}

func (l *logrusLogger) Error(msg string, err error, fields ...Fields) {
	entry := l.withFields(fields)
	if err != nil {
		entry = entry.WithError(err)
		var d diagnostic
		if errors.As(err, &d) {
			entry = entry.WithFields(d.Fields())
		}
	}
	entry.Error(msg)
}

func (l *logrusLogger) With(fields Fields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(fields)}
}

func (l *logrusLogger) withFields(fields []Fields) *logrus.Entry {
	entry := l.entry
	for _, f := range fields {
		if len(f) > 0 {
			entry = entry.WithFields(f)
		}
	}
	return entry
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type requestIDKey struct{}

// WithRequestID stores the request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ForContext scopes l to the request carried by ctx.
func ForContext(ctx context.Context, l Logger) Logger {
	if id := RequestID(ctx); id != "" {
		return l.With(Fields{"request_id": id})
	}
	return l
}
