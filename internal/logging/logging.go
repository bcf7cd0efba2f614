// Package logging provides the component-tagged logger shared by every
// subsystem.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger tags each line with the subsystem that wrote it.
type Logger interface {
	Debugf(component string, format string, args ...interface{})
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Debugf(component, format string, args ...interface{}) {}
func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// SlogLogger forwards to a *slog.Logger with a "component" attribute.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	return SlogLogger{l: l}
}

// NewTextLogger writes text records at or above level to w.
func NewTextLogger(w io.Writer, level slog.Level) SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func (s SlogLogger) Slog() *slog.Logger { return s.l }

func (s SlogLogger) Debugf(component, format string, args ...interface{}) {
	s.log(slog.LevelDebug, component, format, args...)
}

func (s SlogLogger) Infof(component, format string, args ...interface{}) {
	s.log(slog.LevelInfo, component, format, args...)
}

func (s SlogLogger) Errorf(component, format string, args ...interface{}) {
	s.log(slog.LevelError, component, format, args...)
}

func (s SlogLogger) log(level slog.Level, component, format string, args ...interface{}) {
	ctx := context.Background()
	// Skip formatting entirely when the level is off.
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, fmt.Sprintf(format, args...), slog.String("component", component))
}

// ParseLevel accepts debug, info, warn and error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
