// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package vbalog is a small level-filtered logger, grounded on the
// Logger/Helper/Filter shape the teacher package imports as
// "github.com/saferwall/pe/log" (NewStdLogger, NewHelper, NewFilter,
// FilterLevel, LevelError).
package vbalog

import (
	"fmt"
	"io"
	"log"
)

// Level is a logging severity.
type Level int

// Severity levels, ordered least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every backend implements.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes to a standard library *log.Logger.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger builds a Logger that writes to w via the standard library.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, keyvals ...interface{}) error {
	msg := fmt.Sprint(keyvals...)
	s.l.Printf("[%s] %s", level, msg)
	return nil
}

// filter wraps a Logger and drops records below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level that passes the filter.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with level filtering.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper adds printf-style convenience methods on top of a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with printf-style convenience methods.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at debug level.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.log(LevelDebug, format, args...)
}

// Infof logs at info level.
func (h *Helper) Infof(format string, args ...interface{}) {
	h.log(LevelInfo, format, args...)
}

// Warnf logs at warn level.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.log(LevelWarn, format, args...)
}

// Errorf logs at error level.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.log(LevelError, format, args...)
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, fmt.Sprintf(format, args...))
}
