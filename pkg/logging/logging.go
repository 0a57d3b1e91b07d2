// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// pkg/logging/logging.go
package logging

import (
	"bytes"
	"fmt"
	"io"
	stdLog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// logWriter stores the current log writer globally
	logWriter io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
)

// Options controls the global logger.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // text | json
	File   string    // optional; appended to in addition to Out
	Out    io.Writer // defaults to os.Stdout
}

// ConfigureGlobalLogging configures the global zerolog logger. It returns a
// closer for the log file, if one was opened.
func ConfigureGlobalLogging(opts Options) (io.Closer, error) {
	level := parseLogLevel(opts.Level)

	base := opts.Out
	if base == nil {
		base = os.Stdout
	}
	out := base
	if strings.EqualFold(opts.Format, "text") || opts.Format == "" {
		out = zerolog.ConsoleWriter{Out: base, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
		closer = f
	}

	SetLogWriter(out)
	ConfigureGlobal(level)
	return closer, nil
}

// ConfigureGlobal sets the global level and rebuilds log.Logger on the
// current writer.
func ConfigureGlobal(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)

	logContext := zerolog.New(getLogWriter()).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	// Route stray stdlib log output (e.g. from SDKs) through zerolog.
	stdLog.SetFlags(0)
	stdLog.SetOutput(NewLineWriter(log.Logger, zerolog.DebugLevel))
}

// NewLogger returns a logger for a component on the global writer.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, getLogWriter())
}

// NewLoggerWithWriter returns a component logger writing to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Str("component", component).Logger()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelString string) zerolog.Level {
	if levelString == "" {
		levelString = "info"
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to info level.")
		return zerolog.InfoLevel
	}
	return level
}

// getLogWriter returns the configured log writer
func getLogWriter() io.Writer {
	return logWriter
}

// SetLogWriter sets the global log writer
func SetLogWriter(w io.Writer) {
	logWriter = w
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LineWriter turns a byte stream (a child process's output, stdlib log
// output) into one log event per line.
type LineWriter struct {
	mu     sync.Mutex
	logger zerolog.Logger
	level  zerolog.Level
	buf    bytes.Buffer
}

// NewLineWriter returns a LineWriter logging at level.
func NewLineWriter(logger zerolog.Logger, level zerolog.Level) *LineWriter {
	return &LineWriter{logger: logger, level: level}
}

// Write implements io.Writer. Incomplete lines are held until the next
// newline or Close.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line: put it back for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
	return nil
}

func (w *LineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	w.logger.WithLevel(w.level).Msg(line)
}
