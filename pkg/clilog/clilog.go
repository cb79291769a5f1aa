// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clilog builds the logger used by ac.
package clilog

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Verbose lowers the level from Warn to Debug.
	Verbose bool
	// File, if set, also receives every record, rotated by size.
	File string
	// Stderr is the terminal destination. Nil disables it.
	Stderr io.Writer
}

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// New returns a logger and a function that closes the log file, if any.
func New(opts Options) (*slog.Logger, func() error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var writers []io.Writer
	if opts.Stderr != nil {
		writers = append(writers, opts.Stderr)
	}
	closeFn := func() error { return nil }
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		writers = append(writers, lj)
		closeFn = lj.Close
	}
	if len(writers) == 0 {
		return slog.New(slog.DiscardHandler), closeFn
	}
	h := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return slog.New(h), closeFn
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or Discard if l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
