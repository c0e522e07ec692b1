// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"io"
	"log/slog"
)

// Options control the behavior of readers and streams. A nil *Options is
// ready for use and provides default values.
type Options struct {
	// If true, accept C++ style line and block comments between tokens.
	AllowComments bool

	// If true, accept a trailing comma after the last member of a map or the
	// last element of an array.
	AllowTrailingCommas bool

	// If set, lifecycle events are logged here. If nil, slog.Default is used.
	// Only debug and warning records are emitted.
	Logger *slog.Logger
}

func (o *Options) allowComments() bool { return o != nil && o.AllowComments }

func (o *Options) trailingCommas() bool { return o != nil && o.AllowTrailingCommas }

// Log returns the logger selected by o.
func (o *Options) Log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// NewScanner returns a scanner for r configured according to o.
func (o *Options) NewScanner(r io.Reader) *Scanner {
	s := NewScanner(r)
	s.AllowComments(o.allowComments())
	return s
}
