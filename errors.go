// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors reported by readers, writers, and streams.
// A Kind is itself an error, so callers can test for it with errors.Is:
//
//	if errors.Is(err, jrecord.TypeMismatch) { ... }
type Kind byte

// Constants defining the error kinds.
const (
	// MalformedInput means the input violates the JSON grammar or the event
	// model. It is terminal for the reader that reported it.
	MalformedInput Kind = iota + 1

	// TypeMismatch means the caller asked for a value of a type incompatible
	// with the current event or value. The caller may retry with the correct
	// accessor.
	TypeMismatch

	// NumericOverflow means a narrowing numeric conversion did not fit.
	NumericOverflow

	// IllegalState means an operation was invoked outside its valid state.
	IllegalState

	// StreamInUse means a record stream was consumed more than once.
	StreamInUse
)

var kindStr = [...]string{
	MalformedInput:  "malformed input",
	TypeMismatch:    "type mismatch",
	NumericOverflow: "numeric overflow",
	IllegalState:    "illegal state",
	StreamInUse:     "stream in use",
}

// Error satisfies the error interface.
func (k Kind) Error() string {
	if k == 0 || int(k) >= len(kindStr) {
		return "unknown error"
	}
	return kindStr[k]
}

// Error is the concrete type of errors reported by this package and its
// subpackages. Use errors.Is with a Kind to classify an error.
type Error struct {
	Kind     Kind
	Location LineCol // the input location, if known (zero otherwise)
	Message  string

	err error
}

// Errorf constructs an *Error of the given kind with a formatted message.
// If the arguments include an error matched by a %w verb, it is wrapped.
func Errorf(kind Kind, msg string, args ...any) *Error {
	err := fmt.Errorf(msg, args...)
	return &Error{Kind: kind, Message: err.Error(), err: errors.Unwrap(err)}
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if !e.Location.IsZero() {
		fmt.Fprintf(&sb, " at %s", e.Location)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.err }
