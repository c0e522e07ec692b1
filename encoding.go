// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"bytes"
	"errors"
	"io"

	"github.com/creachadair/jrecord/internal/escape"
	"github.com/tailscale/hujson"
	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	q := escape.Quote(mem.S(src))
	return `"` + string(q) + `"`
}

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Invalid escapes are replaced by the Unicode replacement rune. Unquote
// reports an error for an incomplete escape sequence.
func Unquote(src []byte) ([]byte, error) {
	if len(src) < 2 || src[0] != '"' || src[len(src)-1] != '"' {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.B(src[1 : len(src)-1]))
}

// Standardize reads a single HuJSON (JSON With Commas and Comments) document
// from r and returns a reader for the equivalent standard JSON. Comments are
// replaced by whitespace, so byte offsets in the result match the input.
//
// Unlike the rest of this package, Standardize reads all of r before
// returning.
func Standardize(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, &Error{Kind: MalformedInput, Message: "invalid HuJSON", err: err}
	}
	return bytes.NewReader(std), nil
}
