// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

var (
	errIncomplete = errors.New("incomplete escape sequence")
	errShortUTF   = errors.New("incomplete Unicode escape")
)

// simpleEsc maps the byte following a backslash to its decoded value, for
// escapes that stand for a single byte.
var simpleEsc = [...]byte{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// Unquote decodes the contents of a JSON string, which must have the
// enclosing double quotation marks already removed.
func Unquote(src mem.RO) ([]byte, error) {
	return AppendUnquoted(make([]byte, 0, src.Len()), src)
}

// AppendUnquoted appends the decoded form of src to buf and returns the
// extended slice. Invalid escapes decode as the Unicode replacement rune.
// A \u escape holding a UTF-16 surrogate pair decodes as one rune.
// It reports an error if src ends inside an escape sequence.
func AppendUnquoted(buf []byte, src mem.RO) ([]byte, error) {
	for {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(buf, src), nil
		}
		buf = mem.Append(buf, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errIncomplete
		}

		c := src.At(0)
		if c != 'u' {
			if int(c) < len(simpleEsc) && simpleEsc[c] != 0 {
				buf = append(buf, simpleEsc[c])
				src = src.SliceFrom(1)
			} else {
				// Skip the whole rune, which may be multi-byte.
				_, n := mem.DecodeRune(src)
				buf = utf8.AppendRune(buf, utf8.RuneError)
				src = src.SliceFrom(max(n, 1))
			}
			continue
		}

		if src.Len() < 5 {
			return nil, errShortUTF
		}
		r, ok := parseHex(src.SliceFrom(1).SliceTo(4))
		src = src.SliceFrom(5)
		if !ok {
			buf = utf8.AppendRune(buf, utf8.RuneError)
			continue
		}
		if utf16.IsSurrogate(r) && src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
			if lo, ok := parseHex(src.SliceFrom(2).SliceTo(4)); ok {
				if p := utf16.DecodeRune(r, lo); p != utf8.RuneError {
					buf = utf8.AppendRune(buf, p)
					src = src.SliceFrom(6)
					continue
				}
			}
		}
		buf = utf8.AppendRune(buf, r) // a lone surrogate becomes U+FFFD
	}
}

// parseHex decodes four hexadecimal digits.
func parseHex(data mem.RO) (rune, bool) {
	var v rune
	for i := range data.Len() {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += rune(b - '0')
		case 'a' <= b && b <= 'f':
			v += rune(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += rune(b - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}
