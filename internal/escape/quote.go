// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote encodes a string to escape characters for inclusion in a JSON string.
// The result does not include the enclosing quotation marks.
func Quote(src mem.RO) []byte { return Append(make([]byte, 0, src.Len()), src) }

// Append appends the escaped form of src to buf and returns the extended
// slice. Enclosing quotation marks are not added.
func Append(buf []byte, src mem.RO) []byte {
	for src.Len() != 0 {
		// Copy runs of bytes that need no escaping in one step.
		if i := safePrefix(src); i > 0 {
			buf = mem.Append(buf, src.SliceTo(i))
			src = src.SliceFrom(i)
			continue
		}

		r, n := mem.DecodeRune(src)
		src = src.SliceFrom(n)
		if r < utf8.RuneSelf {
			if r < ' ' {
				if b := controlEsc[r]; b != 0 {
					buf = append(buf, '\\', b)
				} else {
					buf = append(buf, '\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
				}
			} else {
				buf = append(buf, '\\', byte(r)) // '\\' or '"'
			}
			continue
		}

		switch r {
		case '\ufffd': // replacement rune
			buf = append(buf, `\ufffd`...)
		case '\u2028': // line separator
			buf = append(buf, `\u2028`...)
		case '\u2029': // paragraph separator
			buf = append(buf, `\u2029`...)
		default:
			buf = utf8.AppendRune(buf, r)
		}
	}
	return buf
}

// safePrefix returns the length of the longest prefix of src consisting of
// printable ASCII bytes other than '"' and '\\'.
func safePrefix(src mem.RO) int {
	for i := 0; i < src.Len(); i++ {
		if b := src.At(i); b < ' ' || b >= utf8.RuneSelf || b == '"' || b == '\\' {
			return i
		}
	}
	return src.Len()
}
