// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Types beyond the native JSON types are spelled as one-member objects whose
// key names the type, for example:
//
//	{"$numberLong": 5}
//	{"$dateDay": "2015-01-21"}
//	{"$interval": "2d3600000ms"}
//
// The literal keys are fixed and stable. See the package documentation for
// the complete table.
const (
	KeyByte      = "$numberByte"
	KeyShort     = "$numberShort"
	KeyInt       = "$numberInt"
	KeyLong      = "$numberLong"
	KeyFloat     = "$numberFloat"
	KeyDouble    = "$numberDouble"
	KeyDecimal   = "$decimal"
	KeyDate      = "$dateDay"
	KeyTime      = "$time"
	KeyTimestamp = "$date"
	KeyInterval  = "$interval"
	KeyBinary    = "$binary"
)

var literalTags = map[string]Tag{
	KeyByte:      TagByte,
	KeyShort:     TagShort,
	KeyInt:       TagInt,
	KeyLong:      TagLong,
	KeyFloat:     TagFloat,
	KeyDouble:    TagDouble,
	KeyDecimal:   TagDecimal,
	KeyDate:      TagDate,
	KeyTime:      TagTime,
	KeyTimestamp: TagTimestamp,
	KeyInterval:  TagInterval,
	KeyBinary:    TagBinary,
}

// IsLiteralKey reports whether key is reserved to spell a typed literal.
// A map whose first key is reserved is decoded as a scalar, so writers refuse
// to emit such a key at the front of a map.
func IsLiteralKey(key string) bool { _, ok := literalTags[key]; return ok }

// scalar holds the payload of a scalar event. Only the field selected by the
// event tag is meaningful.
type scalar struct {
	b   bool
	num int64   // byte, short, int, long; also time of day
	flt float64 // float, double
	str string
	bin []byte
	dec decimal.Decimal
	dt  Date
	ts  time.Time
	iv  Interval
}

// decodeLiteral decodes the payload of a typed literal of the given tag, whose
// token is current in s.
func decodeLiteral(tag Tag, s *Scanner) (scalar, error) {
	tok := s.Token()
	var out scalar
	var err error
	switch tag {
	case TagByte, TagShort, TagInt, TagLong:
		out.num, err = literalInt(s)
		if err == nil {
			err = checkWidth(tag, out.num)
		}

	case TagFloat, TagDouble:
		out.flt, err = literalFloat(s)
		if err == nil && tag == TagFloat {
			var f float32
			f, err = ConvertFloat(out.flt)
			out.flt = float64(f)
		}

	case TagDecimal:
		if tok != String && tok != Integer && tok != Number {
			return out, fmt.Errorf("want string or number, got %v", tok)
		}
		text := string(s.Text())
		if tok == String {
			text, err = s.Unquote()
			if err != nil {
				return out, err
			}
		}
		out.dec, err = decimal.NewFromString(text)

	case TagDate:
		var text string
		if text, err = literalString(s); err == nil {
			out.dt, err = ParseDate(text)
		}

	case TagTime:
		if tok == Integer {
			out.num, err = s.Int64()
			if err == nil && !TimeOfDay(out.num).IsValid() {
				err = fmt.Errorf("time of day %d out of range", out.num)
			}
			break
		}
		var text string
		var tod TimeOfDay
		if text, err = literalString(s); err == nil {
			tod, err = ParseTime(text)
			out.num = int64(tod)
		}

	case TagTimestamp:
		if tok == Integer {
			var ms int64
			if ms, err = s.Int64(); err == nil {
				out.ts, err = checkTimestamp(time.UnixMilli(ms))
			}
			break
		}
		var text string
		if text, err = literalString(s); err == nil {
			out.ts, err = ParseTimestamp(text)
		}

	case TagInterval:
		if tok == Integer {
			var ms int64
			ms, err = s.Int64()
			out.iv = Interval{ms: ms}
			break
		}
		var text string
		if text, err = literalString(s); err == nil {
			out.iv, err = ParseInterval(text)
		}

	case TagBinary:
		var text string
		if text, err = literalString(s); err == nil {
			out.bin, err = base64.StdEncoding.DecodeString(text)
		}

	default:
		panic("unexpected literal tag " + tag.String())
	}
	return out, err
}

func literalString(s *Scanner) (string, error) {
	if s.Token() != String {
		return "", fmt.Errorf("want string, got %v", s.Token())
	}
	return s.Unquote()
}

func literalInt(s *Scanner) (int64, error) {
	switch s.Token() {
	case Integer:
		return s.Int64()
	case String:
		text, err := s.Unquote()
		if err != nil {
			return 0, err
		}
		return strconv.ParseInt(text, 10, 64)
	}
	return 0, fmt.Errorf("want integer, got %v", s.Token())
}

func literalFloat(s *Scanner) (float64, error) {
	switch s.Token() {
	case Integer, Number:
		return s.Float64()
	case String:
		text, err := s.Unquote()
		if err != nil {
			return 0, err
		}
		switch text {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(text, 64)
	}
	return 0, fmt.Errorf("want number, got %v", s.Token())
}

// checkWidth reports whether v fits the integer tag.
func checkWidth(tag Tag, v int64) error {
	var err error
	switch tag {
	case TagByte:
		_, err = ConvertInt[int8](v)
	case TagShort:
		_, err = ConvertInt[int16](v)
	case TagInt:
		_, err = ConvertInt[int32](v)
	}
	return err
}

// appendDouble appends the encoding of a finite double that a reader will
// decode as a double: the text always has a fraction or an exponent.
func appendDouble(buf []byte, v float64) []byte {
	// Mirror encoding/json: use exponent form only for very large or very
	// small magnitudes.
	format := byte('f')
	if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(buf)
	buf = strconv.AppendFloat(buf, v, format, -1, 64)
	for _, b := range buf[start:] {
		if b == '.' || b == 'e' {
			return buf
		}
	}
	return append(buf, '.', '0')
}

// nonFinite returns the spelling of a NaN or infinite value.
func nonFinite(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case v > 0:
		return "Infinity"
	default:
		return "-Infinity"
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
