// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord_test

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jrecord"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// render renders the current event of r and its value, if any, as a string.
func render(t *testing.T, r *jrecord.Reader, ev jrecord.Event) string {
	t.Helper()
	var v any
	var err error
	switch ev {
	case jrecord.EventFieldName:
		v, err = r.FieldName()
	case jrecord.EventBoolean:
		v, err = r.Bool()
	case jrecord.EventString:
		v, err = r.String()
	case jrecord.EventByte:
		v, err = r.Byte()
	case jrecord.EventShort:
		v, err = r.Short()
	case jrecord.EventInt:
		v, err = r.Int()
	case jrecord.EventLong:
		v, err = r.Long()
	case jrecord.EventFloat:
		v, err = r.Float()
	case jrecord.EventDouble:
		v, err = r.Double()
	case jrecord.EventDecimal:
		v, err = r.Decimal()
	case jrecord.EventDate:
		v, err = r.Date()
	case jrecord.EventTime:
		v, err = r.Time()
	case jrecord.EventTimestamp:
		var ts time.Time
		ts, err = r.Timestamp()
		v = jrecord.FormatTimestamp(ts)
	case jrecord.EventInterval:
		v, err = r.Interval()
	case jrecord.EventBinary:
		var b []byte
		b, err = r.Binary()
		v = string(b)
	default:
		return ev.String()
	}
	if err != nil {
		t.Fatalf("Reading %v value: %v", ev, err)
	}
	return fmt.Sprintf("%v %v", ev, v)
}

// readAll reads all the events of a single record from input.
func readAll(t *testing.T, input string, opts *jrecord.Options) ([]string, error) {
	t.Helper()
	r := jrecord.NewReader(strings.NewReader(input), opts)
	var got []string
	for {
		ev, err := r.Next()
		if err == io.EOF {
			if ev != jrecord.EventEOF {
				t.Errorf("Next at EOF: got %v, want %v", ev, jrecord.EventEOF)
			}
			return got, nil
		} else if err != nil {
			return got, err
		}
		if r.Depth() < 0 {
			t.Fatalf("Depth is negative: %d", r.Depth())
		}
		got = append(got, render(t, r, ev))
	}
}

func TestReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"Empty", `{}`, []string{"START_MAP", "END_MAP"}},
		{"Scalars", `{"a": null, "b": true, "c": "x\ty", "d": 5, "e": 5000000000, "f": 2.5}`, []string{
			"START_MAP",
			"FIELD_NAME a", "NULL",
			"FIELD_NAME b", "BOOLEAN true",
			"FIELD_NAME c", "STRING x\ty",
			"FIELD_NAME d", "INT 5",
			"FIELD_NAME e", "LONG 5000000000",
			"FIELD_NAME f", "DOUBLE 2.5",
			"END_MAP",
		}},
		{"Literals", `{
  "byte": {"$numberByte": -7},
  "short": {"$numberShort": "300"},
  "int": {"$numberInt": 12},
  "long": {"$numberLong": 12},
  "float": {"$numberFloat": 1.5},
  "double": {"$numberDouble": "Infinity"},
  "dec": {"$decimal": "123.4500"},
  "date": {"$dateDay": "2015-01-21"},
  "time": {"$time": "13:45:10.250"},
  "ts": {"$date": "2015-01-21T13:45:10.250-01:00"},
  "ts2": {"$date": 0},
  "iv": {"$interval": "2d3600000ms"},
  "iv2": {"$interval": 90000},
  "bin": {"$binary": "aGVsbG8="}
}`, []string{
			"START_MAP",
			"FIELD_NAME byte", "BYTE -7",
			"FIELD_NAME short", "SHORT 300",
			"FIELD_NAME int", "INT 12",
			"FIELD_NAME long", "LONG 12",
			"FIELD_NAME float", "FLOAT 1.5",
			"FIELD_NAME double", "DOUBLE +Inf",
			"FIELD_NAME dec", "DECIMAL 123.45",
			"FIELD_NAME date", "DATE 2015-01-21",
			"FIELD_NAME time", "TIME 13:45:10.250",
			"FIELD_NAME ts", "TIMESTAMP 2015-01-21T14:45:10.250Z",
			"FIELD_NAME ts2", "TIMESTAMP 1970-01-01T00:00:00.000Z",
			"FIELD_NAME iv", "INTERVAL 2d3600000ms",
			"FIELD_NAME iv2", "INTERVAL 0d90000ms",
			"FIELD_NAME bin", "BINARY hello",
			"END_MAP",
		}},
		{"Nested", `{"a": {"b": [1, [], {}, [{"c": false}]]}, "d": {}}`, []string{
			"START_MAP",
			"FIELD_NAME a", "START_MAP",
			"FIELD_NAME b", "START_ARRAY",
			"INT 1",
			"START_ARRAY", "END_ARRAY",
			"START_MAP", "END_MAP",
			"START_ARRAY", "START_MAP", "FIELD_NAME c", "BOOLEAN false", "END_MAP", "END_ARRAY",
			"END_ARRAY",
			"END_MAP",
			"FIELD_NAME d", "START_MAP", "END_MAP",
			"END_MAP",
		}},
		{"LiteralInArray", `{"a": [42.0, "open sesame", 3.14, {"$dateDay": "2015-01-21"}]}`, []string{
			"START_MAP", "FIELD_NAME a", "START_ARRAY",
			"DOUBLE 42", "STRING open sesame", "DOUBLE 3.14", "DATE 2015-01-21",
			"END_ARRAY", "END_MAP",
		}},
		{"ReservedKeyNotFirst", `{"a": {"x": 1, "$date": 2}}`, []string{
			"START_MAP", "FIELD_NAME a", "START_MAP",
			"FIELD_NAME x", "INT 1", "FIELD_NAME $date", "INT 2",
			"END_MAP", "END_MAP",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readAll(t, tc.input, nil)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Events (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestReader_options(t *testing.T) {
	const input = `{"a": [1, 2,], /* note */ "b": 3, // end
}`
	if _, err := readAll(t, input, nil); !errors.Is(err, jrecord.MalformedInput) {
		t.Errorf("Default options: got %v, want %v", err, jrecord.MalformedInput)
	}
	got, err := readAll(t, input, &jrecord.Options{AllowComments: true, AllowTrailingCommas: true})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := []string{
		"START_MAP",
		"FIELD_NAME a", "START_ARRAY", "INT 1", "INT 2", "END_ARRAY",
		"FIELD_NAME b", "INT 3",
		"END_MAP",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
}

func TestReader_malformed(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"NotMap", `[1, 2]`},
		{"Scalar", `15`},
		{"LiteralRecord", `{"$numberLong": 5}`},
		{"Truncated", `{"a": [1, 2`},
		{"MissingColon", `{"a" 1}`},
		{"MissingComma", `{"a": 1 "b": 2}`},
		{"TrailingComma", `{"a": 1,}`},
		{"NonStringKey", `{1: 2}`},
		{"EmptyKey", `{"": 2}`},
		{"BadLiteral", `{"a": {"$dateDay": "yesterday"}}`},
		{"LiteralExtraMember", `{"a": {"$numberLong": 5, "b": 1}}`},
		{"LiteralWrongType", `{"a": {"$binary": 5}}`},
		{"ByteOverflow", `{"a": {"$numberByte": 128}}`},
		{"IntegerOverflow", `{"a": 9223372036854775808}`},
		{"NumberOverflow", `{"a": 1e400}`},
		{"IntervalOverflow", `{"a": {"$interval": "106751991167301d0ms"}}`},
		{"IntervalSumOverflow", `{"a": {"$interval": "106751991167d25975808ms"}}`},
		{"DateYearTooLarge", `{"a": {"$dateDay": "10000-01-01"}}`},
		{"DateYearNegative", `{"a": {"$dateDay": "-005-03-01"}}`},
		{"TimestampYearTooLarge", `{"a": {"$date": "10000-01-01T00:00:00.000Z"}}`},
		{"TimestampMillisTooLarge", `{"a": {"$date": 253402300800000}}`},
		{"Lexical", `{"a": tru}`},
		{"Unbalanced", `{"a": [1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := jrecord.NewReader(strings.NewReader(tc.input), nil)
			var err error
			for err == nil {
				_, err = r.Next()
			}
			if !errors.Is(err, jrecord.MalformedInput) {
				t.Fatalf("Next: got %v, want %v", err, jrecord.MalformedInput)
			}
			t.Logf("Got expected error: %v", err)

			// Once failed, the reader stays failed.
			if _, err := r.Next(); !errors.Is(err, jrecord.IllegalState) {
				t.Errorf("Next after failure: got %v, want %v", err, jrecord.IllegalState)
			}
			if _, err := r.String(); !errors.Is(err, jrecord.IllegalState) {
				t.Errorf("String after failure: got %v, want %v", err, jrecord.IllegalState)
			}
		})
	}
}

func TestReader_errorLocation(t *testing.T) {
	r := jrecord.NewReader(strings.NewReader("{\n  \"a\": 1,\n  \"b\" 2\n}"), nil)
	var err error
	for err == nil {
		_, err = r.Next()
	}
	var e *jrecord.Error
	if !errors.As(err, &e) {
		t.Fatalf("Next: got %T, want *jrecord.Error", err)
	}
	if want := (jrecord.LineCol{Line: 3, Column: 6}); e.Location != want {
		t.Errorf("Location: got %v, want %v", e.Location, want)
	}
}

// readTo advances r to the first scalar event and returns it.
func readTo(t *testing.T, input string) *jrecord.Reader {
	t.Helper()
	r := jrecord.NewReader(strings.NewReader(input), nil)
	for {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if ev.IsScalar() {
			return r
		}
	}
}

func TestReader_numeric(t *testing.T) {
	check := func(t *testing.T, input string, get func(*jrecord.Reader) (any, error), want any, kind error) {
		t.Helper()
		got, err := get(readTo(t, input))
		if kind != nil {
			if !errors.Is(err, kind) {
				t.Errorf("%s: got (%v, %v), want %v", input, got, err, kind)
			}
			return
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", input, err)
		} else if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: (-want, +got)\n%s", input, diff)
		}
	}
	asByte := func(r *jrecord.Reader) (any, error) { return r.Byte() }
	asShort := func(r *jrecord.Reader) (any, error) { return r.Short() }
	asInt := func(r *jrecord.Reader) (any, error) { return r.Int() }
	asLong := func(r *jrecord.Reader) (any, error) { return r.Long() }
	asFloat := func(r *jrecord.Reader) (any, error) { return r.Float() }
	asDouble := func(r *jrecord.Reader) (any, error) { return r.Double() }
	asDecimal := func(r *jrecord.Reader) (any, error) {
		d, err := r.Decimal()
		return d.String(), err
	}
	asString := func(r *jrecord.Reader) (any, error) { return r.String() }

	t.Run("Integers", func(t *testing.T) {
		check(t, `{"a": 100}`, asByte, int8(100), nil)
		check(t, `{"a": 128}`, asByte, nil, jrecord.NumericOverflow)
		check(t, `{"a": -32768}`, asShort, int16(-32768), nil)
		check(t, `{"a": 32768}`, asShort, nil, jrecord.NumericOverflow)
		check(t, `{"a": {"$numberByte": 5}}`, asLong, int64(5), nil)
		check(t, `{"a": 9223372036854775807}`, asLong, int64(math.MaxInt64), nil)
		check(t, `{"a": 9223372036854775807}`, asInt, nil, jrecord.NumericOverflow)
		check(t, `{"a": {"$numberLong": 7}}`, asInt, int32(7), nil)
	})
	t.Run("IntegerToFloat", func(t *testing.T) {
		check(t, `{"a": 16777216}`, asFloat, float32(16777216), nil)
		check(t, `{"a": 16777217}`, asFloat, nil, jrecord.NumericOverflow)
		check(t, `{"a": 9007199254740992}`, asDouble, float64(1<<53), nil)
		check(t, `{"a": 9007199254740993}`, asDouble, nil, jrecord.NumericOverflow)
	})
	t.Run("Floats", func(t *testing.T) {
		check(t, `{"a": 0.5}`, asFloat, float32(0.5), nil)
		check(t, `{"a": 1e300}`, asFloat, nil, jrecord.NumericOverflow)
		check(t, `{"a": {"$numberFloat": 0.25}}`, asDouble, 0.25, nil)
		check(t, `{"a": 0.5}`, asInt, nil, jrecord.TypeMismatch)
		check(t, `{"a": {"$numberFloat": 2}}`, asLong, nil, jrecord.TypeMismatch)
	})
	t.Run("Decimal", func(t *testing.T) {
		check(t, `{"a": 17}`, asDecimal, "17", nil)
		check(t, `{"a": 2.5}`, asDecimal, "2.5", nil)
		check(t, `{"a": {"$numberDouble": "NaN"}}`, asDecimal, nil, jrecord.NumericOverflow)
		check(t, `{"a": {"$decimal": "1.5"}}`, asDouble, nil, jrecord.TypeMismatch)
		check(t, `{"a": {"$decimal": "15"}}`, asLong, nil, jrecord.TypeMismatch)
	})
	t.Run("Mismatch", func(t *testing.T) {
		check(t, `{"a": true}`, asString, nil, jrecord.TypeMismatch)
		check(t, `{"a": "5"}`, asInt, nil, jrecord.TypeMismatch)
		check(t, `{"a": null}`, asDouble, nil, jrecord.TypeMismatch)
	})
}

func TestReader_state(t *testing.T) {
	r := jrecord.NewReader(strings.NewReader(`{"a": {"b": 1}, "c": [true]}`), nil)

	if r.Event() != jrecord.EventNone {
		t.Errorf("Initial event: got %v, want %v", r.Event(), jrecord.EventNone)
	}
	if _, err := r.Bool(); !errors.Is(err, jrecord.IllegalState) {
		t.Errorf("Bool before Next: got %v, want %v", err, jrecord.IllegalState)
	}
	if _, err := r.FieldName(); !errors.Is(err, jrecord.IllegalState) {
		t.Errorf("FieldName before Next: got %v, want %v", err, jrecord.IllegalState)
	}

	mustNext := func(want jrecord.Event, depth int) {
		t.Helper()
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		} else if ev != want || r.Depth() != depth {
			t.Fatalf("Next: got %v at depth %d, want %v at depth %d", ev, r.Depth(), want, depth)
		}
	}
	mustNext(jrecord.EventStartMap, 1)
	if _, err := r.Long(); !errors.Is(err, jrecord.IllegalState) {
		t.Errorf("Long at START_MAP: got %v, want %v", err, jrecord.IllegalState)
	}
	mustNext(jrecord.EventFieldName, 1)

	// Skip from a field name consumes its whole value.
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if r.Event() != jrecord.EventEndMap || r.Depth() != 1 {
		t.Errorf("After Skip: got %v at depth %d", r.Event(), r.Depth())
	}
	mustNext(jrecord.EventFieldName, 1)
	if name, err := r.FieldName(); err != nil || name != "c" {
		t.Errorf("FieldName: got %q, %v; want c", name, err)
	}
	mustNext(jrecord.EventStartArray, 2)
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	mustNext(jrecord.EventEndMap, 0)

	for range 2 {
		if ev, err := r.Next(); err != io.EOF || ev != jrecord.EventEOF {
			t.Errorf("Next at end: got %v, %v; want %v, EOF", ev, err, jrecord.EventEOF)
		}
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close again: unexpected error: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, jrecord.IllegalState) {
		t.Errorf("Next after Close: got %v, want %v", err, jrecord.IllegalState)
	}
}

func TestReader_sharedScanner(t *testing.T) {
	s := jrecord.NewScanner(strings.NewReader(`{"n": 1} {"n": 2, "skip": [1, 2]} {"n": 3}`))
	var got []int32
	for s.Advance() == nil {
		r := jrecord.NewScannerReader(s, nil)
		if _, err := r.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if _, err := r.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if _, err := r.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		v, err := r.Int()
		if err != nil {
			t.Fatalf("Int failed: %v", err)
		}
		got = append(got, v)
		if err := r.Discard(); err != nil {
			t.Fatalf("Discard failed: %v", err)
		}
	}
	if s.Err() != io.EOF {
		t.Fatalf("Advance failed: %v", s.Err())
	}
	if diff := cmp.Diff([]int32{1, 2, 3}, got); diff != "" {
		t.Errorf("Values (-want, +got):\n%s", diff)
	}
}

func TestReader_emptyInput(t *testing.T) {
	r := jrecord.NewReader(strings.NewReader("  \n"), nil)
	if ev, err := r.Next(); err != io.EOF || ev != jrecord.EventEOF {
		t.Errorf("Next: got %v, %v; want %v, EOF", ev, err, jrecord.EventEOF)
	}
}

func TestReader_decimalPrecision(t *testing.T) {
	r := readTo(t, `{"a": {"$decimal": "12345678901234567890.123456789"}}`)
	got, err := r.Decimal()
	if err != nil {
		t.Fatalf("Decimal failed: %v", err)
	}
	if want := decimal.RequireFromString("12345678901234567890.123456789"); !got.Equal(want) {
		t.Errorf("Decimal: got %v, want %v", got, want)
	}
}
