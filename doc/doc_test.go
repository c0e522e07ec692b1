// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package doc_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jrecord"
	"github.com/creachadair/jrecord/doc"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": {"$numberLong": 2}
    }
  ],
  "y": {
    "hello": "there",
    "when": {"$dateDay": "2015-01-21"}
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": 2.5,
    "q": null
  }
}`

func mustParse(t *testing.T, input string, opts *doc.Options) *doc.Map {
	t.Helper()
	m, err := doc.Parse(strings.NewReader(input), nil, opts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func TestMaterialize(t *testing.T) {
	m := mustParse(t, testJSON, nil)
	if diff := cmp.Diff([]string{"list", "y", "o", "xyz"}, m.Keys()); diff != "" {
		t.Errorf("Keys (-want, +got):\n%s", diff)
	}
	want := doc.NewMap(
		"list", doc.Array{doc.NewMap("x", doc.Int(1)), doc.NewMap("x", doc.Long(2))},
		"y", doc.NewMap(
			"hello", doc.String("there"),
			"when", doc.Date{Date: jrecord.Date{Year: 2015, Month: time.January, Day: 21}},
		),
		"o", doc.Array{doc.String("hi"), doc.String("yourself")},
		"xyz", doc.NewMap("p", doc.Bool(true), "d", doc.Double(2.5), "q", doc.Null{}),
	)
	if !doc.Equal(want, m) {
		t.Errorf("Materialize: got %+v, want %+v", m, want)
	}
}

func TestMaterialize_duplicates(t *testing.T) {
	const input = `{"a": 1, "b": 2, "a": 3, "c": {"z": 1, "z": [2]}}`
	tests := []struct {
		name   string
		policy doc.DuplicatePolicy
		want   string
	}{
		{"LastWins", doc.LastWins, `{"a":3,"b":2,"c":{"z":[2]}}` + "\n"},
		{"FirstWins", doc.FirstWins, `{"a":1,"b":2,"c":{"z":1}}` + "\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mustParse(t, input, &doc.Options{Duplicates: tc.policy})
			got, err := doc.Marshal(m)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, string(got)); diff != "" {
				t.Errorf("Result (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestMaterialize_errors(t *testing.T) {
	t.Run("Malformed", func(t *testing.T) {
		m, err := doc.Parse(strings.NewReader(`{"a": [1, 2, {"b": }]}`), nil, nil)
		if !errors.Is(err, jrecord.MalformedInput) {
			t.Errorf("Parse: got %v, want %v", err, jrecord.MalformedInput)
		}
		if m != nil {
			t.Errorf("Parse: got partial result %+v, want nil", m)
		}
	})
	t.Run("Empty", func(t *testing.T) {
		if m, err := doc.Parse(strings.NewReader(""), nil, nil); err != io.EOF {
			t.Errorf("Parse: got %+v, %v; want EOF", m, err)
		}
	})
	t.Run("MidRecord", func(t *testing.T) {
		r := jrecord.NewReader(strings.NewReader(`{"a": 1}`), nil)
		r.Next()
		r.Next()
		if _, err := doc.Materialize(r, nil); !errors.Is(err, jrecord.IllegalState) {
			t.Errorf("Materialize: got %v, want %v", err, jrecord.IllegalState)
		}
	})
	t.Run("AtStart", func(t *testing.T) {
		r := jrecord.NewReader(strings.NewReader(`{"a": {"b": 1}}`), nil)
		if ev, err := r.Next(); err != nil || ev != jrecord.EventStartMap {
			t.Fatalf("Next: got %v, %v", ev, err)
		}
		m, err := doc.Materialize(r, nil)
		if err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
		if got, ok, err := doc.Get(m, "a", "b"); err != nil || !ok || !doc.Equal(got, doc.Int(1)) {
			t.Errorf("Get(a, b): got %v, %v, %v; want 1", got, ok, err)
		}
	})
}

func TestGet(t *testing.T) {
	v := mustParse(t, testJSON, nil)
	list, _ := v.Lookup("list")
	o, _ := v.Lookup("o")
	xyz, _ := v.Lookup("xyz")
	tests := []struct {
		name string
		path []any
		want doc.Value
		ok   bool
		kind error
	}{
		{"Empty", nil, v, true, nil},
		{"Key", []any{"xyz"}, xyz, true, nil},
		{"ArrayPos", []any{"list", 1, "x"}, doc.Long(2), true, nil},
		{"ArrayNeg", []any{"o", -1}, doc.String("yourself"), true, nil},
		{"ArrayWhole", []any{"o"}, o, true, nil},
		{"Nested", []any{"list", 0}, list.(doc.Array)[0], true, nil},

		{"NoKey", []any{"nonesuch"}, nil, false, nil},
		{"NoNestedKey", []any{"y", "nonesuch", "deeper"}, nil, false, nil},
		{"OutOfBounds", []any{"o", 2}, nil, false, nil},
		{"OutOfBoundsNeg", []any{"o", -3}, nil, false, nil},

		{"IndexMap", []any{11}, nil, false, jrecord.TypeMismatch},
		{"KeyArray", []any{"o", "x"}, nil, false, jrecord.TypeMismatch},
		{"IntoScalar", []any{"xyz", "p", "q"}, nil, false, jrecord.TypeMismatch},
		{"BadElement", []any{1.5}, nil, false, jrecord.TypeMismatch},

		{"Func", []any{"xyz", func(v doc.Value) (doc.Value, error) {
			return doc.Int(v.(*doc.Map).Len()), nil
		}}, doc.Int(3), true, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := doc.Get(v, tc.path...)
			if tc.kind != nil {
				if !errors.Is(err, tc.kind) {
					t.Fatalf("Get %v: got %v, want %v", tc.path, err, tc.kind)
				}
				return
			} else if err != nil {
				t.Fatalf("Get %v: unexpected error: %v", tc.path, err)
			}
			if ok != tc.ok {
				t.Errorf("Get %v: got ok=%v, want %v", tc.path, ok, tc.ok)
			}
			if !doc.Equal(got, tc.want) {
				t.Errorf("Get %v: got %+v, want %+v", tc.path, got, tc.want)
			}
		})
	}
}

func TestMap(t *testing.T) {
	m := new(doc.Map)
	m.Set("a", doc.Int(1))
	m.Set("b", doc.Int(2))
	m.Set("c", doc.Int(3))
	m.Set("a", doc.Int(4))
	if diff := cmp.Diff([]string{"a", "b", "c"}, m.Keys()); diff != "" {
		t.Errorf("Keys (-want, +got):\n%s", diff)
	}
	if !m.Delete("b") || m.Delete("b") {
		t.Error("Delete did not report presence correctly")
	}
	if v, ok := m.Lookup("c"); !ok || v != doc.Int(3) {
		t.Errorf("Lookup(c) after delete: got %v, %v", v, ok)
	}
	var keys []string
	for key := range m.Members() {
		keys = append(keys, key)
	}
	if diff := cmp.Diff([]string{"a", "c"}, keys); diff != "" {
		t.Errorf("Members (-want, +got):\n%s", diff)
	}
}

func TestAsInt(t *testing.T) {
	if v, err := doc.AsByte(doc.Long(-5)); err != nil || v != -5 {
		t.Errorf("AsByte(-5): got %v, %v", v, err)
	}
	if _, err := doc.AsShort(doc.Int(40000)); !errors.Is(err, jrecord.NumericOverflow) {
		t.Errorf("AsShort(40000): got %v, want %v", err, jrecord.NumericOverflow)
	}
	if _, err := doc.AsInt(doc.Double(1)); !errors.Is(err, jrecord.TypeMismatch) {
		t.Errorf("AsInt(1.0): got %v, want %v", err, jrecord.TypeMismatch)
	}
	if v, err := doc.AsLong(doc.Byte(7)); err != nil || v != 7 {
		t.Errorf("AsLong(7): got %v, %v", v, err)
	}
}

func TestRoundTrip(t *testing.T) {
	ts := time.Date(2021, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	in, err := doc.FromGo(map[string]any{
		"null":  nil,
		"bool":  false,
		"str":   "ok",
		"byte":  int8(-1),
		"short": int16(1000),
		"int":   7,
		"long":  int64(math.MaxInt64),
		"float": float32(0.5),
		"nan":   math.NaN(),
		"dec":   decimal.RequireFromString("-0.001"),
		"date":  jrecord.Date{Year: 1999, Month: time.December, Day: 31},
		"time":  jrecord.TimeOfDayOf(ts),
		"ts":    ts,
		"iv":    90 * time.Minute,
		"bin":   []byte{0, 1, 2, 255},
		"arr":   []any{1, "two", []any{}, map[string]any{}},
	})
	if err != nil {
		t.Fatalf("FromGo failed: %v", err)
	}
	text, err := doc.Marshal(in.(*doc.Map))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := mustParse(t, string(text), nil)
	if !doc.Equal(in, out) {
		t.Errorf("Round trip failed:\ninput:  %+v\noutput: %+v\ntext: %s", in, out, text)
	}
	if got, _, _ := doc.Get(out, "int"); doc.TagOf(got) != jrecord.TagInt {
		t.Errorf("Tag of int: got %v, want %v", doc.TagOf(got), jrecord.TagInt)
	}
}

func TestFromGo_error(t *testing.T) {
	if v, err := doc.FromGo(struct{}{}); !errors.Is(err, jrecord.TypeMismatch) {
		t.Errorf("FromGo(struct): got %v, %v; want %v", v, err, jrecord.TypeMismatch)
	}
	if v, err := doc.FromGo([]any{1, uint(2)}); !errors.Is(err, jrecord.TypeMismatch) {
		t.Errorf("FromGo([]any{uint}): got %v, %v; want %v", v, err, jrecord.TypeMismatch)
	}
}

func TestFromGo_reservedKeys(t *testing.T) {
	v, err := doc.FromGo(map[string]any{"$date": "not a literal", "b": 2, "a": 1})
	if err != nil {
		t.Fatalf("FromGo failed: %v", err)
	}
	m := v.(*doc.Map)
	if diff := cmp.Diff([]string{"a", "b", "$date"}, m.Keys()); diff != "" {
		t.Errorf("Keys (-want, +got):\n%s", diff)
	}
	text, err := doc.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if out := mustParse(t, string(text), nil); !doc.Equal(m, out) {
		t.Errorf("Round trip: got %+v, want %+v", out, m)
	}

	if v, err := doc.FromGo(map[string]any{"$date": 1}); !errors.Is(err, jrecord.TypeMismatch) {
		t.Errorf("FromGo(only reserved): got %v, %v; want %v", v, err, jrecord.TypeMismatch)
	}
}

func TestEqual(t *testing.T) {
	a := doc.NewMap("x", doc.Int(1), "y", doc.Array{doc.Double(math.NaN())})
	b := doc.NewMap("y", doc.Array{doc.Double(math.NaN())}, "x", doc.Int(1))
	if !doc.Equal(a, b) {
		t.Error("Maps with reordered fields should be equal")
	}
	if doc.Equal(doc.Int(1), doc.Long(1)) {
		t.Error("Values of different tags should not be equal")
	}
	if doc.Equal(a, doc.NewMap("x", doc.Int(1))) {
		t.Error("Maps of different sizes should not be equal")
	}
}
