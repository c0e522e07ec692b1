// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package doc

import (
	"bytes"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/creachadair/jrecord"
	"github.com/shopspring/decimal"
)

// FromGo converts a Go value to a tree node. Nested maps and slices are
// converted recursively; the fields of a map[string]any are added in
// lexicographic order of their keys, except that keys reserved for typed
// literals (such as "$date") follow all other keys, so that the map can be
// written. A map whose keys are all reserved is reported as TypeMismatch.
// A value that is already a Value is returned unchanged.
//
// A plain int is converted to Int if it fits in 32 bits, otherwise Long.
// A time.Duration is converted to an Interval.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int8:
		return Byte(t), nil
	case int16:
		return Short(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return Long(t), nil
	case int:
		if jrecord.IntTag(int64(t)) == jrecord.TagInt {
			return Int(t), nil
		}
		return Long(t), nil
	case float32:
		return Float(t), nil
	case float64:
		return Double(t), nil
	case decimal.Decimal:
		return Decimal{t}, nil
	case jrecord.Date:
		return Date{t}, nil
	case jrecord.TimeOfDay:
		return Time{t}, nil
	case time.Time:
		return Timestamp{jrecord.Timestamp(t)}, nil
	case jrecord.Interval:
		return Interval{t}, nil
	case time.Duration:
		return Interval{jrecord.IntervalOf(t)}, nil
	case []byte:
		return Binary(t), nil
	case []any:
		out := make(Array, len(t))
		for i, elt := range t {
			ev, err := FromGo(elt)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		keys := slices.SortedFunc(maps.Keys(t), compareKeys)
		if len(keys) != 0 && jrecord.IsLiteralKey(keys[0]) {
			return nil, jrecord.Errorf(jrecord.TypeMismatch, "map has only reserved keys %q", keys)
		}
		out := new(Map)
		for _, key := range keys {
			ev, err := FromGo(t[key])
			if err != nil {
				return nil, err
			}
			out.Set(key, ev)
		}
		return out, nil
	}
	return nil, jrecord.Errorf(jrecord.TypeMismatch, "cannot convert %T to a value", v)
}

// compareKeys orders field names lexicographically, with reserved literal
// keys after all others.
func compareKeys(a, b string) int {
	if ra, rb := jrecord.IsLiteralKey(a), jrecord.IsLiteralKey(b); ra != rb {
		if ra {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}

// Equal reports whether a and b are equal trees. Values of different tags
// are never equal. Maps are equal if they have the same field names with
// equal values, regardless of order; arrays are compared elementwise.
// Floating-point NaN values are equal to each other.
func Equal(a, b Value) bool {
	if TagOf(a) != TagOf(b) {
		return false
	}
	switch x := a.(type) {
	case nil, Null:
		return true
	case Float:
		y := b.(Float)
		return x == y || (math.IsNaN(float64(x)) && math.IsNaN(float64(y)))
	case Double:
		y := b.(Double)
		return x == y || (math.IsNaN(float64(x)) && math.IsNaN(float64(y)))
	case Decimal:
		return x.Equal(b.(Decimal).Decimal)
	case Timestamp:
		return x.Equal(b.(Timestamp).Time)
	case Binary:
		return bytes.Equal(x, b.(Binary))
	case Array:
		y := b.(Array)
		return slices.EqualFunc(x, y, Equal)
	case *Map:
		y := b.(*Map)
		if x.Len() != y.Len() {
			return false
		}
		for key, xv := range x.Members() {
			yv, ok := y.Lookup(key)
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return a == b
}
