// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package doc defines an in-memory tree for typed JSON records, and
// functions to build trees from a jrecord.Reader and to write them to a
// jrecord.Writer.
//
// Each tag of the data model has one concrete Value type:
//
//	Tag        | Type
//	---------- | ---------------------
//	null       | Null
//	boolean    | Bool
//	string     | String
//	byte       | Byte
//	short      | Short
//	int        | Int
//	long       | Long
//	float      | Float
//	double     | Double
//	decimal    | Decimal
//	date       | Date
//	time       | Time
//	timestamp  | Timestamp
//	interval   | Interval
//	binary     | Binary
//	map        | *Map
//	array      | Array
package doc

import (
	"iter"
	"time"

	"github.com/creachadair/jrecord"
	"github.com/shopspring/decimal"
)

// A Value is a node of a record tree. The concrete types implementing Value
// are defined by this package; see the package documentation.
type Value interface {
	// Tag reports the data model tag of the value.
	Tag() jrecord.Tag

	isValue()
}

// Null represents the null constant.
type Null struct{}

// A Bool is a Boolean constant, true or false.
type Bool bool

// A String is a string value.
type String string

// A Byte is an 8-bit signed integer.
type Byte int8

// A Short is a 16-bit signed integer.
type Short int16

// An Int is a 32-bit signed integer.
type Int int32

// A Long is a 64-bit signed integer.
type Long int64

// A Float is a 32-bit floating-point value.
type Float float32

// A Double is a 64-bit floating-point value.
type Double float64

// A Decimal is an arbitrary-precision decimal value.
type Decimal struct{ decimal.Decimal }

// A Date is a calendar date.
type Date struct{ jrecord.Date }

// A Time is a time of day.
type Time struct{ jrecord.TimeOfDay }

// A Timestamp is an instant with millisecond precision.
type Timestamp struct{ time.Time }

// An Interval is a span of days and milliseconds.
type Interval struct{ jrecord.Interval }

// A Binary is an opaque sequence of bytes.
type Binary []byte

// An Array is an ordered sequence of values.
type Array []Value

func (Null) Tag() jrecord.Tag      { return jrecord.TagNull }
func (Bool) Tag() jrecord.Tag      { return jrecord.TagBoolean }
func (String) Tag() jrecord.Tag    { return jrecord.TagString }
func (Byte) Tag() jrecord.Tag      { return jrecord.TagByte }
func (Short) Tag() jrecord.Tag     { return jrecord.TagShort }
func (Int) Tag() jrecord.Tag       { return jrecord.TagInt }
func (Long) Tag() jrecord.Tag      { return jrecord.TagLong }
func (Float) Tag() jrecord.Tag     { return jrecord.TagFloat }
func (Double) Tag() jrecord.Tag    { return jrecord.TagDouble }
func (Decimal) Tag() jrecord.Tag   { return jrecord.TagDecimal }
func (Date) Tag() jrecord.Tag      { return jrecord.TagDate }
func (Time) Tag() jrecord.Tag      { return jrecord.TagTime }
func (Timestamp) Tag() jrecord.Tag { return jrecord.TagTimestamp }
func (Interval) Tag() jrecord.Tag  { return jrecord.TagInterval }
func (Binary) Tag() jrecord.Tag    { return jrecord.TagBinary }
func (Array) Tag() jrecord.Tag     { return jrecord.TagArray }
func (*Map) Tag() jrecord.Tag      { return jrecord.TagMap }

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (String) isValue()    {}
func (Byte) isValue()      {}
func (Short) isValue()     {}
func (Int) isValue()       {}
func (Long) isValue()      {}
func (Float) isValue()     {}
func (Double) isValue()    {}
func (Decimal) isValue()   {}
func (Date) isValue()      {}
func (Time) isValue()      {}
func (Timestamp) isValue() {}
func (Interval) isValue()  {}
func (Binary) isValue()    {}
func (Array) isValue()     {}
func (*Map) isValue()      {}

// TagOf returns the tag of v, or jrecord.TagInvalid if v == nil.
func TagOf(v Value) jrecord.Tag {
	if v == nil {
		return jrecord.TagInvalid
	}
	return v.Tag()
}

// AsLong returns the value of an integer node of any width as an int64.
// It reports TypeMismatch if v is not an integer.
func AsLong(v Value) (int64, error) {
	switch t := v.(type) {
	case Byte:
		return int64(t), nil
	case Short:
		return int64(t), nil
	case Int:
		return int64(t), nil
	case Long:
		return int64(t), nil
	}
	return 0, jrecord.Errorf(jrecord.TypeMismatch, "%v is not an integer", TagOf(v))
}

// AsInt returns the value of an integer node as an int32, reporting
// NumericOverflow if it does not fit.
func AsInt(v Value) (int32, error) { return asInt[int32](v) }

// AsShort returns the value of an integer node as an int16, reporting
// NumericOverflow if it does not fit.
func AsShort(v Value) (int16, error) { return asInt[int16](v) }

// AsByte returns the value of an integer node as an int8, reporting
// NumericOverflow if it does not fit.
func AsByte(v Value) (int8, error) { return asInt[int8](v) }

func asInt[T int8 | int16 | int32](v Value) (T, error) {
	z, err := AsLong(v)
	if err != nil {
		return 0, err
	}
	return jrecord.ConvertInt[T](z)
}

// A Map is an ordered collection of uniquely-named fields. The zero value is
// an empty map ready for use.
type Map struct {
	keys  []string
	vals  []Value
	index map[string]int
}

// NewMap constructs a map with the given alternating keys and values.
// It panics if the arguments do not have that form.
func NewMap(kvs ...any) *Map {
	if len(kvs)%2 != 0 {
		panic("odd number of arguments to NewMap")
	}
	m := new(Map)
	for i := 0; i < len(kvs); i += 2 {
		m.Set(kvs[i].(string), kvs[i+1].(Value))
	}
	return m
}

// Len returns the number of fields in m.
func (m *Map) Len() int { return len(m.keys) }

// Lookup returns the value of the field with the given name, and reports
// whether it was found.
func (m *Map) Lookup(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Set sets the value of the field with the given name. If the field already
// exists, its value is replaced and it keeps its position; otherwise the
// field is added at the end.
func (m *Map) Set(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// Delete removes the field with the given name, if present, and reports
// whether it was present.
func (m *Map) Delete(key string) bool {
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.index, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Keys returns the field names of m in order.
func (m *Map) Keys() []string { return append([]string(nil), m.keys...) }

// Members is a range function over the fields of m in order.
func (m *Map) Members() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i, key := range m.keys {
			if !yield(key, m.vals[i]) {
				return
			}
		}
	}
}
