// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package doc

import (
	"github.com/creachadair/jrecord"
)

// DuplicatePolicy selects how Materialize treats a field name that occurs
// more than once in the same map.
type DuplicatePolicy byte

const (
	// LastWins keeps the last value for the name, at the position where the
	// name first occurred.
	LastWins DuplicatePolicy = iota

	// FirstWins keeps the first value for the name and ignores the rest.
	FirstWins
)

// Options control the construction of trees. A nil *Options is ready for use
// and provides default values.
type Options struct {
	Duplicates DuplicatePolicy
}

func (o *Options) duplicates() DuplicatePolicy {
	if o == nil {
		return LastWins
	}
	return o.Duplicates
}

// Materialize reads a complete record from r and returns it as a tree.
// The reader must either be fresh, or positioned at the START_MAP event of
// its record. If the record is empty, Materialize returns the EOF reported
// by r.
//
// Materialize is all-or-nothing: if any part of the record fails to read,
// no partial tree is returned.
func Materialize(r *jrecord.Reader, opts *Options) (*Map, error) {
	switch r.Event() {
	case jrecord.EventNone:
		if _, err := r.Next(); err != nil {
			return nil, err
		}
	case jrecord.EventStartMap:
		if r.Depth() != 1 {
			return nil, jrecord.Errorf(jrecord.IllegalState, "reader is not at the start of a record")
		}
	default:
		return nil, jrecord.Errorf(jrecord.IllegalState, "reader is at %v, not the start of a record", r.Event())
	}

	b := &builder{dups: opts.duplicates()}
	b.push(new(Map))
	for {
		ev, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch ev {
		case jrecord.EventFieldName:
			b.top().key, _ = r.FieldName()
		case jrecord.EventStartMap:
			b.push(new(Map))
		case jrecord.EventStartArray:
			b.push(Array{})
		case jrecord.EventEndMap, jrecord.EventEndArray:
			v := b.pop()
			if len(b.stk) == 0 {
				return v.(*Map), nil
			}
			b.reduce(v)
		default:
			v, err := Scalar(r)
			if err != nil {
				return nil, err
			}
			b.reduce(v)
		}
	}
}

// A builder constructs a tree from a sequence of reader events.
type builder struct {
	dups DuplicatePolicy
	stk  []*open
}

// An open is a container still under construction, and the field name of
// its pending member.
type open struct {
	v   Value // *Map or Array
	key string
}

func (b *builder) top() *open { return b.stk[len(b.stk)-1] }

func (b *builder) push(v Value) { b.stk = append(b.stk, &open{v: v}) }

func (b *builder) pop() Value {
	last := b.top()
	b.stk = b.stk[:len(b.stk)-1]
	return last.v
}

// reduce adds v to the container atop the stack.
func (b *builder) reduce(v Value) {
	top := b.top()
	switch c := top.v.(type) {
	case *Map:
		if _, ok := c.Lookup(top.key); ok && b.dups == FirstWins {
			return
		}
		c.Set(top.key, v)
	case Array:
		top.v = append(c, v)
	}
}

// Scalar returns the value of the current scalar event of r. It reports
// IllegalState if the current event is not a scalar.
func Scalar(r *jrecord.Reader) (Value, error) {
	switch r.Event() {
	case jrecord.EventNull:
		return Null{}, nil
	case jrecord.EventBoolean:
		v, err := r.Bool()
		return Bool(v), err
	case jrecord.EventString:
		v, err := r.String()
		return String(v), err
	case jrecord.EventByte:
		v, err := r.Byte()
		return Byte(v), err
	case jrecord.EventShort:
		v, err := r.Short()
		return Short(v), err
	case jrecord.EventInt:
		v, err := r.Int()
		return Int(v), err
	case jrecord.EventLong:
		v, err := r.Long()
		return Long(v), err
	case jrecord.EventFloat:
		v, err := r.Float()
		return Float(v), err
	case jrecord.EventDouble:
		v, err := r.Double()
		return Double(v), err
	case jrecord.EventDecimal:
		v, err := r.Decimal()
		return Decimal{v}, err
	case jrecord.EventDate:
		v, err := r.Date()
		return Date{v}, err
	case jrecord.EventTime:
		v, err := r.Time()
		return Time{v}, err
	case jrecord.EventTimestamp:
		v, err := r.Timestamp()
		return Timestamp{v}, err
	case jrecord.EventInterval:
		v, err := r.Interval()
		return Interval{v}, err
	case jrecord.EventBinary:
		v, err := r.Binary()
		return Binary(append([]byte(nil), v...)), err
	}
	return nil, jrecord.Errorf(jrecord.IllegalState, "no scalar value at %v event", r.Event())
}
