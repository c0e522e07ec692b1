// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

type readerState byte

const (
	readerActive readerState = iota
	readerDone               // end of record reached
	readerFailed             // malformed input was reported
)

// A frame records the state of one open container.
type frame struct {
	tag Tag  // TagMap or TagArray
	n   int  // number of members or elements begun so far
	key bool // a field name was reported and its value is pending
}

// A Reader is a forward-only cursor over the events of a single record.
// Call Next to advance to each event in turn, and use the getter methods to
// retrieve the value of the current event.
//
// A Reader is not safe for concurrent use by multiple goroutines.
type Reader struct {
	s      *Scanner
	opts   *Options
	primed bool // s is already positioned at the first token of the record
	state  readerState
	closed bool  // closed by the caller or by the owning stream
	err    error // the failure that stopped the reader, if any

	ev      Event
	stk     []frame
	field   string
	pending bool // a FIELD_NAME event for field is queued behind START_MAP
	val     scalar
}

// NewReader constructs a Reader for the record at the front of r.
// The caller can reuse r only after the record has been fully read.
func NewReader(r io.Reader, opts *Options) *Reader {
	return &Reader{s: opts.NewScanner(r), opts: opts}
}

// NewScannerReader constructs a Reader for a record whose first token is the
// current token of s, as after a successful call to s.Advance. This allows
// several readers to share one scanner in sequence.
func NewScannerReader(s *Scanner, opts *Options) *Reader {
	return &Reader{s: s, opts: opts, primed: true}
}

// Next advances r to the next event and returns its type. When the record is
// complete, Next returns EventEOF and io.EOF.
//
// If the input is not well-formed, Next reports an error of kind
// MalformedInput; thereafter all methods of r report IllegalState.
func (r *Reader) Next() (Event, error) {
	if err := r.checkLive(); err != nil {
		return EventNone, err
	}
	if r.state == readerDone {
		return EventEOF, io.EOF
	}
	ev, err := r.advance()
	if err != nil {
		r.state, r.err, r.ev = readerFailed, err, EventNone
		return EventNone, err
	}
	r.ev = ev
	if ev == EventEOF {
		r.state = readerDone
		return ev, io.EOF
	}
	return ev, nil
}

// Event returns the current event of r. Before the first call to Next it
// returns EventNone.
func (r *Reader) Event() Event { return r.ev }

// Tag returns the tag of the current event, or TagInvalid if the current event
// has no tag.
func (r *Reader) Tag() Tag { return r.ev.Tag() }

// Depth returns the number of containers enclosing the current position.
// A START event increases the depth, and the matching END event restores it.
func (r *Reader) Depth() int { return len(r.stk) }

// Location returns the source location of the most recent token read.
func (r *Reader) Location() Location { return r.s.Location() }

// Err returns the error that caused r to fail, or nil.
func (r *Reader) Err() error { return r.err }

func (r *Reader) advance() (Event, error) {
	if r.pending {
		r.pending = false
		return EventFieldName, nil
	}
	if len(r.stk) == 0 {
		if r.ev == EventEndMap {
			return EventEOF, nil // the record is complete
		}
		return r.begin()
	}

	top := &r.stk[len(r.stk)-1]
	if top.tag == TagMap && top.key {
		top.key = false
		tok, err := r.nextToken()
		if err != nil {
			return EventNone, err
		}
		return r.value(tok)
	}

	tok, err := r.nextToken()
	if err != nil {
		return EventNone, err
	}
	end := RSquare
	if top.tag == TagMap {
		end = RBrace
	}
	if top.n > 0 {
		switch tok {
		case end:
			return r.pop(), nil
		case Comma:
			if tok, err = r.nextToken(); err != nil {
				return EventNone, err
			}
			if tok == end && r.opts.trailingCommas() {
				return r.pop(), nil
			}
		default:
			return EventNone, r.malformed("expected %v or %v, got %v", Comma, end, tok)
		}
	} else if tok == end {
		return r.pop(), nil
	}

	top.n++
	if top.tag == TagArray {
		return r.value(tok)
	}
	if tok != String {
		return EventNone, r.malformed("expected string, got %v", tok)
	}
	if err := r.fieldName(); err != nil {
		return EventNone, err
	}
	top.key = true
	return EventFieldName, nil
}

// begin reads the opening of a record.
func (r *Reader) begin() (Event, error) {
	if r.primed {
		r.primed = false
	} else if err := r.s.Advance(); err == io.EOF {
		return EventEOF, nil
	} else if err != nil {
		return EventNone, r.malformed("%w", err)
	}
	if tok := r.s.Token(); tok != LBrace {
		return EventNone, r.malformed("record must be a map, got %v", tok)
	}
	ev, err := r.openMap()
	if err != nil {
		return EventNone, err
	} else if ev != EventStartMap {
		return EventNone, r.malformed("record must be a map, got %v literal", ev.Tag())
	}
	return ev, nil
}

// value reports the value whose first token is tok.
func (r *Reader) value(tok Token) (Event, error) {
	switch tok {
	case LBrace:
		return r.openMap()
	case LSquare:
		r.stk = append(r.stk, frame{tag: TagArray})
		return EventStartArray, nil
	case String:
		s, err := r.s.Unquote()
		if err != nil {
			return EventNone, r.malformed("%w", err)
		}
		r.val.str = s
		return EventString, nil
	case Integer:
		v, err := r.s.Int64()
		if err != nil {
			return EventNone, r.malformed("integer %s out of range", r.s.Text())
		}
		r.val.num = v
		return ScalarEvent(IntTag(v)), nil
	case Number:
		v, err := r.s.Float64()
		if err != nil {
			return EventNone, r.malformed("number %s out of range", r.s.Text())
		}
		r.val.flt = v
		return EventDouble, nil
	case True, False:
		r.val.b = tok == True
		return EventBoolean, nil
	case Null:
		return EventNull, nil
	default:
		return EventNone, r.malformed("unexpected %v", tok)
	}
}

// openMap handles a "{" token. If the map is a typed literal, it is consumed
// entirely and the scalar event is returned. Otherwise a new map is opened;
// if it is not empty, its first field name is queued.
func (r *Reader) openMap() (Event, error) {
	tok, err := r.nextToken()
	if err != nil {
		return EventNone, err
	}
	switch tok {
	case RBrace:
		// Empty map: report START_MAP now, and END_MAP on the next call.
		r.stk = append(r.stk, frame{tag: TagMap, n: 1})
		r.pushBack()
		return EventStartMap, nil
	case String:
		// OK, a key
	default:
		return EventNone, r.malformed("expected string or %v, got %v", RBrace, tok)
	}
	if err := r.fieldName(); err != nil {
		return EventNone, err
	}
	if tag, ok := literalTags[r.field]; ok {
		return r.literal(tag)
	}
	r.stk = append(r.stk, frame{tag: TagMap, n: 1, key: true})
	r.pending = true
	return EventStartMap, nil
}

// pushBack arranges for the map atop the stack to close on the next call to
// advance. The closing brace has already been consumed.
func (r *Reader) pushBack() { r.stk[len(r.stk)-1].n = -1 }

// literal consumes the payload and closing brace of a typed literal.
func (r *Reader) literal(tag Tag) (Event, error) {
	key := r.field
	r.field = ""
	tok, err := r.nextToken()
	if err != nil {
		return EventNone, err
	} else if !tok.IsValue() {
		return EventNone, r.malformed("invalid %s literal: unexpected %v", key, tok)
	}
	val, err := decodeLiteral(tag, r.s)
	if err != nil {
		return EventNone, r.malformed("invalid %s literal: %w", key, err)
	}
	if tok, err := r.nextToken(); err != nil {
		return EventNone, err
	} else if tok != RBrace {
		return EventNone, r.malformed("%s literal must have exactly one member, got %v", key, tok)
	}
	r.val = val
	return ScalarEvent(tag), nil
}

// fieldName decodes the current String token as a field name and consumes the
// colon that follows it.
func (r *Reader) fieldName() error {
	name, err := r.s.Unquote()
	if err != nil {
		return r.malformed("%w", err)
	} else if name == "" {
		return r.malformed("empty field name")
	}
	if tok, err := r.nextToken(); err != nil {
		return err
	} else if tok != Colon {
		return r.malformed("expected %v, got %v", Colon, tok)
	}
	r.field = name
	return nil
}

func (r *Reader) pop() Event {
	top := r.stk[len(r.stk)-1]
	r.stk = r.stk[:len(r.stk)-1]
	if top.tag == TagMap {
		return EventEndMap
	}
	return EventEndArray
}

func (r *Reader) nextToken() (Token, error) {
	if len(r.stk) > 0 && r.stk[len(r.stk)-1].n < 0 {
		// The closing brace of an empty map was consumed by openMap.
		r.stk[len(r.stk)-1].n = 0
		return RBrace, nil
	}
	if err := r.s.Advance(); err == io.EOF {
		return Invalid, r.malformed("unexpected end of input")
	} else if err != nil {
		return Invalid, r.malformed("%w", err)
	}
	return r.s.Token(), nil
}

func (r *Reader) malformed(msg string, args ...any) error {
	e := Errorf(MalformedInput, msg, args...)
	e.Location = r.s.Location().First
	return e
}

func (r *Reader) checkLive() error {
	if r.closed {
		return Errorf(IllegalState, "reader is closed")
	} else if r.state == readerFailed {
		return Errorf(IllegalState, "reader stopped after error: %v", r.err)
	}
	return nil
}

// Skip skips past the value of the current event. If the current event starts
// a container, Skip consumes events through the matching end event. If the
// current event is a field name, Skip consumes the field's value. Otherwise
// Skip does nothing.
func (r *Reader) Skip() error {
	if err := r.checkLive(); err != nil {
		return err
	}
	if r.ev == EventFieldName {
		ev, err := r.Next()
		if err != nil || !ev.IsStart() {
			return err
		}
	}
	if !r.ev.IsStart() {
		return nil
	}
	target := len(r.stk) - 1
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		} else if ev.IsEnd() && len(r.stk) == target {
			return nil
		}
	}
}

// Discard consumes the remainder of the record, so that the underlying
// scanner is positioned after it. Discard works on a closed reader, and does
// not reopen it. It reports an error if the reader has already failed, or if
// the rest of the record is malformed.
func (r *Reader) Discard() error {
	switch r.state {
	case readerDone:
		return nil
	case readerFailed:
		return Errorf(IllegalState, "reader stopped after error: %v", r.err)
	}
	for {
		ev, err := r.advance()
		if err != nil {
			r.state, r.err, r.ev = readerFailed, err, EventNone
			return err
		}
		r.ev = ev
		if ev == EventEOF {
			r.state = readerDone
			return nil
		}
	}
}

// Close invalidates r. Subsequent calls to the methods of r other than
// Discard report IllegalState. Close does not consume the rest of the record
// and never reports an error; it is safe to call more than once.
func (r *Reader) Close() error {
	r.closed = true
	r.val = scalar{}
	return nil
}

// FieldName returns the name reported by the current FIELD_NAME event.
func (r *Reader) FieldName() (string, error) {
	if err := r.checkLive(); err != nil {
		return "", err
	} else if r.ev != EventFieldName {
		return "", Errorf(IllegalState, "no field name at %v event", r.ev)
	}
	return r.field, nil
}

// current checks that the current event is a scalar whose value can be read
// as tag want, and returns the tag of the event.
func (r *Reader) current(want Tag) (Tag, error) {
	if err := r.checkLive(); err != nil {
		return TagInvalid, err
	} else if !r.ev.IsScalar() {
		return TagInvalid, Errorf(IllegalState, "no %v value at %v event", want, r.ev)
	}
	have := r.ev.Tag()
	if have == want {
		return have, nil
	} else if !have.IsNumeric() || !want.IsNumeric() {
		return have, Errorf(TypeMismatch, "cannot read %v as %v", have, want)
	}
	return have, checkNumeric(have, want)
}

// Bool returns the value of the current BOOLEAN event.
func (r *Reader) Bool() (bool, error) {
	if _, err := r.current(TagBoolean); err != nil {
		return false, err
	}
	return r.val.b, nil
}

// String returns the value of the current STRING event.
func (r *Reader) String() (string, error) {
	if _, err := r.current(TagString); err != nil {
		return "", err
	}
	return r.val.str, nil
}

// Byte returns the value of the current integer event as an int8.
func (r *Reader) Byte() (int8, error) { return readInt[int8](r, TagByte) }

// Short returns the value of the current integer event as an int16.
func (r *Reader) Short() (int16, error) { return readInt[int16](r, TagShort) }

// Int returns the value of the current integer event as an int32.
func (r *Reader) Int() (int32, error) { return readInt[int32](r, TagInt) }

// Long returns the value of the current integer event as an int64.
func (r *Reader) Long() (int64, error) { return readInt[int64](r, TagLong) }

func readInt[T int8 | int16 | int32 | int64](r *Reader, want Tag) (T, error) {
	if _, err := r.current(want); err != nil {
		return 0, err
	}
	return ConvertInt[T](r.val.num)
}

// Float returns the value of the current FLOAT event. A DOUBLE value is
// narrowed if it is within range, and an integer value is converted if
// float32 represents it exactly.
func (r *Reader) Float() (float32, error) {
	have, err := r.current(TagFloat)
	if err != nil {
		return 0, err
	}
	if have.IsInteger() {
		v, err := exactFloat(r.val.num, 24)
		return float32(v), err
	}
	return ConvertFloat(r.val.flt)
}

// Double returns the value of the current DOUBLE or FLOAT event. An integer
// value is converted if float64 represents it exactly.
func (r *Reader) Double() (float64, error) {
	have, err := r.current(TagDouble)
	if err != nil {
		return 0, err
	}
	if have.IsInteger() {
		return exactFloat(r.val.num, 53)
	}
	return r.val.flt, nil
}

// Decimal returns the value of the current DECIMAL event. Any other numeric
// value is widened to a decimal.
func (r *Reader) Decimal() (decimal.Decimal, error) {
	have, err := r.current(TagDecimal)
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch {
	case have == TagDecimal:
		return r.val.dec, nil
	case have.IsInteger():
		return decimalOf(r.val.num), nil
	case !isFinite(r.val.flt):
		return decimal.Decimal{}, Errorf(NumericOverflow, "%s is not a decimal", nonFinite(r.val.flt))
	case have == TagFloat:
		return decimalOf(float32(r.val.flt)), nil
	default:
		return decimalOf(r.val.flt), nil
	}
}

// Date returns the value of the current DATE event.
func (r *Reader) Date() (Date, error) {
	if _, err := r.current(TagDate); err != nil {
		return Date{}, err
	}
	return r.val.dt, nil
}

// Time returns the value of the current TIME event.
func (r *Reader) Time() (TimeOfDay, error) {
	if _, err := r.current(TagTime); err != nil {
		return 0, err
	}
	return TimeOfDay(r.val.num), nil
}

// Timestamp returns the value of the current TIMESTAMP event, in UTC.
func (r *Reader) Timestamp() (time.Time, error) {
	if _, err := r.current(TagTimestamp); err != nil {
		return time.Time{}, err
	}
	return r.val.ts, nil
}

// Interval returns the value of the current INTERVAL event.
func (r *Reader) Interval() (Interval, error) {
	if _, err := r.current(TagInterval); err != nil {
		return Interval{}, err
	}
	return r.val.iv, nil
}

// Binary returns the value of the current BINARY event. The caller must not
// modify the contents of the returned slice.
func (r *Reader) Binary() ([]byte, error) {
	if _, err := r.current(TagBinary); err != nil {
		return nil, err
	}
	return r.val.bin, nil
}
