// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"bufio"
	"encoding/base64"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/creachadair/jrecord/internal/escape"
	"github.com/shopspring/decimal"
	"go4.org/mem"
)

// A Writer emits a single record as JSON text, one call per event.
// Output is compact and written incrementally; the underlying buffer is
// flushed when the top-level map is closed. A complete record is followed by
// a newline, so that records written in sequence form a stream a Scanner can
// read back.
//
// The methods of a Writer report IllegalState for any call that would
// produce a record not well-formed under the event model. Once a call has
// failed due to an I/O error, all further calls report IllegalState.
type Writer struct {
	w    *bufio.Writer
	stk  []frame
	buf  []byte
	done bool  // the top-level map has been closed
	err  error // I/O error, if any
	shut bool  // Close was called
}

// NewWriter constructs a Writer that delivers output to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: bufio.NewWriter(w)} }

// Depth returns the number of containers currently open.
func (w *Writer) Depth() int { return len(w.stk) }

func (w *Writer) checkLive() error {
	switch {
	case w.shut:
		return Errorf(IllegalState, "writer is closed")
	case w.err != nil:
		return Errorf(IllegalState, "writer stopped after error: %w", w.err)
	}
	return nil
}

// begin checks that a value of the given tag may be written now, and emits
// any separator required before it.
func (w *Writer) begin(tag Tag) error {
	if err := w.checkLive(); err != nil {
		return err
	}
	if len(w.stk) == 0 {
		if w.done {
			return Errorf(IllegalState, "record is already complete")
		} else if tag != TagMap {
			return Errorf(IllegalState, "record must be a map, not %v", tag)
		}
		return nil
	}
	top := &w.stk[len(w.stk)-1]
	if top.tag == TagMap {
		if !top.key {
			return Errorf(IllegalState, "%v value in map without a field name", tag)
		}
		top.key = false
		return nil
	}
	if top.n > 0 {
		w.buf = append(w.buf, ',')
	}
	top.n++
	return nil
}

// emit writes the pending contents of the buffer.
func (w *Writer) emit() error {
	_, err := w.w.Write(w.buf)
	w.buf = w.buf[:0]
	if err != nil {
		w.err = err
		return Errorf(IllegalState, "write failed: %w", err)
	}
	return nil
}

// WriteFieldName writes the name of the next field in the current map.
// It is an error if a map is not open, if the previous field name has no
// value, if name is empty, or if name is a reserved literal key at the front
// of the map.
func (w *Writer) WriteFieldName(name string) error {
	if err := w.checkLive(); err != nil {
		return err
	}
	if len(w.stk) == 0 || w.stk[len(w.stk)-1].tag != TagMap {
		return Errorf(IllegalState, "field name %q outside a map", name)
	}
	top := &w.stk[len(w.stk)-1]
	switch {
	case top.key:
		return Errorf(IllegalState, "field name %q follows a field name without a value", name)
	case name == "":
		return Errorf(IllegalState, "empty field name")
	case top.n == 0 && IsLiteralKey(name):
		return Errorf(IllegalState, "reserved key %q cannot begin a map", name)
	}
	if top.n > 0 {
		w.buf = append(w.buf, ',')
	}
	top.n++
	top.key = true
	w.buf = appendQuoted(w.buf, name)
	w.buf = append(w.buf, ':')
	return w.emit()
}

func appendQuoted(buf []byte, s string) []byte {
	buf = append(buf, '"')
	buf = escape.Append(buf, mem.S(s))
	return append(buf, '"')
}

// scalar writes a scalar whose encoding is appended to the buffer by enc.
func (w *Writer) scalar(tag Tag, enc func([]byte) []byte) error {
	if err := w.begin(tag); err != nil {
		return err
	}
	w.buf = enc(w.buf)
	return w.emit()
}

// literal writes a typed literal with the given key and payload.
func (w *Writer) literal(tag Tag, key string, payload func([]byte) []byte) error {
	return w.scalar(tag, func(buf []byte) []byte {
		buf = append(buf, '{')
		buf = appendQuoted(buf, key)
		buf = append(buf, ':')
		return append(payload(buf), '}')
	})
}

func stringPayload(s string) func([]byte) []byte {
	return func(buf []byte) []byte { return appendQuoted(buf, s) }
}

func intPayload(v int64) func([]byte) []byte {
	return func(buf []byte) []byte { return strconv.AppendInt(buf, v, 10) }
}

// WriteNull writes a null value.
func (w *Writer) WriteNull() error {
	return w.scalar(TagNull, func(buf []byte) []byte { return append(buf, "null"...) })
}

// WriteBool writes a Boolean value.
func (w *Writer) WriteBool(v bool) error {
	return w.scalar(TagBoolean, func(buf []byte) []byte { return strconv.AppendBool(buf, v) })
}

// WriteString writes a string value.
func (w *Writer) WriteString(v string) error { return w.scalar(TagString, stringPayload(v)) }

// WriteInt8 writes a byte value.
func (w *Writer) WriteInt8(v int8) error { return w.literal(TagByte, KeyByte, intPayload(int64(v))) }

// WriteShort writes a short value.
func (w *Writer) WriteShort(v int16) error {
	return w.literal(TagShort, KeyShort, intPayload(int64(v)))
}

// WriteInt writes an int value as a bare JSON integer.
func (w *Writer) WriteInt(v int32) error { return w.scalar(TagInt, intPayload(int64(v))) }

// WriteLong writes a long value. Values outside the int32 range are written
// as bare JSON integers.
func (w *Writer) WriteLong(v int64) error {
	if IntTag(v) == TagLong {
		return w.scalar(TagLong, intPayload(v))
	}
	return w.literal(TagLong, KeyLong, intPayload(v))
}

// WriteFloat writes a float value.
func (w *Writer) WriteFloat(v float32) error {
	if f := float64(v); !isFinite(f) {
		return w.literal(TagFloat, KeyFloat, stringPayload(nonFinite(f)))
	}
	return w.literal(TagFloat, KeyFloat, func(buf []byte) []byte {
		return strconv.AppendFloat(buf, float64(v), 'g', -1, 32)
	})
}

// WriteDouble writes a double value. Finite values are written as bare JSON
// numbers with a fraction or exponent.
func (w *Writer) WriteDouble(v float64) error {
	if !isFinite(v) {
		return w.literal(TagDouble, KeyDouble, stringPayload(nonFinite(v)))
	}
	return w.scalar(TagDouble, func(buf []byte) []byte { return appendDouble(buf, v) })
}

// WriteDecimal writes a decimal value.
func (w *Writer) WriteDecimal(v decimal.Decimal) error {
	return w.literal(TagDecimal, KeyDecimal, stringPayload(v.String()))
}

// WriteDate writes a date value.
func (w *Writer) WriteDate(v Date) error {
	if !v.IsValid() {
		return Errorf(IllegalState, "invalid date %v", v)
	}
	return w.literal(TagDate, KeyDate, stringPayload(v.String()))
}

// WriteTime writes a time-of-day value.
func (w *Writer) WriteTime(v TimeOfDay) error {
	if !v.IsValid() {
		return Errorf(IllegalState, "invalid time of day %d", int32(v))
	}
	return w.literal(TagTime, KeyTime, stringPayload(v.String()))
}

// WriteTimestamp writes a timestamp. The value is converted to UTC and
// truncated to millisecond precision. Its UTC year must be from 0 to 9999.
func (w *Writer) WriteTimestamp(v time.Time) error {
	ts, err := checkTimestamp(v)
	if err != nil {
		return Errorf(IllegalState, "%w", err)
	}
	return w.literal(TagTimestamp, KeyTimestamp, stringPayload(FormatTimestamp(ts)))
}

// WriteInterval writes an interval value.
func (w *Writer) WriteInterval(v Interval) error {
	return w.literal(TagInterval, KeyInterval, stringPayload(v.String()))
}

// WriteBinary writes a binary value.
func (w *Writer) WriteBinary(v []byte) error {
	return w.literal(TagBinary, KeyBinary, func(buf []byte) []byte {
		buf = append(buf, '"')
		buf = base64.StdEncoding.AppendEncode(buf, v)
		return append(buf, '"')
	})
}

// StartMap opens a new map.
func (w *Writer) StartMap() error { return w.open(TagMap, '{') }

// StartArray opens a new array.
func (w *Writer) StartArray() error { return w.open(TagArray, '[') }

func (w *Writer) open(tag Tag, ch byte) error {
	if err := w.begin(tag); err != nil {
		return err
	}
	w.stk = append(w.stk, frame{tag: tag})
	w.buf = append(w.buf, ch)
	return w.emit()
}

// EndMap closes the current map. Closing the top-level map completes the
// record and flushes the output.
func (w *Writer) EndMap() error { return w.close(TagMap, '}') }

// EndArray closes the current array.
func (w *Writer) EndArray() error { return w.close(TagArray, ']') }

func (w *Writer) close(tag Tag, ch byte) error {
	if err := w.checkLive(); err != nil {
		return err
	}
	if len(w.stk) == 0 {
		return Errorf(IllegalState, "end of %v without a matching start", tag)
	}
	top := w.stk[len(w.stk)-1]
	if top.tag != tag {
		return Errorf(IllegalState, "end of %v inside %v", tag, top.tag)
	} else if top.key {
		return Errorf(IllegalState, "end of map after a field name without a value")
	}
	w.stk = w.stk[:len(w.stk)-1]
	w.buf = append(w.buf, ch)
	if len(w.stk) != 0 {
		return w.emit()
	}
	w.done = true
	w.buf = append(w.buf, '\n')
	if err := w.emit(); err != nil {
		return err
	}
	return w.Flush()
}

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.checkLive(); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
		return Errorf(IllegalState, "flush failed: %w", err)
	}
	return nil
}

// Close checks that the record is complete and flushes any buffered output.
// After Close, all methods of w report IllegalState. Close does not close the
// underlying writer.
func (w *Writer) Close() error {
	if err := w.checkLive(); err != nil {
		return err
	}
	ferr := w.Flush()
	w.shut = true
	if len(w.stk) != 0 {
		return Errorf(IllegalState, "record is incomplete at depth %d", len(w.stk))
	}
	return ferr
}

// Copy copies the remaining events of r to w, until r reports the end of
// the record. The record is never materialized.
func Copy(w *Writer, r *Reader) error {
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		if err := copyEvent(w, r, ev); err != nil {
			return err
		}
	}
}

func copyEvent(w *Writer, r *Reader, ev Event) error {
	switch ev {
	case EventFieldName:
		return w.WriteFieldName(r.field)
	case EventStartMap:
		return w.StartMap()
	case EventEndMap:
		return w.EndMap()
	case EventStartArray:
		return w.StartArray()
	case EventEndArray:
		return w.EndArray()
	case EventNull:
		return w.WriteNull()
	case EventBoolean:
		return w.WriteBool(r.val.b)
	case EventString:
		return w.WriteString(r.val.str)
	case EventByte:
		return w.WriteInt8(int8(r.val.num))
	case EventShort:
		return w.WriteShort(int16(r.val.num))
	case EventInt:
		return w.WriteInt(int32(r.val.num))
	case EventLong:
		return w.WriteLong(r.val.num)
	case EventFloat:
		return w.WriteFloat(float32(r.val.flt))
	case EventDouble:
		return w.WriteDouble(r.val.flt)
	case EventDecimal:
		return w.WriteDecimal(r.val.dec)
	case EventDate:
		return w.WriteDate(r.val.dt)
	case EventTime:
		return w.WriteTime(TimeOfDay(r.val.num))
	case EventTimestamp:
		return w.WriteTimestamp(r.val.ts)
	case EventInterval:
		return w.WriteInterval(r.val.iv)
	case EventBinary:
		return w.WriteBinary(r.val.bin)
	}
	return Errorf(IllegalState, "cannot copy %v event", ev)
}
