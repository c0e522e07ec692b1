// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package doc

import (
	"bytes"
	"io"

	"github.com/creachadair/jrecord"
)

// Write writes m as a complete record to w.
func Write(w *jrecord.Writer, m *Map) error { return writeValue(w, m) }

func writeValue(w *jrecord.Writer, v Value) error {
	switch t := v.(type) {
	case *Map:
		if err := w.StartMap(); err != nil {
			return err
		}
		for key, val := range t.Members() {
			if err := w.WriteFieldName(key); err != nil {
				return err
			}
			if err := writeValue(w, val); err != nil {
				return err
			}
		}
		return w.EndMap()
	case Array:
		if err := w.StartArray(); err != nil {
			return err
		}
		for _, elt := range t {
			if err := writeValue(w, elt); err != nil {
				return err
			}
		}
		return w.EndArray()
	case Null:
		return w.WriteNull()
	case Bool:
		return w.WriteBool(bool(t))
	case String:
		return w.WriteString(string(t))
	case Byte:
		return w.WriteInt8(int8(t))
	case Short:
		return w.WriteShort(int16(t))
	case Int:
		return w.WriteInt(int32(t))
	case Long:
		return w.WriteLong(int64(t))
	case Float:
		return w.WriteFloat(float32(t))
	case Double:
		return w.WriteDouble(float64(t))
	case Decimal:
		return w.WriteDecimal(t.Decimal)
	case Date:
		return w.WriteDate(t.Date)
	case Time:
		return w.WriteTime(t.TimeOfDay)
	case Timestamp:
		return w.WriteTimestamp(t.Time)
	case Interval:
		return w.WriteInterval(t.Interval)
	case Binary:
		return w.WriteBinary(t)
	}
	return jrecord.Errorf(jrecord.IllegalState, "cannot write %T", v)
}

// Marshal renders m as JSON text, followed by a newline.
func Marshal(m *Map) ([]byte, error) {
	var buf bytes.Buffer
	w := jrecord.NewWriter(&buf)
	if err := Write(w, m); err != nil {
		return nil, err
	} else if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse reads a single record from r and returns it as a tree.
// Input after the end of the record is not consumed.
func Parse(r io.Reader, opts *jrecord.Options, dopts *Options) (*Map, error) {
	return Materialize(jrecord.NewReader(r, opts), dopts)
}
