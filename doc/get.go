// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package doc

import (
	"github.com/creachadair/jrecord"
)

// Get traverses a sequential path into the structure of v, where path
// elements are strings (denoting map keys), integers (denoting offsets into
// arrays), or functions (see below). If the path is fully consumed, Get
// returns the value reached and true.
//
// If a key is not present in its map, or an offset is out of bounds for its
// array, Get returns nil, false, nil. Negative offsets count backward from
// the end of the array (-1 is last, -2 second last).
//
// If a string element meets a value that is not a map, or an integer element
// meets a value that is not an array, Get reports TypeMismatch.
//
// If a path element is a function, the function is executed and its result
// becomes the next value in the sequence. The function must have a signature
//
//	func(Value) (Value, error)
//
// If the function reports an error, traversal stops and the error is
// returned. If it returns a nil Value, the path is absent.
func Get(v Value, path ...any) (Value, bool, error) {
	cur := v
	for i, elt := range path {
		switch t := elt.(type) {
		case string:
			m, ok := cur.(*Map)
			if !ok {
				return nil, false, stepError(cur, i, elt)
			}
			next, ok := m.Lookup(t)
			if !ok {
				return nil, false, nil
			}
			cur = next

		case int:
			a, ok := cur.(Array)
			if !ok {
				return nil, false, stepError(cur, i, elt)
			}
			j, ok := fixArrayBound(len(a), t)
			if !ok {
				return nil, false, nil
			}
			cur = a[j]

		case func(Value) (Value, error):
			next, err := t(cur)
			if err != nil {
				return nil, false, err
			} else if next == nil {
				return nil, false, nil
			}
			cur = next

		default:
			return nil, false, jrecord.Errorf(jrecord.TypeMismatch, "invalid path element %T", elt)
		}
	}
	return cur, true, nil
}

func stepError(cur Value, i int, elt any) error {
	return jrecord.Errorf(jrecord.TypeMismatch, "path element %d: cannot traverse %v with %#v", i, TagOf(cur), elt)
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
