// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jrecord implements a typed event codec for JSON records.
//
// A record is a JSON object whose values carry types richer than JSON's own:
// sized integers, single and double precision floats, decimals, dates, times
// of day, timestamps, intervals, and binary data. Those types that JSON cannot
// spell directly are written as one-member objects whose key names the type.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON. Construct a scanner
// from an io.Reader and call its Next method to iterate over the stream. Next
// advances to the next input token and returns nil, or reports an error:
//
//	s := jrecord.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// indicates an I/O or lexical error in the input.
//
// # Reading
//
// A Reader is a pull cursor over the events of one record. Each call to Next
// reports one event; for scalar events the value is available from the getter
// matching its tag:
//
//	r := jrecord.NewReader(input, nil)
//	for {
//	   ev, err := r.Next()
//	   if err == io.EOF {
//	      break
//	   } else if err != nil {
//	      log.Fatalf("Read failed: %v", err)
//	   }
//	   if ev == jrecord.EventFieldName {
//	      name, _ := r.FieldName()
//	      log.Printf("field %q", name)
//	   }
//	}
//
// Getters convert numeric values where no information is lost: integers
// convert among themselves with range checks, integers convert to floats when
// the result is exact, floats and doubles interconvert, and every numeric
// value widens to a decimal. Other conversions report TypeMismatch.
//
// # Writing
//
// A Writer emits one record, one call per event, and rejects any sequence
// of calls that would not produce a well-formed record. Copy transcodes a
// Reader into a Writer without building a value tree.
//
// # Typed literals
//
// The extended types use the following spellings:
//
//	Type       | Spelling
//	---------- | -------------------------------------------------------------
//	byte       | {"$numberByte": 5}
//	short      | {"$numberShort": 500}
//	int        | 5 (bare integer in int32 range), or {"$numberInt": 5}
//	long       | 5000000000 (outside int32 range), or {"$numberLong": 5}
//	float      | {"$numberFloat": 1.5}
//	double     | 1.5 (bare number with fraction or exponent),
//	           | or {"$numberDouble": "NaN"} (also "Infinity", "-Infinity")
//	decimal    | {"$decimal": "12.345"}
//	date       | {"$dateDay": "2015-01-21"}
//	time       | {"$time": "13:45:10.250"}
//	timestamp  | {"$date": "2015-01-21T13:45:10.250Z"}, or epoch milliseconds
//	interval   | {"$interval": "2d3600000ms"}, or total milliseconds
//	binary     | {"$binary": "aGVsbG8="} (standard base64)
//
// An object whose first key is one of these names is a typed literal and must
// have exactly one member. Writers therefore refuse to start a map with one
// of the reserved keys.
//
// # Errors
//
// Errors reported by this package and its subpackages have concrete type
// *Error, and are classified by Kind:
//
//	if errors.Is(err, jrecord.TypeMismatch) {
//	   // retry with a different getter
//	}
package jrecord
