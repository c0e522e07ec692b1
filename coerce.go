// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

// ConvertInt converts v to the signed integer type T. It reports an error of
// kind NumericOverflow if v does not fit in T; the value is never truncated.
// Converting to int64 always succeeds.
func ConvertInt[T constraints.Signed](v int64) (T, error) {
	out := T(v)
	if int64(out) != v {
		return 0, Errorf(NumericOverflow, "value %d does not fit in %T", v, out)
	}
	return out, nil
}

// ConvertFloat converts v to float32. It reports an error of kind
// NumericOverflow if v is finite but rounds to an infinite float32.
// Precision may be lost.
func ConvertFloat(v float64) (float32, error) {
	f := float32(v)
	if math.IsInf(float64(f), 0) && !math.IsInf(v, 0) {
		return 0, Errorf(NumericOverflow, "value %g does not fit in float32", v)
	}
	return f, nil
}

// IntTag returns the narrowest of TagInt and TagLong that represents v.
// This is the tag assigned to a bare JSON integer literal.
func IntTag(v int64) Tag {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return TagInt
	}
	return TagLong
}

// number is the set of Go types that hold the numeric tags other than
// decimal.
type number interface {
	constraints.Signed | constraints.Float
}

// decimalOf converts an integer or floating-point value to a decimal.
func decimalOf[T number](v T) decimal.Decimal {
	switch t := any(v).(type) {
	case float32:
		return decimal.NewFromFloat32(t)
	case float64:
		return decimal.NewFromFloat(t)
	}
	return decimal.NewFromInt(int64(v))
}

// checkNumeric reports whether a value of tag have can be read as tag want
// under the numeric conversion rules:
//
//   - integers convert among themselves, with overflow checks
//   - integers convert to float and double if the value is exact
//   - float widens to double; double narrows to float with a range check
//   - every integer and floating tag widens to decimal
//
// All other pairs of distinct tags are a type mismatch. In particular,
// floating values never convert to integers and decimals never narrow.
func checkNumeric(have, want Tag) error {
	isFloat := func(t Tag) bool { return t == TagFloat || t == TagDouble }
	switch {
	case have == want:
		return nil
	case have.IsInteger() && (want.IsInteger() || isFloat(want)):
		return nil
	case isFloat(have) && isFloat(want):
		return nil
	case want == TagDecimal && have.IsNumeric():
		return nil
	}
	return Errorf(TypeMismatch, "cannot read %v as %v", have, want)
}

// exactFloat converts an integer to a floating-point value with the given
// number of mantissa bits, reporting NumericOverflow if the conversion would
// lose precision.
func exactFloat(v int64, mantissa uint) (float64, error) {
	lim := int64(1) << mantissa
	if v > lim || v < -lim {
		return 0, Errorf(NumericOverflow, "integer %d is not exact in %d mantissa bits", v, mantissa)
	}
	return float64(v), nil
}
