// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

// Tag identifies the type of a value among the closed set of scalar and
// container types supported by the data model.
type Tag byte

// Constants defining the valid Tag values.
const (
	TagInvalid   Tag = iota // not a valid tag
	TagNull                 // the null value
	TagBoolean              // true or false
	TagString               // a Unicode string
	TagByte                 // 8-bit signed integer
	TagShort                // 16-bit signed integer
	TagInt                  // 32-bit signed integer
	TagLong                 // 64-bit signed integer
	TagFloat                // 32-bit IEEE 754 floating point
	TagDouble               // 64-bit IEEE 754 floating point
	TagDecimal              // arbitrary-precision signed decimal
	TagDate                 // calendar date without time or zone
	TagTime                 // time of day with millisecond precision
	TagTimestamp            // instant with millisecond precision
	TagInterval             // signed (days, milliseconds) pair
	TagBinary               // opaque byte sequence
	TagMap                  // ordered map from field name to value
	TagArray                // ordered sequence of values

	numTags = iota
)

var tagStr = [numTags]string{
	TagInvalid:   "invalid",
	TagNull:      "null",
	TagBoolean:   "boolean",
	TagString:    "string",
	TagByte:      "byte",
	TagShort:     "short",
	TagInt:       "int",
	TagLong:      "long",
	TagFloat:     "float",
	TagDouble:    "double",
	TagDecimal:   "decimal",
	TagDate:      "date",
	TagTime:      "time",
	TagTimestamp: "timestamp",
	TagInterval:  "interval",
	TagBinary:    "binary",
	TagMap:       "map",
	TagArray:     "array",
}

func (t Tag) String() string {
	if int(t) >= len(tagStr) {
		return tagStr[TagInvalid]
	}
	return tagStr[t]
}

// IsValid reports whether t is one of the defined tags other than TagInvalid.
func (t Tag) IsValid() bool { return t > TagInvalid && int(t) < numTags }

// IsScalar reports whether t is a non-container tag.
func (t Tag) IsScalar() bool { return t.IsValid() && t != TagMap && t != TagArray }

// IsContainer reports whether t is TagMap or TagArray.
func (t Tag) IsContainer() bool { return t == TagMap || t == TagArray }

// IsInteger reports whether t is one of the fixed-width integer tags.
func (t Tag) IsInteger() bool { return t >= TagByte && t <= TagLong }

// IsNumeric reports whether t is an integer, floating point, or decimal tag.
func (t Tag) IsNumeric() bool { return t >= TagByte && t <= TagDecimal }
