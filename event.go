// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

// Event is the type of a single event reported by a Reader.
//
// Scalar events correspond one-for-one with the scalar tags: for each scalar
// tag T there is an event whose Tag method returns T, and the value of the
// event is available from the Reader's getter for T.
type Event byte

// Constants defining the valid Event values.
const (
	EventNone       Event = iota // no event has been read yet
	EventFieldName               // a map key; see Reader.FieldName
	EventNull                    // null
	EventBoolean                 // true or false
	EventString                  // string
	EventByte                    // 8-bit integer
	EventShort                   // 16-bit integer
	EventInt                     // 32-bit integer
	EventLong                    // 64-bit integer
	EventFloat                   // 32-bit float
	EventDouble                  // 64-bit float
	EventDecimal                 // decimal
	EventDate                    // date
	EventTime                    // time of day
	EventTimestamp               // timestamp
	EventInterval                // interval
	EventBinary                  // binary
	EventStartMap                // start of a map
	EventEndMap                  // end of a map
	EventStartArray              // start of an array
	EventEndArray                // end of an array
	EventEOF                     // end of input

	numEvents = iota
)

var eventInfo = [numEvents]struct {
	name string
	tag  Tag
}{
	EventNone:       {"NONE", TagInvalid},
	EventFieldName:  {"FIELD_NAME", TagInvalid},
	EventNull:       {"NULL", TagNull},
	EventBoolean:    {"BOOLEAN", TagBoolean},
	EventString:     {"STRING", TagString},
	EventByte:       {"BYTE", TagByte},
	EventShort:      {"SHORT", TagShort},
	EventInt:        {"INT", TagInt},
	EventLong:       {"LONG", TagLong},
	EventFloat:      {"FLOAT", TagFloat},
	EventDouble:     {"DOUBLE", TagDouble},
	EventDecimal:    {"DECIMAL", TagDecimal},
	EventDate:       {"DATE", TagDate},
	EventTime:       {"TIME", TagTime},
	EventTimestamp:  {"TIMESTAMP", TagTimestamp},
	EventInterval:   {"INTERVAL", TagInterval},
	EventBinary:     {"BINARY", TagBinary},
	EventStartMap:   {"START_MAP", TagMap},
	EventEndMap:     {"END_MAP", TagMap},
	EventStartArray: {"START_ARRAY", TagArray},
	EventEndArray:   {"END_ARRAY", TagArray},
	EventEOF:        {"EOF", TagInvalid},
}

func (e Event) String() string {
	if int(e) >= len(eventInfo) {
		return "INVALID"
	}
	return eventInfo[e].name
}

// Tag returns the tag associated with e. For scalar events this is the tag of
// the event's value; for container events it is TagMap or TagArray. For other
// events it returns TagInvalid.
func (e Event) Tag() Tag {
	if int(e) >= len(eventInfo) {
		return TagInvalid
	}
	return eventInfo[e].tag
}

// IsScalar reports whether e carries a scalar value.
func (e Event) IsScalar() bool { return e >= EventNull && e <= EventBinary }

// IsStart reports whether e opens a container.
func (e Event) IsStart() bool { return e == EventStartMap || e == EventStartArray }

// IsEnd reports whether e closes a container.
func (e Event) IsEnd() bool { return e == EventEndMap || e == EventEndArray }

// ScalarEvent returns the event that reports a scalar value with tag t.
// It returns EventNone if t is not a scalar tag.
func ScalarEvent(t Tag) Event {
	if !t.IsScalar() {
		return EventNone
	}
	return EventNull + Event(t-TagNull)
}
