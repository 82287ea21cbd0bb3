package record

import "fmt"

// These are the record variants that may appear in an FDR log. Their numeric
// values are not the wire kind codes, see Kind.Code for those.
const (
	KindNone          Kind = 0  // unused
	KindNewBuffer     Kind = 1  // start of a thread buffer [tid]
	KindEndOfBuffer   Kind = 2  // end of a fixed size buffer, version 1 only
	KindNewCPUID      Kind = 3  // thread moved to a cpu [cpu, tsc]
	KindTSCWrap       Kind = 4  // tsc base after a delta overflow [base tsc]
	KindWallclock     Kind = 5  // wall clock at buffer start [seconds, nanos]
	KindCustomEvent   Kind = 6  // custom event before version 5 [size, tsc, cpu, data]
	KindCustomEventV5 Kind = 7  // custom event since version 5 [size, delta, data]
	KindCallArg       Kind = 8  // argument of the preceding function entry [arg]
	KindBufferExtents Kind = 9  // number of bytes used by the buffer [size]
	KindTypedEvent    Kind = 10 // typed custom event [size, delta, event type, data]
	KindFunction      Kind = 11 // function entry or exit [type, func id, delta]
	kindCount         Kind = 12
)

// MetadataCodeCount is the number of metadata kind codes, any code at or above
// it is invalid in every version.
const MetadataCodeCount = 9

// Kind identifies one of the record variants.
type Kind uint8

type schema struct {
	name  string
	desc  string
	code  int8    // metadata kind code, -1 for non metadata records
	since Version // first version carrying the kind
	until Version // first version without the kind, zero if never removed
}

var schemas = [kindCount]schema{
	KindNone:          {"None", "none", -1, 0, 0},
	KindNewBuffer:     {"NewBuffer", "new-buffer", 0, 0, 0},
	KindEndOfBuffer:   {"EndOfBuffer", "end-of-buffer", 1, 0, Version2},
	KindNewCPUID:      {"NewCPUID", "new-cpu-id", 2, 0, 0},
	KindTSCWrap:       {"TSCWrap", "tsc-wrap", 3, 0, 0},
	KindWallclock:     {"Wallclock", "wallclock", 4, 0, 0},
	KindCustomEvent:   {"CustomEvent", "custom-event", 5, 0, Version5},
	KindCustomEventV5: {"CustomEventV5", "custom-event", 5, Version5, 0},
	KindCallArg:       {"CallArg", "call-argument", 6, 0, 0},
	KindBufferExtents: {"BufferExtents", "buffer-extents", 7, 0, 0},
	KindTypedEvent:    {"TypedEvent", "typed-event", 8, 0, 0},
	KindFunction:      {"Function", "function", -1, 0, 0},
}

// codes maps each metadata kind code to the kinds that have used it, ordered
// by the version they were introduced in.
var codes [MetadataCodeCount][]Kind

func init() {
	for k := KindNewBuffer; k < kindCount; k++ {
		if c := schemas[k].code; c >= 0 {
			codes[c] = append(codes[c], k)
		}
	}
}

// Classify maps a metadata kind code read from the discriminant byte of a
// record to the record variant it selects under version v. It returns an
// *UnknownKindError for codes at or above MetadataCodeCount and an
// *UnsupportedError for codes the version no longer carries.
func Classify(v Version, code uint8) (Kind, error) {
	if code >= MetadataCodeCount {
		return KindNone, &UnknownKindError{Code: code}
	}

	kinds := codes[code]
	for _, k := range kinds {
		if k.In(v) {
			return k, nil
		}
	}

	// Every code has a kind carried since the first version, so a code v does
	// not carry was removed by its most recent kind.
	s := schemas[kinds[len(kinds)-1]]
	return KindNone, &UnsupportedError{
		Code:    code,
		Version: v,
		Reason:  fmt.Sprintf(`%v records removed since version %d`, s.desc, s.until),
	}
}

// Valid returns true if the Kind is a record variant, false otherwise.
func (k Kind) Valid() bool {
	return KindNone < k && k < kindCount
}

// Name returns the name of this record kind.
func (k Kind) Name() string {
	return k.schema().name
}

// Metadata reports whether records of this kind are metadata records.
func (k Kind) Metadata() bool {
	return k.schema().code >= 0
}

// Code returns the metadata kind code written in the discriminant byte, or -1
// if records of this kind are not metadata records.
func (k Kind) Code() int {
	return int(k.schema().code)
}

func (k Kind) schema() schema {
	if !k.Valid() {
		return schemas[KindNone]
	}
	return schemas[k]
}

// In reports whether records of this kind may appear in a log of version v.
func (k Kind) In(v Version) bool {
	if !k.Valid() {
		return false
	}
	s := schemas[k]
	return s.since <= v && (s.until == 0 || v < s.until)
}

// String implements fmt.Stringer by returning a helpful string describing this
// record kind.
func (k Kind) String() string {
	return fmt.Sprintf(`record.%v`, k.Name())
}
