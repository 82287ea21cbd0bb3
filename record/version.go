package record

import "fmt"

// Version information:
//
//   Version1 - initial flight data recorder layout
//     Buffers have a fixed size and close with an EndOfBuffer record.
//
//   Version2
//     EndOfBuffer removed, buffers open with BufferExtents instead.
//
//   Version3
//     NewCPUID carries the TSC, CustomEvent carries the CPU.
//
//   Version4
//     No record layout changes visible to the decoder.
//
//   Version5
//     CustomEvent replaced by a delta encoded layout, TypedEvent in common use.
//
const (

	// Version1 is the initial FDR log format.
	Version1 Version = 1

	// Version2 dropped EndOfBuffer records in favour of BufferExtents.
	Version2 Version = 2

	// Version3 added TSC and CPU fields to NewCPUID and CustomEvent records.
	Version3 Version = 3

	// Version4 is layout compatible with Version3.
	Version4 Version = 4

	// Version5 introduced the delta encoded custom event layout.
	Version5 Version = 5

	// Latest always points to the newest known version for convenience.
	Latest = Version5
)

// Version of the FDR log format declared in the file header.
type Version uint16

// Valid returns true if this version is one this package knows how to decode,
// false otherwise.
func (v Version) Valid() bool {
	return Version1 <= v && v <= Latest
}

// Kinds returns the record kinds a log of this version may contain.
func (v Version) Kinds() []Kind {
	var out []Kind
	for k := KindNewBuffer; k < kindCount; k++ {
		if k.In(v) {
			out = append(out, k)
		}
	}
	return out
}

// String implements fmt.Stringer.
func (v Version) String() string {
	if !v.Valid() {
		return fmt.Sprintf(`Version(%d unknown)`, uint16(v))
	}
	return fmt.Sprintf(`Version(#%d)`, uint16(v))
}
