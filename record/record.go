// Package record declares the records found in XRay flight data recorder (FDR)
// logs and the rules that map a record's discriminant byte to its variant.
//
// Overview
//
// An FDR log is a flat sequence of variable length records. The first byte of
// each record is a discriminant: bit 0 set marks a metadata record whose kind
// code is held in bits 1 through 7, bit 0 clear marks a function record. The
// variant a kind code selects depends on the log version, see Classify. Every
// variant is a distinct type implementing Record, so consumers dispatch with a
// type switch:
//
//	switch r := rec.(type) {
//	case record.Function:
//		fmt.Println(r.FuncID, r.Type)
//	case record.NewCPUID:
//		fmt.Println(r.CPU)
//	}
//
// Records are plain values. They hold no reference to the buffer they were
// decoded from except Data slices, which the encoding package copies.
package record

import (
	"fmt"
	"strings"
)

// Record is one decoded record. It is implemented only by the types in this
// package.
type Record interface {
	Kind() Kind
	String() string
	isRecord()
}

// NewBuffer opens the buffer of a single thread.
type NewBuffer struct {
	TID int32
}

// EndOfBuffer closes a fixed size buffer in Version1 logs.
type EndOfBuffer struct{}

// NewCPUID records the CPU the thread is running on. TSC is only carried from
// Version3 onward.
type NewCPUID struct {
	CPU uint16
	TSC uint64
}

// TSCWrap resets the base TSC function deltas are relative to.
type TSCWrap struct {
	BaseTSC uint64
}

// Wallclock is the wall clock time when the buffer was started.
type Wallclock struct {
	Seconds uint64
	Nanos   uint32
}

// CustomEvent is a user supplied event in logs before Version5. CPU is only
// carried from Version3 onward.
type CustomEvent struct {
	Size int32
	TSC  uint64
	CPU  uint16
	Data []byte
}

// CustomEventV5 is a user supplied event in Version5 logs and later.
type CustomEventV5 struct {
	Size  int32
	Delta int32
	Data  []byte
}

// CallArg is an argument captured for the preceding function entry.
type CallArg struct {
	Arg uint64
}

// BufferExtents is the number of bytes of records that follow it in the
// buffer.
type BufferExtents struct {
	Size uint64
}

// TypedEvent is a user supplied event carrying a user defined type.
type TypedEvent struct {
	Size      int32
	Delta     int32
	EventType uint16
	Data      []byte
}

// Function marks the entry or exit of an instrumented function.
type Function struct {
	Type   FunctionType
	FuncID int32
	Delta  uint32
}

func (NewBuffer) Kind() Kind     { return KindNewBuffer }
func (EndOfBuffer) Kind() Kind   { return KindEndOfBuffer }
func (NewCPUID) Kind() Kind      { return KindNewCPUID }
func (TSCWrap) Kind() Kind       { return KindTSCWrap }
func (Wallclock) Kind() Kind     { return KindWallclock }
func (CustomEvent) Kind() Kind   { return KindCustomEvent }
func (CustomEventV5) Kind() Kind { return KindCustomEventV5 }
func (CallArg) Kind() Kind       { return KindCallArg }
func (BufferExtents) Kind() Kind { return KindBufferExtents }
func (TypedEvent) Kind() Kind    { return KindTypedEvent }
func (Function) Kind() Kind      { return KindFunction }

func (NewBuffer) isRecord()     {}
func (EndOfBuffer) isRecord()   {}
func (NewCPUID) isRecord()      {}
func (TSCWrap) isRecord()       {}
func (Wallclock) isRecord()     {}
func (CustomEvent) isRecord()   {}
func (CustomEventV5) isRecord() {}
func (CallArg) isRecord()       {}
func (BufferExtents) isRecord() {}
func (TypedEvent) isRecord()    {}
func (Function) isRecord()      {}

func (r NewBuffer) String() string {
	return fmt.Sprintf(`record.NewBuffer(tid %d)`, r.TID)
}

func (r EndOfBuffer) String() string {
	return `record.EndOfBuffer`
}

func (r NewCPUID) String() string {
	return fmt.Sprintf(`record.NewCPUID(cpu %d tsc %d)`, r.CPU, r.TSC)
}

func (r TSCWrap) String() string {
	return fmt.Sprintf(`record.TSCWrap(base %d)`, r.BaseTSC)
}

func (r Wallclock) String() string {
	return fmt.Sprintf(`record.Wallclock(%d.%09d)`, r.Seconds, r.Nanos)
}

func (r CustomEvent) String() string {
	return fmt.Sprintf(`record.CustomEvent(tsc %d cpu %d size %d %q)`,
		r.TSC, r.CPU, r.Size, r.Data)
}

func (r CustomEventV5) String() string {
	return fmt.Sprintf(`record.CustomEventV5(+%d size %d %q)`,
		r.Delta, r.Size, r.Data)
}

func (r CallArg) String() string {
	return fmt.Sprintf(`record.CallArg(%d 0x%x)`, r.Arg, r.Arg)
}

func (r BufferExtents) String() string {
	return fmt.Sprintf(`record.BufferExtents(%d bytes)`, r.Size)
}

func (r TypedEvent) String() string {
	return fmt.Sprintf(`record.TypedEvent(+%d type %d size %d %q)`,
		r.Delta, r.EventType, r.Size, r.Data)
}

func (r Function) String() string {
	return fmt.Sprintf(`record.Function(%v #%d +%d)`, r.Type, r.FuncID, r.Delta)
}

// These are the function record types packed into bits 1 through 3 of a
// function record.
const (
	FuncEnter     FunctionType = 0
	FuncExit      FunctionType = 1
	FuncTailExit  FunctionType = 2
	FuncEnterArgs FunctionType = 3
	funcTypeCount FunctionType = 4
)

// FunctionType tells apart entries, exits and tail exits of a function.
type FunctionType uint8

var funcTypeNames = [funcTypeCount]string{
	FuncEnter:     `enter`,
	FuncExit:      `exit`,
	FuncTailExit:  `tail-exit`,
	FuncEnterArgs: `enter-args`,
}

// Valid returns true if the FunctionType is known, false otherwise.
func (t FunctionType) Valid() bool {
	return t < funcTypeCount
}

// String implements fmt.Stringer.
func (t FunctionType) String() string {
	if !t.Valid() {
		return fmt.Sprintf(`FunctionType(%d)`, uint8(t))
	}
	return funcTypeNames[t]
}

// ParseKind returns the Kind with the given name, ignoring case.
func ParseKind(name string) (Kind, bool) {
	for k := KindNewBuffer; k < kindCount; k++ {
		if strings.EqualFold(schemas[k].name, name) {
			return k, true
		}
	}
	return KindNone, false
}
