package encoding

import (
	"fmt"

	"github.com/cstockton/go-xray/record"
)

const (
	// Guards against a bad trace file or decoder bug from causing oom
	maxMakeSize = 1e6

	// Metadata records are a discriminant byte followed by a fixed size body,
	// fields are packed at the start of the body and the rest is padding.
	metadataBodySize = 15

	functionTypeShift = 1
	functionTypeMask  = 0x7
	functionIDShift   = 4
)

const (

	// MetadataRecordSize is the size of a metadata record excluding the data
	// trailing custom and typed events.
	MetadataRecordSize = 1 + metadataBodySize

	// FunctionRecordSize is the size of a function record, a little endian
	// uint32 whose low byte is the discriminant followed by a uint32 tsc delta.
	//
	//   bit  0     : function record indicator (always 0)
	//   bits 1..3  : function type
	//   bits 4..31 : function id
	FunctionRecordSize = 8

	// MaxFunctionID is the largest function id a function record can hold.
	MaxFunctionID = 1<<28 - 1
)

// FieldDecoder decodes the payload of a record whose kind has already been
// resolved from its discriminant byte. It is called with the cursor positioned
// just past the discriminant and must return a fully populated record, or a
// nil record and an error. On error the cursor reflects only the bytes that
// were consumed before the failure was detected.
type FieldDecoder interface {
	DecodeFields(c *Cursor, h Header, k record.Kind, discriminant byte) (record.Record, error)
}

// FieldDecoderFunc is an adapter to allow the use of ordinary functions as
// FieldDecoders.
type FieldDecoderFunc func(c *Cursor, h Header, k record.Kind, discriminant byte) (record.Record, error)

// DecodeFields calls fn(c, h, k, discriminant).
func (fn FieldDecoderFunc) DecodeFields(c *Cursor, h Header, k record.Kind, discriminant byte) (record.Record, error) {
	return fn(c, h, k, discriminant)
}

// FDRFields is the FieldDecoder for the record layouts written by the XRay
// flight data recorder runtime.
var FDRFields FieldDecoder = FieldDecoderFunc(decodeFields)

// decodeFields decodes the record of kind k in the FDR layouts.
func decodeFields(c *Cursor, h Header, k record.Kind, discriminant byte) (record.Record, error) {
	if k == record.KindFunction {
		return decodeFunction(c, discriminant)
	}
	if !k.Metadata() {
		return nil, &FieldError{Kind: k, Offset: c.Off(),
			Err: fmt.Errorf(`no field layout for %v`, k)}
	}

	start := c.Off()
	p, err := c.next(metadataBodySize)
	if err != nil {
		return nil, &FieldError{Kind: k, Offset: start, Err: err}
	}

	// The body is fully buffered so reads from it can not fail, but the
	// fields must stay within the body.
	body := NewCursor(p)
	switch k {
	case record.KindNewBuffer:
		var r record.NewBuffer
		r.TID, _ = body.I32()
		return r, nil

	case record.KindEndOfBuffer:
		return record.EndOfBuffer{}, nil

	case record.KindNewCPUID:
		var r record.NewCPUID
		r.CPU, _ = body.U16()
		if h.Version >= record.Version3 {
			r.TSC, _ = body.U64()
		}
		return r, nil

	case record.KindTSCWrap:
		var r record.TSCWrap
		r.BaseTSC, _ = body.U64()
		return r, nil

	case record.KindWallclock:
		var r record.Wallclock
		r.Seconds, _ = body.U64()
		r.Nanos, _ = body.U32()
		return r, nil

	case record.KindCallArg:
		var r record.CallArg
		r.Arg, _ = body.U64()
		return r, nil

	case record.KindBufferExtents:
		var r record.BufferExtents
		r.Size, _ = body.U64()
		return r, nil

	case record.KindCustomEvent:
		var r record.CustomEvent
		r.Size, _ = body.I32()
		r.TSC, _ = body.U64()
		if h.Version >= record.Version3 {
			r.CPU, _ = body.U16()
		}
		if r.Data, err = decodeEventData(c, k, r.Size); err != nil {
			return nil, err
		}
		return r, nil

	case record.KindCustomEventV5:
		var r record.CustomEventV5
		r.Size, _ = body.I32()
		r.Delta, _ = body.I32()
		if r.Data, err = decodeEventData(c, k, r.Size); err != nil {
			return nil, err
		}
		return r, nil

	case record.KindTypedEvent:
		var r record.TypedEvent
		r.Size, _ = body.I32()
		r.Delta, _ = body.I32()
		r.EventType, _ = body.U16()
		if r.Data, err = decodeEventData(c, k, r.Size); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, &FieldError{Kind: k, Offset: start,
		Err: fmt.Errorf(`no field layout for %v`, k)}
}

// decodeEventData reads the size bytes of data trailing a custom or typed event
// record.
func decodeEventData(c *Cursor, k record.Kind, size int32) ([]byte, error) {
	if size <= 0 {
		return nil, &FieldError{Kind: k, Offset: c.Off(),
			Err: fmt.Errorf(`invalid event size %d`, size)}
	}
	if maxMakeSize < size {
		return nil, &FieldError{Kind: k, Offset: c.Off(),
			Err: fmt.Errorf(`event size %v exceeds allocation limit(%v)`, size, maxMakeSize)}
	}
	data, err := c.Bytes(int(size))
	if err != nil {
		return nil, &FieldError{Kind: k, Offset: c.Off(),
			Err: fmt.Errorf(`reading %d bytes of event data: %w`, size, err)}
	}
	return data, nil
}

// decodeFunction decodes the 7 bytes of a function record that follow its
// discriminant.
func decodeFunction(c *Cursor, discriminant byte) (record.Record, error) {
	start := c.Off()
	p, err := c.next(FunctionRecordSize - 1)
	if err != nil {
		return nil, &FieldError{Kind: record.KindFunction, Offset: start, Err: err}
	}

	raw := uint32(discriminant) | uint32(p[0])<<8 | uint32(p[1])<<16 | uint32(p[2])<<24
	typ := record.FunctionType(raw >> functionTypeShift & functionTypeMask)
	if !typ.Valid() {
		return nil, &FieldError{Kind: record.KindFunction, Offset: start - 1,
			Err: fmt.Errorf(`invalid function record type %d`, uint8(typ))}
	}

	rest := NewCursor(p[3:])
	r := record.Function{Type: typ, FuncID: int32(raw >> functionIDShift)}
	r.Delta, _ = rest.U32()
	return r, nil
}
