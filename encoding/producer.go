package encoding

import (
	"errors"

	"github.com/cstockton/go-xray/record"
)

// Producer decodes one record at a time from a Cursor. Each call to Produce
// advances the cursor by exactly the bytes of the record it returns.
//
// A Producer is not safe for concurrent use, and neither is the Cursor it
// reads from. The Header is only read, so one Header may be shared by many
// Producers decoding different buffers.
type Producer struct {
	c      *Cursor
	h      Header
	fields FieldDecoder
}

// NewProducer returns a Producer reading records of the log described by h
// from c, using the FDR field layouts.
func NewProducer(c *Cursor, h Header) *Producer {
	return &Producer{c: c, h: h, fields: FDRFields}
}

// SetFieldDecoder replaces the decoder used for record payloads. A nil fd
// restores the FDR layouts.
func (p *Producer) SetFieldDecoder(fd FieldDecoder) {
	if fd == nil {
		fd = FDRFields
	}
	p.fields = fd
}

// Header returns the header the Producer decodes records for.
func (p *Producer) Header() Header {
	return p.h
}

// Produce decodes the record at the cursor. The variant is chosen from the
// discriminant byte and header version alone before any payload is read:
//
//   - no byte left: *TruncatedError, the cursor does not move
//   - bit 0 clear: a function record
//   - bit 0 set: the metadata kind in bits 1..7 as resolved by record.Classify,
//     failures are returned as a *ClassifyError wrapping the cause
//
// Errors from the field decoder are returned as is. After any error the
// record is nil and the cursor offset is only meaningful for diagnostics.
func (p *Producer) Produce() (record.Record, error) {
	start := p.c.Off()
	b, err := p.c.ReadByte()
	if err != nil {
		return nil, &TruncatedError{Offset: start}
	}

	kind := record.KindFunction
	if b&0x01 != 0 {
		code := b >> 1
		if kind, err = record.Classify(p.h.Version, code); err != nil {
			return nil, &ClassifyError{Code: code, Offset: start, Err: err}
		}
	}

	rec, err := p.fields.DecodeFields(p.c, p.h, kind, b)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &FieldError{Kind: kind, Offset: start,
			Err: errors.New(`field decoder returned no record`)}
	}
	return rec, nil
}
