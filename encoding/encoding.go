// Package encoding implements a Decoder and Encoder for XRay flight data
// recorder (FDR) logs. For the record types themselves see the record package.
//
// Overview
//
// An FDR log is a 32 byte Header followed by a flat, unprefixed sequence of
// variable length records. There is no index: records are decoded strictly in
// order, the first byte of each deciding what the rest of it holds. The
// Producer is the core of the package, each call to Produce decodes exactly one
// record from a Cursor over an in-memory buffer:
//
//	c := encoding.NewCursor(buf)
//	p := encoding.NewProducer(c, hdr)
//	for c.Len() > 0 {
//		rec, err := p.Produce()
//		if err != nil {
//			return fmt.Errorf("offset %d: %w", c.Off(), err)
//		}
//		fmt.Println(rec)
//	}
//
// The Decoder wraps this loop for whole files read from an io.Reader,
// decoding the header first and skipping the padding of fixed size Version1
// buffers.
//
// Compatibility
//
// The format has evolved across five versions. Kinds that were removed, such
// as EndOfBuffer in Version2, are rejected with a *ClassifyError wrapping a
// *record.UnsupportedError. Kinds whose layout changed, such as custom events
// in Version5, decode to distinct record types so no field is ever
// reinterpreted between versions. Version specific fields that a version does
// not carry are left as zero values.
//
// Errors
//
// Every failure is final for the record being decoded. Errors match one of the
// sentinels ErrTruncated, ErrMalformed, record.ErrUnknownKind or
// record.ErrUnsupported through errors.Is, and the typed errors carry the
// offset of the failure for diagnostics.
package encoding
