package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cstockton/go-xray/record"
)

// Encoder writes records encoded in the FDR log format to an output stream.
//
// Records produced by the Encoder are always lexically correct for the header
// version, logical consistency with runtime produced logs (buffer extents,
// tsc deltas) is the responsibility of the caller. It is included for testing
// systems that consume FDR logs and for filtering existing logs.
type Encoder struct {
	w   *offsetWriter
	h   Header
	err error
	buf []byte
	hdr bool
}

// NewEncoder returns a new encoder that emits records to w in the layout of the
// log described by h. The header is written before the first record.
func NewEncoder(w io.Writer, h Header) *Encoder {
	return &Encoder{w: &offsetWriter{w: w}, h: h}
}

// Err returns the first error that occurred during encoding, once an error
// occurs all future calls to Err() will return the same value.
func (e *Encoder) Err() error {
	return e.err
}

// Off returns the number of bytes written to the output stream.
func (e *Encoder) Off() int {
	return e.w.Off()
}

// Reset the Encoder for writing a new log to w.
func (e *Encoder) Reset(w io.Writer) {
	e.err, e.hdr, e.w.off, e.w.w = nil, false, 0, w
}

// Flush writes the header if no record has been emitted yet, so that an empty
// log is still well formed.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writeHeader()
}

// Emit writes a single record to the output stream. If Emit returns a non-nil
// error then failure is permanent and all future calls will immediately return
// the same error.
func (e *Encoder) Emit(rec record.Record) error {
	if e.err != nil {
		// Once an error occurs the encoder may no longer be used.
		return e.err
	}
	if err := e.writeHeader(); err != nil {
		return err
	}

	var err error
	if e.buf, err = AppendRecord(e.buf[:0], e.h, rec); err != nil {
		e.err = fmt.Errorf(`%w at 0x%x`, err, e.w.Off())
		return e.err
	}
	if err = e.write(e.buf); err != nil {
		return err
	}
	return nil
}

func (e *Encoder) writeHeader() error {
	if e.hdr {
		return nil
	}
	if e.h.Type != LogTypeFDR || !e.h.Version.Valid() {
		e.err = ErrVersion
		return e.err
	}
	if err := e.write(AppendHeader(nil, e.h)); err != nil {
		return err
	}
	e.hdr = true
	return nil
}

func (e *Encoder) write(p []byte) error {
	n, err := e.w.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		e.err = err
	}
	return err
}

type offsetWriter struct {
	w   io.Writer
	off int
}

func (r *offsetWriter) Off() int {
	return r.off
}

func (r *offsetWriter) Write(p []byte) (n int, err error) {
	n, err = r.w.Write(p)
	r.off += n
	return
}

// AppendRecord appends the encoded form of rec, as laid out in a log described
// by h, to dst. It returns an error for records the version can not carry,
// including fields that would be silently dropped.
func AppendRecord(dst []byte, h Header, rec record.Record) ([]byte, error) {
	if rec == nil {
		return dst, errors.New(`nil record`)
	}
	k := rec.Kind()
	if !k.In(h.Version) {
		return dst, fmt.Errorf(`%v records can not be encoded in %v`, k, h.Version)
	}
	if r, ok := rec.(record.Function); ok {
		return appendFunction(dst, r)
	}

	var body [metadataBodySize]byte
	var data []byte
	le := binary.LittleEndian
	switch r := rec.(type) {
	case record.NewBuffer:
		le.PutUint32(body[0:], uint32(r.TID))
	case record.EndOfBuffer:
	case record.NewCPUID:
		le.PutUint16(body[0:], r.CPU)
		if h.Version >= record.Version3 {
			le.PutUint64(body[2:], r.TSC)
		} else if r.TSC != 0 {
			return dst, fmt.Errorf(`%v can not carry a tsc in %v`, k, h.Version)
		}
	case record.TSCWrap:
		le.PutUint64(body[0:], r.BaseTSC)
	case record.Wallclock:
		le.PutUint64(body[0:], r.Seconds)
		le.PutUint32(body[8:], r.Nanos)
	case record.CallArg:
		le.PutUint64(body[0:], r.Arg)
	case record.BufferExtents:
		le.PutUint64(body[0:], r.Size)
	case record.CustomEvent:
		le.PutUint32(body[0:], uint32(r.Size))
		le.PutUint64(body[4:], r.TSC)
		if h.Version >= record.Version3 {
			le.PutUint16(body[12:], r.CPU)
		} else if r.CPU != 0 {
			return dst, fmt.Errorf(`%v can not carry a cpu in %v`, k, h.Version)
		}
		data = r.Data
	case record.CustomEventV5:
		le.PutUint32(body[0:], uint32(r.Size))
		le.PutUint32(body[4:], uint32(r.Delta))
		data = r.Data
	case record.TypedEvent:
		le.PutUint32(body[0:], uint32(r.Size))
		le.PutUint32(body[4:], uint32(r.Delta))
		le.PutUint16(body[8:], r.EventType)
		data = r.Data
	default:
		return dst, fmt.Errorf(`no field layout for %v`, k)
	}

	switch k {
	case record.KindCustomEvent, record.KindCustomEventV5, record.KindTypedEvent:
		if len(data) == 0 || len(data) > maxMakeSize || eventSize(rec) != len(data) {
			return dst, fmt.Errorf(`%v size %d does not match %d bytes of data`,
				k, eventSize(rec), len(data))
		}
	}

	dst = append(dst, byte(k.Code())<<1|0x01)
	dst = append(dst, body[:]...)
	return append(dst, data...), nil
}

func eventSize(rec record.Record) int {
	switch r := rec.(type) {
	case record.CustomEvent:
		return int(r.Size)
	case record.CustomEventV5:
		return int(r.Size)
	case record.TypedEvent:
		return int(r.Size)
	}
	return 0
}

func appendFunction(dst []byte, r record.Function) ([]byte, error) {
	if !r.Type.Valid() {
		return dst, fmt.Errorf(`invalid function record type %d`, uint8(r.Type))
	}
	if r.FuncID < 0 || r.FuncID > MaxFunctionID {
		return dst, fmt.Errorf(`function id %d out of range`, r.FuncID)
	}
	raw := uint32(r.FuncID)<<functionIDShift | uint32(r.Type)<<functionTypeShift
	dst = binary.LittleEndian.AppendUint32(dst, raw)
	return binary.LittleEndian.AppendUint32(dst, r.Delta), nil
}
