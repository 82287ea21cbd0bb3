package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cstockton/go-xray/record"
)

const (

	// HeaderSize is the size in bytes of the file header preceding the records.
	HeaderSize = 32

	// LogTypeNaive is written by the basic logging mode, which this package
	// does not decode.
	LogTypeNaive LogType = 0

	// LogTypeFDR is written by the flight data recorder mode.
	LogTypeFDR LogType = 1

	headerConstantTSC = 1 << 0
	headerNonstopTSC  = 1 << 1
)

var (

	// ErrVersion occurs when a version is needed, but can not be determined.
	ErrVersion = errors.New(`trace header version was malformed`)

	// ErrLogType occurs when the header describes a log that is not an FDR log.
	ErrLogType = errors.New(`trace header log type is not fdr`)
)

// LogType is the logging mode that produced a trace file.
type LogType uint16

// Header is the 32 byte file header of an FDR log:
//
//	[Version(2)][Type(2)][Flags(4)][CycleFrequency(8)][FreeForm(16)]
//
// It is read once and never modified while the records that follow are
// decoded, so a Header value may be shared by many decoders.
type Header struct {
	Version        record.Version
	Type           LogType
	ConstantTSC    bool
	NonstopTSC     bool
	CycleFrequency uint64
	FreeForm       [16]byte
}

// BufferSize returns the fixed size of each thread buffer declared by Version1
// logs in the free form data, or zero when the log does not declare one.
func (h Header) BufferSize() uint64 {
	if h.Version != record.Version1 {
		return 0
	}
	return binary.LittleEndian.Uint64(h.FreeForm[:8])
}

// String implements fmt.Stringer.
func (h Header) String() string {
	return fmt.Sprintf(`Header(%v freq %d constant %v nonstop %v)`,
		h.Version, h.CycleFrequency, h.ConstantTSC, h.NonstopTSC)
}

// DecodeHeader reads a file header from c. It returns io.ErrUnexpectedEOF when
// fewer than HeaderSize bytes remain, ErrLogType for logs not written in FDR
// mode and ErrVersion for versions this package does not know. The cursor is
// left unchanged on error.
func DecodeHeader(c *Cursor) (Header, error) {
	start := c.Off()
	h, err := decodeHeader(c)
	if err != nil {
		c.off = start
		return Header{}, err
	}
	return h, nil
}

func decodeHeader(c *Cursor) (h Header, err error) {
	if c.Len() < HeaderSize {
		return h, io.ErrUnexpectedEOF
	}

	// The length check above guarantees the reads below succeed.
	ver, _ := c.U16()
	typ, _ := c.U16()
	flags, _ := c.U32()
	h.CycleFrequency, _ = c.U64()
	free, _ := c.next(len(h.FreeForm))
	copy(h.FreeForm[:], free)

	h.Version, h.Type = record.Version(ver), LogType(typ)
	h.ConstantTSC = flags&headerConstantTSC != 0
	h.NonstopTSC = flags&headerNonstopTSC != 0

	if h.Type != LogTypeFDR {
		return Header{}, ErrLogType
	}
	if !h.Version.Valid() {
		return Header{}, ErrVersion
	}
	return h, nil
}

// AppendHeader appends the encoded form of h to dst.
func AppendHeader(dst []byte, h Header) []byte {
	var flags uint32
	if h.ConstantTSC {
		flags |= headerConstantTSC
	}
	if h.NonstopTSC {
		flags |= headerNonstopTSC
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(h.Version))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(h.Type))
	dst = binary.LittleEndian.AppendUint32(dst, flags)
	dst = binary.LittleEndian.AppendUint64(dst, h.CycleFrequency)
	return append(dst, h.FreeForm[:]...)
}

// NewHeader returns an FDR header for version v with the given fixed buffer
// size, which is only recorded for Version1 logs.
func NewHeader(v record.Version, bufferSize uint64) Header {
	h := Header{Version: v, Type: LogTypeFDR, ConstantTSC: true, NonstopTSC: true}
	if v == record.Version1 {
		binary.LittleEndian.PutUint64(h.FreeForm[:8], bufferSize)
	}
	return h
}
