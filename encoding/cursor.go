package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Cursor is a bounds checked sequential reader over an in-memory buffer. A
// failed read never moves the cursor, so Off always reports the position of
// the first byte that could not be consumed.
type Cursor struct {
	b   []byte
	off int
}

// NewCursor returns a Cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Reset the cursor to read b from the start.
func (c *Cursor) Reset(b []byte) {
	c.b, c.off = b, 0
}

// Off returns the offset of the next byte to be read.
func (c *Cursor) Off() int {
	return c.off
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.b) - c.off
}

// Seek moves the cursor to off, which must be within the buffer. Seeking to
// the end of the buffer is allowed.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.b) {
		return fmt.Errorf(`seek to offset %d outside buffer of %d bytes`, off, len(c.b))
	}
	c.off = off
	return nil
}

// ReadByte implements io.ByteReader. It returns io.EOF once the buffer is
// exhausted.
func (c *Cursor) ReadByte() (byte, error) {
	if c.off >= len(c.b) {
		return 0, io.EOF
	}
	b := c.b[c.off]
	c.off++
	return b, nil
}

// U16 reads a little endian uint16.
func (c *Cursor) U16() (uint16, error) {
	p, err := c.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

// U32 reads a little endian uint32.
func (c *Cursor) U32() (uint32, error) {
	p, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// U64 reads a little endian uint64.
func (c *Cursor) U64() (uint64, error) {
	p, err := c.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// I32 reads a little endian int32.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// Bytes returns a copy of the next n bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	p, err := c.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.next(n)
	return err
}

// next returns the next n bytes of the underlying buffer and advances past
// them, or io.ErrUnexpectedEOF without advancing when fewer remain.
func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || c.Len() < n {
		return nil, io.ErrUnexpectedEOF
	}
	p := c.b[c.off : c.off+n]
	c.off += n
	return p, nil
}
