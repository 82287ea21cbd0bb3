package encoding

import (
	"errors"
	"io"

	"github.com/cstockton/go-xray/record"
)

// Decoder reads records encoded in the FDR log format from an input stream.
// The whole stream is read into memory on first use, records are then decoded
// lazily one per call to Decode.
type Decoder struct {
	err   error
	r     io.Reader
	c     *Cursor
	p     *Producer
	state *state
}

// state is the bookkeeping a Decoder keeps across records of one log.
type state struct {
	hdr     Header
	count   int
	bufSize int
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, c: NewCursor(nil)}
}

// Reset the Decoder to read from r, discarding any error and buffered data.
// A nil r leaves the Decoder in a failed state until the next Reset.
func (d *Decoder) Reset(r io.Reader) {
	d.r, d.err, d.p, d.state = r, nil, nil, nil
	d.c.Reset(nil)
	if r == nil {
		d.err = errors.New(`nil reader given to Reset`)
	}
}

// Err returns the first error that occurred during decoding, if that error was
// io.EOF then Err() returns nil and the decoding was successful. When called
// before any record was requested Err reads the input stream and header first,
// so a malformed header or failing reader is reported right away.
func (d *Decoder) Err() error {
	if d.state == nil {
		d.init()
	}
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// Version retrieves the version information contained in the log header. You
// do not need to call this function directly to begin retrieving records, it
// is done on the first call to Decode if it was not called prior.
func (d *Decoder) Version() (record.Version, error) {
	hdr, err := d.Header()
	return hdr.Version, err
}

// Header returns the decoded log header, reading the input stream on first use.
func (d *Decoder) Header() (Header, error) {
	if d.state == nil {
		d.init()
	}
	if d.err != nil && d.err != io.EOF {
		return Header{}, d.err
	}
	return d.state.hdr, nil
}

// Off returns the offset relative to the start of the input stream of the next
// record to be decoded, or of the failing record once Decode has failed.
func (d *Decoder) Off() int {
	return d.c.Off()
}

// Count returns the number of records decoded so far.
func (d *Decoder) Count() int {
	if d.state == nil {
		return 0
	}
	return d.state.count
}

// More returns true when records may still be retrieved, false otherwise. The
// first time More returns false, all future calls will return false until
// Reset is called.
func (d *Decoder) More() bool {
	if d.state == nil {
		d.init()
	}
	if d.err == nil && d.c.Len() == 0 {
		d.err = io.EOF
	}
	return d.err == nil
}

// Decode returns the next record from the input stream. If Decode returns a
// non-nil error then the record will be nil. Any error returned indicates
// permanent failure and all future calls will return the same error until
// Reset. The end of the stream is reported as io.EOF.
func (d *Decoder) Decode() (record.Record, error) {
	if d.state == nil {
		d.init()
	}
	if d.err != nil {
		// Once an error occurs the decoder may no longer be used.
		return nil, d.err
	}
	if d.c.Len() == 0 {
		d.err = io.EOF
		return nil, d.err
	}

	start := d.c.Off()
	rec, err := d.p.Produce()
	if err != nil {
		d.err = err
		return nil, err
	}
	d.state.count++

	if _, ok := rec.(record.EndOfBuffer); ok {
		d.skipPadding(start)
	}
	return rec, nil
}

// skipPadding moves past the unused tail of a fixed size Version1 buffer after
// its EndOfBuffer record, which started at off.
func (d *Decoder) skipPadding(off int) {
	n := d.state.bufSize
	if n <= 0 {
		return
	}
	rel := off - HeaderSize
	next := HeaderSize + (rel/n+1)*n
	if end := d.c.Off() + d.c.Len(); next > end {
		next = end
	}
	if next > d.c.Off() {
		d.c.Seek(next)
	}
}

// init will initialize the Decoder so it may begin receiving records by
// reading the input and decoding the header within the first 32 bytes.
func (d *Decoder) init() {
	d.state = &state{}
	if d.err != nil {
		return
	}
	if d.r == nil {
		d.err = errors.New(`nil reader`)
		return
	}

	data, err := io.ReadAll(d.r)
	if err != nil {
		d.err = err
		return
	}
	d.c.Reset(data)

	hdr, err := DecodeHeader(d.c)
	if err != nil {
		d.err = err
		return
	}
	d.state.hdr = hdr
	if n := hdr.BufferSize(); n > uint64(len(data)) {
		d.state.bufSize = len(data)
	} else {
		d.state.bufSize = int(n)
	}
	d.p = NewProducer(d.c, hdr)
}
