// Package xray decodes the flight data recorder logs written by LLVM XRay
// instrumented programs. The encoding package holds the decoder and encoder,
// the record package the record types. This package provides helpers for the
// common case of decoding a whole log at once.
package xray

import (
	"fmt"
	"io"
	"os"

	"github.com/cstockton/go-xray/encoding"
	"github.com/cstockton/go-xray/record"
)

// Decode returns every record of the log read from r. On failure the records
// decoded before the failing one are returned along with the error.
func Decode(r io.Reader) ([]record.Record, error) {
	var (
		out []record.Record
		dec = encoding.NewDecoder(r)
	)
	for dec.More() {
		rec, err := dec.Decode()
		if err != nil {
			break
		}
		out = append(out, rec)
	}
	if err := dec.Err(); err != nil {
		return out, fmt.Errorf(`record %d at offset %d: %w`, dec.Count(), dec.Off(), err)
	}
	return out, nil
}

// ReadFile returns every record of the log file name.
func ReadFile(name string) ([]record.Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
