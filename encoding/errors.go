package encoding

import (
	"errors"
	"fmt"

	"github.com/cstockton/go-xray/record"
)

var (

	// ErrTruncated matches errors for a record that could not begin because no
	// bytes remained.
	ErrTruncated = errors.New(`trace stream truncated`)

	// ErrMalformed matches errors for a record whose payload could not be
	// decoded.
	ErrMalformed = errors.New(`trace record malformed`)
)

// TruncatedError is returned by Produce when the discriminant byte of the next
// record could not be read.
type TruncatedError struct {
	Offset int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf(`failed reading one byte from offset %d`, e.Offset)
}

// Is reports whether target is ErrTruncated.
func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncated
}

// ClassifyError is returned by Produce when the discriminant byte holds a
// metadata kind code the log version can not decode. Err is the error from
// record.Classify.
type ClassifyError struct {
	Code   uint8
	Offset int
	Err    error
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf(`unsupported metadata record (%d) at offset %d: %v`,
		e.Code, e.Offset, e.Err)
}

// Unwrap returns the classification error.
func (e *ClassifyError) Unwrap() error {
	return e.Err
}

// FieldError is returned by the FDR field decoder when the payload of a record
// is truncated or holds invalid values. Offset is the position of the read or
// check that failed.
type FieldError struct {
	Kind   record.Kind
	Offset int
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf(`invalid %v record at offset %d: %v`,
		e.Kind.Name(), e.Offset, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformed.
func (e *FieldError) Is(target error) bool {
	return target == ErrMalformed
}
