package record

import (
	"errors"
	"fmt"
)

var (

	// ErrUnknownKind matches errors for metadata kind codes no version defines.
	ErrUnknownKind = errors.New(`unknown metadata record kind`)

	// ErrUnsupported matches errors for kinds the log version does not carry.
	ErrUnsupported = errors.New(`metadata record kind unsupported for version`)
)

// UnknownKindError is returned by Classify for a kind code at or above
// MetadataCodeCount.
type UnknownKindError struct {
	Code uint8
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf(`invalid metadata record type: %d`, e.Code)
}

// Is reports whether target is ErrUnknownKind.
func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// UnsupportedError is returned by Classify for a valid kind code that the
// given version does not allow.
type UnsupportedError struct {
	Code    uint8
	Version Version
	Reason  string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf(`metadata record type %d unsupported in version %d: %v`,
		e.Code, uint16(e.Version), e.Reason)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}
