package dex

import (
	"errors"
	"fmt"
)

var (
	// ErrShortBuffer indicates the input is smaller than the fixed header.
	ErrShortBuffer = errors.New("dex: buffer too short")
	// ErrBadMagic indicates the file does not start with "dex\n".
	ErrBadMagic = errors.New("dex: invalid magic")
	// ErrBadEndian indicates the endian_tag is neither of the two known constants.
	ErrBadEndian = errors.New("dex: could not determine endianness")
	// ErrBadVersion indicates the version digits are not decimal.
	ErrBadVersion = errors.New("dex: could not parse version")
	// ErrOutOfBounds indicates an offset or count that points past the end of the buffer.
	ErrOutOfBounds = errors.New("dex: out of bounds")
	// ErrBadIndex indicates an index into a string/type/proto/field/method table that does not exist.
	ErrBadIndex = errors.New("dex: index out of range")
	// ErrUnknownEnum indicates a value outside a closed enumeration (map item type, visibility, ...).
	ErrUnknownEnum = errors.New("dex: unknown enumerant")
	// ErrBadLEB128 indicates a truncated or overlong LEB128 sequence.
	ErrBadLEB128 = errors.New("dex: malformed leb128")
	// ErrMalformed indicates any other structural inconsistency.
	ErrMalformed = errors.New("dex: malformed file")
)

// FormatError describes a structural problem at a file offset.
type FormatError struct {
	Kind error
	Off  int64
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Off < 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%v: %s (offset %#x)", e.Kind, e.Msg, e.Off)
}

func (e *FormatError) Unwrap() error { return e.Kind }

func formatErr(kind error, off int, format string, args ...any) error {
	return &FormatError{Kind: kind, Off: int64(off), Msg: fmt.Sprintf(format, args...)}
}
