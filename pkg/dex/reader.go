package dex

import (
	"encoding/binary"
	"errors"
)

// reader is a bounds-checked cursor over the whole file image. All offsets
// handed to it are absolute file offsets.
type reader struct {
	data []byte
	off  int
	bo   binary.ByteOrder
}

func newReader(data []byte, off uint32, bo binary.ByteOrder) (*reader, error) {
	if int64(off) > int64(len(data)) {
		return nil, formatErr(ErrOutOfBounds, int(off), "offset past end of file (size %#x)", len(data))
	}
	return &reader{data: data, off: int(off), bo: bo}, nil
}

func (r *reader) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return formatErr(ErrOutOfBounds, r.off, "need %d bytes, %d remain", n, len(r.data)-r.off)
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := r.bo.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := r.bo.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uleb128() (uint32, error) {
	v, n, err := ReadULEB128(r.data[r.off:])
	if err != nil {
		return 0, r.lebErr(err)
	}
	r.off += n
	return v, nil
}

func (r *reader) sleb128() (int32, error) {
	v, n, err := ReadSLEB128(r.data[r.off:])
	if err != nil {
		return 0, r.lebErr(err)
	}
	r.off += n
	return v, nil
}

func (r *reader) uleb128p1() (int32, error) {
	v, n, err := ReadULEB128p1(r.data[r.off:])
	if err != nil {
		return 0, r.lebErr(err)
	}
	r.off += n
	return v, nil
}

func (r *reader) lebErr(err error) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return &FormatError{Kind: fe.Kind, Off: int64(r.off), Msg: fe.Msg}
	}
	return err
}
