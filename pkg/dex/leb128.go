package dex

// maxLEB128Len is the longest LEB128 sequence allowed in a DEX file (32-bit payload).
const maxLEB128Len = 5

// DetermineLEB128Length returns the number of bytes the LEB128 sequence at the
// start of b occupies, looking at no more than five bytes.
func DetermineLEB128Length(b []byte) int {
	n := 0
	for n < len(b) && n < maxLEB128Len-1 && b[n]&0x80 != 0 {
		n++
	}
	return n + 1
}

// ReadULEB128 decodes an unsigned LEB128 value and returns it with the number
// of bytes consumed.
func ReadULEB128(b []byte) (uint32, int, error) {
	var result uint32
	var shift uint
	for i := 0; i < maxLEB128Len; i++ {
		if i >= len(b) {
			return 0, 0, formatErr(ErrBadLEB128, -1, "truncated uleb128 after %d bytes", i)
		}
		result |= uint32(b[i]&0x7f) << shift
		if b[i]&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, formatErr(ErrBadLEB128, -1, "uleb128 longer than %d bytes", maxLEB128Len)
}

// ReadSLEB128 decodes a signed LEB128 value and returns it with the number of
// bytes consumed.
func ReadSLEB128(b []byte) (int32, int, error) {
	var result uint32
	var shift uint
	for i := 0; i < maxLEB128Len; i++ {
		if i >= len(b) {
			return 0, 0, formatErr(ErrBadLEB128, -1, "truncated sleb128 after %d bytes", i)
		}
		result |= uint32(b[i]&0x7f) << shift
		shift += 7
		if b[i]&0x80 == 0 {
			if shift < 32 && b[i]&0x40 != 0 {
				result |= ^uint32(0) << shift
			}
			return int32(result), i + 1, nil
		}
	}
	return 0, 0, formatErr(ErrBadLEB128, -1, "sleb128 longer than %d bytes", maxLEB128Len)
}

// ReadULEB128p1 decodes a ULEB128 value and subtracts one, so that -1 can
// represent an absent index.
func ReadULEB128p1(b []byte) (int32, int, error) {
	v, n, err := ReadULEB128(b)
	if err != nil {
		return 0, 0, err
	}
	return int32(v - 1), n, nil
}
