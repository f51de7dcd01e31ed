package dex

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeMUTF8 decodes a NUL-terminated modified UTF-8 string starting at
// b[0]. It returns the string, the number of UTF-16 code units it encodes and
// the number of bytes consumed including the terminator.
//
// Supplementary characters arrive as two encoded surrogates and are joined;
// a surrogate without its partner becomes U+FFFD.
func decodeMUTF8(b []byte) (string, int, int, error) {
	var (
		sb    strings.Builder
		units int
		high  rune = -1
		i     int
	)

	flush := func() {
		if high >= 0 {
			sb.WriteRune(utf8.RuneError)
			high = -1
		}
	}

	for {
		if i >= len(b) {
			return "", 0, 0, formatErr(ErrMalformed, -1, "string data is not NUL terminated")
		}
		c := b[i]
		var r rune
		switch {
		case c == 0:
			flush()
			return sb.String(), units, i + 1, nil
		case c < 0x80:
			r = rune(c)
			i++
		case c&0xe0 == 0xc0:
			if i+1 >= len(b) || b[i+1]&0xc0 != 0x80 {
				return "", 0, 0, formatErr(ErrMalformed, -1, "bad two-byte sequence at string byte %d", i)
			}
			r = rune(c&0x1f)<<6 | rune(b[i+1]&0x3f)
			i += 2
		case c&0xf0 == 0xe0:
			if i+2 >= len(b) || b[i+1]&0xc0 != 0x80 || b[i+2]&0xc0 != 0x80 {
				return "", 0, 0, formatErr(ErrMalformed, -1, "bad three-byte sequence at string byte %d", i)
			}
			r = rune(c&0x0f)<<12 | rune(b[i+1]&0x3f)<<6 | rune(b[i+2]&0x3f)
			i += 3
		default:
			return "", 0, 0, formatErr(ErrMalformed, -1, "invalid byte %#02x at string byte %d", c, i)
		}
		units++

		switch {
		case utf16.IsSurrogate(r) && r < 0xdc00:
			flush()
			high = r
		case utf16.IsSurrogate(r):
			if high >= 0 {
				sb.WriteRune(utf16.DecodeRune(high, r))
				high = -1
			} else {
				sb.WriteRune(utf8.RuneError)
			}
		default:
			flush()
			sb.WriteRune(r)
		}
	}
}

// readString decodes the string_data_item at off: a ULEB128 UTF-16 length
// followed by MUTF-8 bytes.
func readString(r *reader, off uint32) (string, error) {
	r.off = int(off)
	if err := r.need(0); err != nil {
		return "", err
	}
	length, err := r.uleb128()
	if err != nil {
		return "", err
	}
	start := r.off
	s, units, n, err := decodeMUTF8(r.data[start:])
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Off = int64(start)
		}
		return "", err
	}
	if uint32(units) != length {
		return "", formatErr(ErrMalformed, start, "string declares %d UTF-16 units, has %d", length, units)
	}
	r.off += n
	return s, nil
}
