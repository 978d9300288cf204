package marshal

import "errors"

// The stream's integer format is a custom signed variable-length
// encoding, distinct from LEB128. It anchors every length field in the
// stream (container sizes, string byte lengths, variable counts, link
// indices), so it must stay bit-for-bit stable:
//
//   - 0 encodes as the single byte 0x00.
//   - 0 < v < 123 encodes as the single byte v+5.
//   - -124 < v < 0 encodes as the single byte (v-5) & 0xFF.
//   - Anything else encodes as a signed length-prefix byte (+n for
//     non-negative, -n for negative) followed by the n low-order bytes
//     of v in little-endian two's complement, with redundant high bytes
//     (0x00 for non-negative, 0xFF for negative) dropped.

var errShortInt = errors.New("marshal: truncated integer")

// AppendInt appends the encoding of v to dst and returns the extended
// slice.
func AppendInt(dst []byte, v int32) []byte {
	switch {
	case v == 0:
		return append(dst, 0)
	case 0 < v && v < 123:
		return append(dst, byte(v+5))
	case -124 < v && v < 0:
		return append(dst, byte(v-5))
	}
	var buf [4]byte
	i := 0
	for ; i < len(buf); i++ {
		buf[i] = byte(v)
		v >>= 8
		if v == 0 || v == -1 {
			break
		}
	}
	n := i + 1
	if v < 0 {
		dst = append(dst, byte(-n))
	} else {
		dst = append(dst, byte(n))
	}
	return append(dst, buf[:n]...)
}

// DecodeInt decodes one integer from the front of data, returning the
// value and the number of bytes consumed.
func DecodeInt(data []byte) (int32, int, error) {
	if len(data) == 0 {
		return 0, 0, errShortInt
	}
	c := int8(data[0])
	switch {
	case c == 0:
		return 0, 1, nil
	case c >= 6:
		return int32(c) - 5, 1, nil
	case c <= -6:
		return int32(c) + 5, 1, nil
	}

	n := int(c)
	neg := false
	if n < 0 {
		n = -n
		neg = true
	}
	if n > 4 {
		return 0, 0, errors.New("marshal: integer length prefix out of range")
	}
	if len(data) < 1+n {
		return 0, 0, errShortInt
	}
	var v uint32
	if neg {
		v = ^uint32(0)
	}
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint32(data[1+i])
	}
	return int32(v), 1 + n, nil
}
