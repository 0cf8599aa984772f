package bits

import "fmt"

// AppendUvarint32 appends the unsigned base-128 varint encoding of v to dst
// and returns the extended slice.
func AppendUvarint32(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// ReadUvarint32 decodes an unsigned base-128 varint from the front of src,
// returning the value and the number of bytes consumed. A value requiring
// more than 5 bytes is reported as an error: 32-bit varints fit in 5 bytes
// at 7 bits per byte.
func ReadUvarint32(src []byte) (value uint32, n int, err error) {
	var shift uint
	for i := 0; i < len(src); i++ {
		b := src[i]
		if shift >= 35 {
			return 0, 0, fmt.Errorf("bits: varint exceeds 5 bytes")
		}
		value |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("bits: truncated varint")
}
