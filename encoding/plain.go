package encoding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/loopmachine/parquet-go/format"
)

// ValueEncoder is the capability set shared by every values encoder:
// accept values (and the occasional explicit null) in a leaf's declared
// type, report how many bytes it has buffered, and finish into the
// page's value-byte-stream plus the wire encoding tag it used.
type ValueEncoder interface {
	WriteValue(v Value) error
	WriteNull()
	BytesWritten() int
	Finish() ([]byte, error)
	Tag() format.Encoding
}

// PlainEncoder implements the PLAIN encoding: fixed-width little-endian
// for numeric types, LSB-first bit-packing for BOOLEAN (8 values/byte),
// a 4-byte little-endian length prefix for BYTE_ARRAY, and raw bytes
// (length taken from the schema) for FIXED_LEN_BYTE_ARRAY.
type PlainEncoder struct {
	kind format.Type
	buf  []byte

	// bit-packed boolean accumulator
	boolBuf  byte
	boolBits uint
}

// NewPlainEncoder returns a PlainEncoder for the given leaf physical type.
func NewPlainEncoder(kind format.Type) *PlainEncoder {
	return &PlainEncoder{kind: kind}
}

func (e *PlainEncoder) Tag() format.Encoding { return format.Plain }

func (e *PlainEncoder) WriteNull() {}

func (e *PlainEncoder) BytesWritten() int {
	n := len(e.buf)
	if e.boolBits > 0 {
		n++
	}
	return n
}

func (e *PlainEncoder) WriteValue(v Value) error {
	if v.Kind != e.kind {
		return fmt.Errorf("encoding: plain encoder for %s received %s value", e.kind, v.Kind)
	}
	switch e.kind {
	case format.Boolean:
		e.writeBool(v.b)
	case format.Int32:
		e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v.i32))
	case format.Int64:
		e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v.i64))
	case format.Float:
		e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(v.f32))
	case format.Double:
		e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v.f64))
	case format.Int96:
		e.buf = append(e.buf, v.i96[:]...)
	case format.ByteArray:
		e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(len(v.bin)))
		e.buf = append(e.buf, v.bin...)
	case format.FixedLenByteArray:
		e.buf = append(e.buf, v.bin...)
	default:
		return fmt.Errorf("encoding: unsupported plain type %s", e.kind)
	}
	return nil
}

func (e *PlainEncoder) writeBool(v bool) {
	if v {
		e.boolBuf |= 1 << e.boolBits
	}
	e.boolBits++
	if e.boolBits == 8 {
		e.buf = append(e.buf, e.boolBuf)
		e.boolBuf = 0
		e.boolBits = 0
	}
}

// Finish returns the bytes encoded since construction (or the last
// Finish) and resets the encoder so it can keep accepting values for a
// subsequent page within the same column chunk.
func (e *PlainEncoder) Finish() ([]byte, error) {
	if e.boolBits > 0 {
		e.buf = append(e.buf, e.boolBuf)
		e.boolBuf = 0
		e.boolBits = 0
	}
	out := e.buf
	e.buf = nil
	return out, nil
}
