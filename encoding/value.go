// Package encoding implements the per-leaf value encoders: PLAIN,
// dictionary (with PLAIN fallback), and the level encoder that wraps the
// RLE/bit-packing hybrid for repetition and definition streams.
//
// Per the "polymorphic leaf types" design note, a leaf value is a tagged
// variant rather than an interface hierarchy: one Value struct carrying a
// Kind discriminator and the field for that kind, matched at the
// encode/decode boundary instead of dispatched through virtual methods.
package encoding

import "github.com/loopmachine/parquet-go/format"

// Value is a single leaf-column value, tagged by its physical type.
type Value struct {
	Kind format.Type

	i32 int32
	i64 int64
	f32 float32
	f64 float64
	b   bool
	bin []byte
	i96 [12]byte
}

func BoolValue(v bool) Value    { return Value{Kind: format.Boolean, b: v} }
func Int32Value(v int32) Value  { return Value{Kind: format.Int32, i32: v} }
func Int64Value(v int64) Value  { return Value{Kind: format.Int64, i64: v} }
func FloatValue(v float32) Value { return Value{Kind: format.Float, f32: v} }
func DoubleValue(v float64) Value { return Value{Kind: format.Double, f64: v} }
func BinaryValue(v []byte) Value { return Value{Kind: format.ByteArray, bin: v} }
func FixedLenValue(v []byte) Value {
	return Value{Kind: format.FixedLenByteArray, bin: v}
}
func Int96Value(v [12]byte) Value { return Value{Kind: format.Int96, i96: v} }

func (v Value) Bool() bool       { return v.b }
func (v Value) Int32() int32     { return v.i32 }
func (v Value) Int64() int64     { return v.i64 }
func (v Value) Float32() float32 { return v.f32 }
func (v Value) Float64() float64 { return v.f64 }
func (v Value) Bytes() []byte    { return v.bin }
func (v Value) Int96() [12]byte  { return v.i96 }

// ByteSize estimates the in-memory footprint of v, used by column buffers
// to track memSize() against the block/page soft bounds.
func (v Value) ByteSize() int {
	switch v.Kind {
	case format.Boolean:
		return 1
	case format.Int32, format.Float:
		return 4
	case format.Int64, format.Double:
		return 8
	case format.Int96:
		return 12
	case format.ByteArray, format.FixedLenByteArray:
		return len(v.bin)
	default:
		return 0
	}
}
