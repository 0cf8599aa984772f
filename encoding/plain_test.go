package encoding

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmachine/parquet-go/format"
)

func TestPlainEncoderIntegers(t *testing.T) {
	// The core spec's end-to-end example: x=1, x=2, x=3 as INT32 PLAIN
	// yields 01 00 00 00 02 00 00 00 03 00 00 00.
	e := NewPlainEncoder(format.Int32)
	require.NoError(t, e.WriteValue(Int32Value(1)))
	require.NoError(t, e.WriteValue(Int32Value(2)))
	require.NoError(t, e.WriteValue(Int32Value(3)))

	got, err := e.Finish()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x03, 0x00, 0x00, 0x00,
	}, got)
}

func TestPlainEncoderBooleanBitPacking(t *testing.T) {
	e := NewPlainEncoder(format.Boolean)
	bits := []bool{true, false, true, true, false, false, true, false, true}
	for _, b := range bits {
		require.NoError(t, e.WriteValue(BoolValue(b)))
	}
	got, err := e.Finish()
	require.NoError(t, err)
	require.Len(t, got, 2) // 9 bits -> 2 bytes, LSB-first within each byte

	var want byte
	for i, b := range bits[:8] {
		if b {
			want |= 1 << uint(i)
		}
	}
	assert.Equal(t, want, got[0])
	assert.Equal(t, byte(1), got[1]) // the 9th bit, alone in the second byte
}

func TestPlainEncoderByteArray(t *testing.T) {
	e := NewPlainEncoder(format.ByteArray)
	require.NoError(t, e.WriteValue(BinaryValue([]byte("hi"))))
	got, err := e.Finish()
	require.NoError(t, err)

	require.Len(t, got, 4+2)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(got[:4]))
	assert.Equal(t, []byte("hi"), got[4:])
}

func TestPlainEncoderFixedLenByteArray(t *testing.T) {
	e := NewPlainEncoder(format.FixedLenByteArray)
	raw := []byte{1, 2, 3, 4}
	require.NoError(t, e.WriteValue(FixedLenValue(raw)))
	got, err := e.Finish()
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestPlainEncoderRejectsTypeMismatch(t *testing.T) {
	e := NewPlainEncoder(format.Int32)
	err := e.WriteValue(Int64Value(1))
	assert.Error(t, err)
}

func TestPlainEncoderResetsAfterFinish(t *testing.T) {
	e := NewPlainEncoder(format.Int32)
	require.NoError(t, e.WriteValue(Int32Value(1)))
	first, err := e.Finish()
	require.NoError(t, err)
	require.NoError(t, e.WriteValue(Int32Value(2)))
	second, err := e.Finish()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 0, e.BytesWritten())
}
