package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderRLERun(t *testing.T) {
	e := NewEncoder(3)
	for i := 0; i < 10; i++ {
		e.Write(5)
	}
	got := e.Bytes()

	// header = varint(runLen<<1) = varint(20) = 0x14; value in
	// byteWidth(3)=1 byte: 0x05.
	assert.Equal(t, []byte{0x14, 0x05}, got)
}

func TestEncoderBitPackedRun(t *testing.T) {
	e := NewEncoder(3)
	for _, v := range []uint32{0, 1, 2, 3, 4, 5, 6, 7} {
		e.Write(v)
	}
	got := e.Bytes()

	// header = varint(1<<1|1) = varint(3) = 0x03, followed by the spec's
	// worked bit-packing example.
	require.Equal(t, []byte{0x03, 0x88, 0xC6, 0xFA}, got)
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	width := 4
	values := []uint32{1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}

	e := NewEncoder(width)
	for _, v := range values {
		e.Write(v)
	}
	stream := e.Bytes()

	d := NewDecoder(width, stream)
	got := make([]uint32, len(values))
	for i := range got {
		v, err := d.Next()
		require.NoError(t, err)
		got[i] = v
	}
	assert.Equal(t, values, got)
}

func TestEncoderShortPrefixBeforeTrailingRunIsNotDropped(t *testing.T) {
	// A short (<groupSize) non-run prefix immediately followed by a long
	// run must not be silently dropped by the look-ahead window: every
	// value must still round-trip.
	width := 4
	values := []uint32{1, 9, 9, 9, 9, 9, 9, 9, 9, 9}

	e := NewEncoder(width)
	for _, v := range values {
		e.Write(v)
	}
	stream := e.Bytes()
	require.NotEmpty(t, stream)

	d := NewDecoder(width, stream)
	got := make([]uint32, len(values))
	for i := range got {
		v, err := d.Next()
		require.NoError(t, err)
		got[i] = v
	}
	assert.Equal(t, values, got)
}

func TestZeroWidthStreamDecodesZeros(t *testing.T) {
	e := NewEncoder(0)
	for i := 0; i < 5; i++ {
		e.Write(0)
	}
	d := NewDecoder(0, e.Bytes())
	for i := 0; i < 5; i++ {
		v, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, uint32(0), v)
	}
}

func TestDecoderTruncatedStream(t *testing.T) {
	d := NewDecoder(3, nil)
	_, err := d.Next()
	assert.Error(t, err)
}
