package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsNeeded(t *testing.T) {
	cases := []struct {
		max  uint32
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{7, 3},
		{8, 4},
		{255, 8},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BitsNeeded(c.max), "max=%d", c.max)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 2, 3, 4, 5, 6, 7}
	width := 3

	packed := make([]byte, PackedByteCount(len(values), width))
	Pack(packed, values, width)

	// Worked example from the core spec: [0..7] at width 3 packs to
	// 0x88 0xC6 0xFA.
	require.Equal(t, []byte{0x88, 0xC6, 0xFA}, packed)

	out := make([]uint32, len(values))
	Unpack(out, packed, len(values), width)
	assert.Equal(t, values, out)
}

func TestPackUnpackRoundTripOddWidth(t *testing.T) {
	values := []uint32{5, 12, 0, 31, 17, 9, 3, 28, 1}
	width := 5

	packed := make([]byte, PackedByteCount(len(values), width))
	Pack(packed, values, width)

	out := make([]uint32, len(values))
	Unpack(out, packed, len(values), width)
	assert.Equal(t, values, out)
}

func TestWidthForMax(t *testing.T) {
	assert.Equal(t, 0, WidthForMax(0))
	assert.Equal(t, 1, WidthForMax(1))
	assert.Equal(t, 3, WidthForMax(7))
}
