package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendUvarint32(t *testing.T) {
	// Worked example from the core spec: 300 encodes as [0xAC, 0x02].
	got := AppendUvarint32(nil, 300)
	assert.Equal(t, []byte{0xAC, 0x02}, got)

	got = AppendUvarint32(nil, 0)
	assert.Equal(t, []byte{0x00}, got)

	got = AppendUvarint32(nil, 127)
	assert.Equal(t, []byte{0x7F}, got)

	got = AppendUvarint32(nil, 128)
	assert.Equal(t, []byte{0x80, 0x01}, got)
}

func TestReadUvarint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 16384, 1 << 31} {
		buf := AppendUvarint32(nil, v)
		got, n, err := ReadUvarint32(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), n)
	}
}

func TestReadUvarint32Truncated(t *testing.T) {
	_, _, err := ReadUvarint32([]byte{0x80})
	assert.Error(t, err)
}

func TestReadUvarint32TooLong(t *testing.T) {
	_, _, err := ReadUvarint32([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	assert.Error(t, err)
}
