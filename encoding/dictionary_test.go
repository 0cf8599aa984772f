package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmachine/parquet-go/format"
	"github.com/loopmachine/parquet-go/internal/rle"
)

func TestDictionaryEncoderAssignsInsertionOrderIDs(t *testing.T) {
	e := NewDictionaryEncoder(format.ByteArray, 1<<20)
	require.NoError(t, e.WriteValue(BinaryValue([]byte("a"))))
	require.NoError(t, e.WriteValue(BinaryValue([]byte("b"))))
	require.NoError(t, e.WriteValue(BinaryValue([]byte("a"))))

	assert.Equal(t, 2, e.DictionarySize())
	assert.False(t, e.FellBack())
	assert.Equal(t, format.RLEDictionary, e.Tag())

	dictBytes, err := e.DictionaryPageBytes()
	require.NoError(t, err)
	// "a" (id 0) then "b" (id 1), each length-prefixed BYTE_ARRAY PLAIN.
	assert.Equal(t, []byte{1, 0, 0, 0, 'a', 1, 0, 0, 0, 'b'}, dictBytes)

	idStream, err := e.Finish()
	require.NoError(t, err)

	d := rle.NewDecoder(1, idStream) // width=max(1, bitsNeeded(dictSize-1))=1
	for _, want := range []uint32{0, 1, 0} {
		got, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDictionaryEncoderFallsBackToPlain(t *testing.T) {
	// Budget only large enough for one distinct value's estimated cost.
	e := NewDictionaryEncoder(format.ByteArray, 4+1)
	require.NoError(t, e.WriteValue(BinaryValue([]byte("x"))))
	require.NoError(t, e.WriteValue(BinaryValue([]byte("x")))) // repeat, still within dictionary
	require.NoError(t, e.WriteValue(BinaryValue([]byte("y")))) // new value exceeds budget -> fallback

	assert.True(t, e.FellBack())
	assert.Equal(t, format.Plain, e.Tag())

	// The dictionary page already captured ("x") is retained.
	assert.Equal(t, 1, e.DictionarySize())

	got, err := e.Finish()
	require.NoError(t, err)
	// Pending "x","x" resolved to values, plus "y", all PLAIN BYTE_ARRAY.
	assert.Equal(t, []byte{
		1, 0, 0, 0, 'x',
		1, 0, 0, 0, 'x',
		1, 0, 0, 0, 'y',
	}, got)
}

func TestDictionaryEncoderNullPassthrough(t *testing.T) {
	e := NewDictionaryEncoder(format.Int32, 1<<20)
	e.WriteNull() // no-op before any fallback; dictionary carries no null marker
	assert.Equal(t, 0, e.DictionarySize())
}
