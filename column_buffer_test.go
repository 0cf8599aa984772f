package parquet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmachine/parquet-go/compress"
	"github.com/loopmachine/parquet-go/encoding"
	"github.com/loopmachine/parquet-go/format"
	"github.com/loopmachine/parquet-go/schema"
)

func newTestBuffer(t *testing.T, leaf *schema.Leaf, cfg WriterConfig) (*ColumnValueBuffer, *PageWriter) {
	t.Helper()
	codec, err := compress.ByCodec(cfg.Compression)
	require.NoError(t, err)
	pw := NewPageWriter(codec)
	return NewColumnValueBuffer(leaf, &cfg, pw), pw
}

func singleLeafSchema(t *testing.T, typ format.Type) (*schema.Schema, *schema.Leaf) {
	t.Helper()
	s := schema.New("m", schema.Leaf("x", schema.Required, typ))
	return s, s.Leaves[0]
}

func TestColumnValueBufferFlushProducesDataPage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableDictionary = false
	_, leaf := singleLeafSchema(t, format.Int32)
	buf, pw := newTestBuffer(t, leaf, cfg)

	require.NoError(t, buf.addValue(encoding.Int32Value(1), 0, 0))
	require.NoError(t, buf.addValue(encoding.Int32Value(2), 0, 0))
	require.NoError(t, buf.Flush())

	assert.True(t, pw.Len() > 0)
	assert.Equal(t, int64(-1), buf.DictionaryPageOffset())
	assert.Equal(t, int64(0), buf.FirstDataPageOffset())
	assert.Equal(t, int64(2), buf.ValueCount())
}

func TestColumnValueBufferEmptyChunkStillWritesOnePage(t *testing.T) {
	cfg := DefaultConfig()
	_, leaf := singleLeafSchema(t, format.Int32)
	buf, pw := newTestBuffer(t, leaf, cfg)

	require.NoError(t, buf.Flush())
	assert.True(t, pw.Len() > 0)
}

func TestColumnValueBufferDictionaryPageWrittenOnce(t *testing.T) {
	cfg := DefaultConfig()
	_, leaf := singleLeafSchema(t, format.ByteArray)
	buf, _ := newTestBuffer(t, leaf, cfg)

	require.NoError(t, buf.addValue(encoding.BinaryValue([]byte("a")), 0, 0))
	require.NoError(t, buf.Flush())
	firstDictOffset := buf.DictionaryPageOffset()
	assert.GreaterOrEqual(t, firstDictOffset, int64(0))

	require.NoError(t, buf.addValue(encoding.BinaryValue([]byte("b")), 0, 0))
	require.NoError(t, buf.Flush())
	assert.Equal(t, firstDictOffset, buf.DictionaryPageOffset())
}

func TestColumnValueBufferPageSizeTriggersFlush(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableDictionary = false
	cfg.PageSize = 1 // flush after the very first value
	_, leaf := singleLeafSchema(t, format.Int32)
	buf, pw := newTestBuffer(t, leaf, cfg)

	require.NoError(t, buf.addValue(encoding.Int32Value(1), 0, 0))
	assert.True(t, pw.Len() > 0, "soft page bound should have triggered an eager flush")
}
