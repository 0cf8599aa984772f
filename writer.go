package parquet

import (
	"github.com/go-kit/log/level"

	"github.com/loopmachine/parquet-go/compress"
	"github.com/loopmachine/parquet-go/format"
	"github.com/loopmachine/parquet-go/schema"
)

// Writer is the public entry point: it drives the FileWriter state
// machine, a RecordShredder, and one ColumnStore per open row group so a
// caller only has to call WriteRecord and Close (§4.10, §4.11). Leaf
// values are shredded directly into each column's ColumnValueBuffer as
// records arrive; pages accumulate in each leaf's PageWriter in memory
// and only reach the sink, one column at a time, when the row group is
// flushed (block-size bound crossed, or Close).
type Writer struct {
	cfg      WriterConfig
	schema   *schema.Schema
	fw       *FileWriter
	shredder *RecordShredder

	store *ColumnStore
}

// NewWriter opens a file-level write session against sink for s, applying
// opts over the package defaults (§6).
func NewWriter(sink PositionedByteSink, s *schema.Schema, opts ...Option) (*Writer, error) {
	cfg := newConfig(opts...)
	fw := NewFileWriter(sink, s, &cfg)
	if err := fw.Start(); err != nil {
		return nil, err
	}
	w := &Writer{
		cfg:      cfg,
		schema:   s,
		fw:       fw,
		shredder: NewRecordShredder(s),
	}
	if err := w.startBlock(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) startBlock() error {
	if err := w.fw.StartBlock(); err != nil {
		return err
	}
	pageWriters := make([]*PageWriter, len(w.schema.Leaves))
	for i := range w.schema.Leaves {
		compressor, err := compress.ByCodec(w.cfg.Compression)
		if err != nil {
			return wrapErr(ConfigurationError, err, "resolve compressor")
		}
		pageWriters[i] = NewPageWriter(compressor)
	}
	w.store = NewColumnStore(w.schema, &w.cfg, pageWriters)
	return nil
}

// WriteRecord shreds rec and buffers its leaf values, flushing the
// current row group if the soft block-size bound is crossed afterward.
// A record that fails shredding (missing REQUIRED field, type mismatch)
// always raises InvalidRecord, independent of cfg.Validating: that flag
// only toggles the extra redundant level-range assertions, never
// whether a malformed record is silently dropped.
func (w *Writer) WriteRecord(rec Group) error {
	w.store.StartRecord()
	if err := w.shredder.Shred(rec, w.store); err != nil {
		return err
	}
	if err := w.store.EndRecord(); err != nil {
		return err
	}
	if w.store.ShouldFlush() {
		return w.flushBlock()
	}
	return nil
}

// flushBlock finalizes every column's last page, replays each column's
// accumulated page buffer to the sink in turn (startColumn ->
// writeDataPages -> endColumn), closes out the row group, and opens the
// next one if the flushed group held any rows. Close does not go through
// flushBlock; it ends the last row group itself.
func (w *Writer) flushBlock() error {
	numRows := w.store.RowCount()
	if err := w.endCurrentBlock(numRows); err != nil {
		return err
	}
	if numRows > 0 {
		return w.startBlock()
	}
	return nil
}

func (w *Writer) endCurrentBlock(numRows int64) error {
	if err := w.store.Flush(); err != nil {
		return err
	}
	for i, leaf := range w.schema.Leaves {
		buf := w.store.buffers[i]
		pw := w.store.pageWriterFor(i)
		if err := w.fw.StartColumn(leaf, pw); err != nil {
			return err
		}
		if err := w.fw.WriteDataPages(); err != nil {
			return err
		}
		if err := w.fw.EndColumn(buf.ValueCount(), buf.FirstDataPageOffset(), buf.DictionaryPageOffset()); err != nil {
			return err
		}
	}
	if err := w.fw.EndBlock(numRows); err != nil {
		return err
	}
	level.Debug(w.cfg.Logger).Log("event", "row_group_flush", "rows", numRows, "columns", len(w.schema.Leaves))
	return nil
}

// Close flushes any buffered rows, writes the footer with extraMetadata,
// and closes the underlying sink. The row group left open by startBlock
// is only recorded if it holds rows; an empty trailing row group (the
// common case after a mid-stream flushBlock already opened a fresh,
// still-empty block) is abandoned instead of written out as a zero-row
// group with a zero-value data page per column.
func (w *Writer) Close(extraMetadata ...format.KeyValue) error {
	numRows := w.store.RowCount()
	if numRows > 0 {
		if err := w.endCurrentBlock(numRows); err != nil {
			return err
		}
	} else if err := w.fw.AbandonBlock(); err != nil {
		return err
	}
	if err := w.fw.End(extraMetadata); err != nil {
		return err
	}
	level.Debug(w.cfg.Logger).Log("event", "file_close", "rows", numRows)
	return nil
}
