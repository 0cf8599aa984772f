package parquet

import (
	"github.com/loopmachine/parquet-go/encoding"
	"github.com/loopmachine/parquet-go/schema"
)

// ColumnStore owns one ColumnValueBuffer per leaf (schema order) for the
// row group currently being accumulated. It implements LeafSink for the
// RecordShredder, and the adaptive memory-check schedule of §4.10/§9:
// after every nextCheck records, compare memSize() to blockSize and
// signal the caller to flush the row group if it has grown past the
// soft bound.
type ColumnStore struct {
	schema      *schema.Schema
	cfg         *WriterConfig
	buffers     []*ColumnValueBuffer
	pageWriters []*PageWriter

	rowCount       int64
	sinceLastCheck int64
	nextCheck      int64
	avgRecordSize  int64

	pendingErr error
}

// NewColumnStore allocates one buffer per schema leaf, backed by the
// given per-column PageWriters for a fresh row group.
func NewColumnStore(s *schema.Schema, cfg *WriterConfig, pageWriters []*PageWriter) *ColumnStore {
	buffers := make([]*ColumnValueBuffer, len(s.Leaves))
	for i, leaf := range s.Leaves {
		buffers[i] = NewColumnValueBuffer(leaf, cfg, pageWriters[i])
	}
	return &ColumnStore{
		schema:      s,
		cfg:         cfg,
		buffers:     buffers,
		pageWriters: pageWriters,
		nextCheck:   100,
	}
}

// pageWriterFor returns the PageWriter backing the given schema leaf
// index, for the FileWriter to replay at row-group flush time.
func (cs *ColumnStore) pageWriterFor(leafIndex int) *PageWriter { return cs.pageWriters[leafIndex] }

// WriteValue implements LeafSink for the RecordShredder.
func (cs *ColumnStore) WriteValue(leafIndex int, v encoding.Value, rep, def int) error {
	return cs.buffers[leafIndex].addValue(v, rep, def)
}

// WriteNull implements LeafSink for the RecordShredder. A page flush
// triggered by a null write can still fail (I/O); LeafSink.WriteNull has
// no error return, so the failure is latched and surfaced from the next
// EndRecord call instead.
func (cs *ColumnStore) WriteNull(leafIndex int, rep, def int) {
	if err := cs.buffers[leafIndex].addNull(rep, def); err != nil && cs.pendingErr == nil {
		cs.pendingErr = err
	}
}

// StartRecord brackets the shredding of one record. It is a no-op today,
// kept for symmetry with §4.10's start/endRecord bracketing.
func (cs *ColumnStore) StartRecord() {}

// EndRecord closes out one shredded record and increments the row count.
func (cs *ColumnStore) EndRecord() error {
	if cs.pendingErr != nil {
		err := cs.pendingErr
		cs.pendingErr = nil
		return err
	}
	cs.rowCount++
	cs.sinceLastCheck++
	return nil
}

// memSize sums every column's current buffer size.
func (cs *ColumnStore) memSize() int64 {
	var total int64
	for _, b := range cs.buffers {
		total += b.memSize()
	}
	return total
}

// ShouldFlush reports whether the row group accumulated so far should be
// flushed. It only samples memSize() every nextCheck records (the
// adaptive schedule avoids calling memSize() on every record), and on a
// sampled check recomputes nextCheck = max(100, (records +
// blockSize/avgRecordSize) / 2), the deliberate overshoot-avoidance
// heuristic of §9.
func (cs *ColumnStore) ShouldFlush() bool {
	if cs.sinceLastCheck < cs.nextCheck {
		return false
	}
	cs.sinceLastCheck = 0

	size := cs.memSize()
	if cs.rowCount > 0 {
		cs.avgRecordSize = size / cs.rowCount
	}
	next := int64(100)
	if cs.avgRecordSize > 0 {
		if est := (cs.rowCount + cs.cfg.BlockSize/cs.avgRecordSize) / 2; est > next {
			next = est
		}
	}
	cs.nextCheck = next

	return size >= cs.cfg.BlockSize
}

// RowCount returns the number of records ended since this ColumnStore
// (row group) was created.
func (cs *ColumnStore) RowCount() int64 { return cs.rowCount }

// Flush finalizes every column's current page. The caller (FileWriter)
// drives endColumn/endBlock around this call.
func (cs *ColumnStore) Flush() error {
	for _, b := range cs.buffers {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	return nil
}
