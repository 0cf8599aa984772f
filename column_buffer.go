package parquet

import (
	"github.com/go-kit/log/level"

	"github.com/loopmachine/parquet-go/encoding"
	"github.com/loopmachine/parquet-go/format"
	"github.com/loopmachine/parquet-go/schema"
)

// ColumnValueBuffer accumulates one leaf's values and levels for the
// lifetime of one column chunk (one row group), flushing completed pages
// to a PageWriter as the soft per-page byte bound is crossed (§4.7).
type ColumnValueBuffer struct {
	leaf *schema.Leaf
	cfg  *WriterConfig
	pw   *PageWriter

	repEnc    *encoding.LevelEncoder
	defEnc    *encoding.LevelEncoder
	valuesEnc encoding.ValueEncoder

	valueCount      int
	totalValueCount int64

	dictPageOffset       int64
	dictPageWritten      bool
	firstDataPageOffset  int64
	firstDataPageWritten bool
}

// NewColumnValueBuffer starts a fresh buffer for one column chunk.
func NewColumnValueBuffer(leaf *schema.Leaf, cfg *WriterConfig, pw *PageWriter) *ColumnValueBuffer {
	return &ColumnValueBuffer{
		leaf:      leaf,
		cfg:       cfg,
		pw:        pw,
		repEnc:    encoding.NewLevelEncoder(leaf.MaxRep),
		defEnc:    encoding.NewLevelEncoder(leaf.MaxDef),
		valuesEnc: newValuesEncoder(leaf, cfg),
	}
}

func newValuesEncoder(leaf *schema.Leaf, cfg *WriterConfig) encoding.ValueEncoder {
	if cfg.EnableDictionary {
		return encoding.NewDictionaryEncoder(leaf.Node.Type, int(cfg.DictionaryPageSize))
	}
	return encoding.NewPlainEncoder(leaf.Node.Type)
}

// addNull records an absent value: rep/def only, no value byte.
func (b *ColumnValueBuffer) addNull(rep, def int) error {
	if err := b.checkLevels(rep, def); err != nil {
		return err
	}
	b.repEnc.Write(rep)
	b.defEnc.Write(def)
	b.valueCount++
	b.totalValueCount++
	b.valuesEnc.WriteNull()
	return b.maybeFlushPage()
}

// addValue records a present value plus its rep/def.
func (b *ColumnValueBuffer) addValue(v encoding.Value, rep, def int) error {
	if err := b.checkLevels(rep, def); err != nil {
		return err
	}
	b.repEnc.Write(rep)
	b.defEnc.Write(def)
	b.valueCount++
	b.totalValueCount++
	wasFallenBack := dictionaryFellBack(b.valuesEnc)
	if err := b.valuesEnc.WriteValue(v); err != nil {
		return err
	}
	if !wasFallenBack && dictionaryFellBack(b.valuesEnc) {
		level.Info(b.cfg.Logger).Log("event", "dictionary_fallback", "column", b.leaf.PathString())
	}
	return b.maybeFlushPage()
}

func dictionaryFellBack(enc encoding.ValueEncoder) bool {
	d, ok := enc.(*encoding.DictionaryEncoder)
	return ok && d.FellBack()
}

// checkLevels re-asserts 0 <= rep <= maxRep and 0 <= def <= maxDef when
// cfg.Validating is set. The shredder already guarantees this invariant;
// this is the redundant double-check validating=true opts into, not the
// only enforcement of it.
func (b *ColumnValueBuffer) checkLevels(rep, def int) error {
	if !b.cfg.Validating {
		return nil
	}
	if rep < 0 || rep > b.leaf.MaxRep {
		return newErr(InvalidRecord, "field %q: rep level %d out of range [0,%d]", b.leaf.PathString(), rep, b.leaf.MaxRep)
	}
	if def < 0 || def > b.leaf.MaxDef {
		return newErr(InvalidRecord, "field %q: def level %d out of range [0,%d]", b.leaf.PathString(), def, b.leaf.MaxDef)
	}
	return nil
}

// memSize approximates this column's current uncompressed live memory:
// the sum of its level and value buffers' sizes.
func (b *ColumnValueBuffer) memSize() int64 {
	return int64(b.repEnc.ApproxBytes() + b.defEnc.ApproxBytes() + b.valuesEnc.BytesWritten())
}

func (b *ColumnValueBuffer) maybeFlushPage() error {
	if b.memSize() < b.cfg.PageSize {
		return nil
	}
	return b.flushPage()
}

// flushPage finalizes the current page's rep/def/value streams, writes a
// dictionary page first if this is the chunk's first flush and the
// values encoder is a dictionary encoder, then writes the data
// page and resets the level encoders (the values encoder manages its own
// per-page reset internally, since its dictionary spans the whole chunk).
func (b *ColumnValueBuffer) flushPage() error {
	if err := b.maybeWriteDictionaryPage(); err != nil {
		return err
	}

	repBytes := b.repEnc.Bytes()
	defBytes := b.defEnc.Bytes()
	valueBytes, err := b.valuesEnc.Finish()
	if err != nil {
		return wrapErr(IOFailure, err, "finish value stream for %q", b.leaf.PathString())
	}

	offset := b.pw.Len()
	_, err = b.pw.WriteDataPage(b.valueCount, pageStreams{
		repBytes:   repBytes,
		defBytes:   defBytes,
		valueBytes: valueBytes,
	}, b.valuesEnc.Tag(), levelEncodingTag(b.leaf.MaxRep), levelEncodingTag(b.leaf.MaxDef))
	if err != nil {
		return err
	}
	level.Debug(b.cfg.Logger).Log("event", "page_flush", "column", b.leaf.PathString(), "values", b.valueCount)
	if !b.firstDataPageWritten {
		b.firstDataPageOffset = offset
		b.firstDataPageWritten = true
	}

	b.valueCount = 0
	b.repEnc = encoding.NewLevelEncoder(b.leaf.MaxRep)
	b.defEnc = encoding.NewLevelEncoder(b.leaf.MaxDef)
	return nil
}

func (b *ColumnValueBuffer) maybeWriteDictionaryPage() error {
	if b.dictPageWritten {
		return nil
	}
	dict, ok := b.valuesEnc.(*encoding.DictionaryEncoder)
	if !ok {
		return nil
	}
	b.dictPageWritten = true
	payload, err := dict.DictionaryPageBytes()
	if err != nil {
		return wrapErr(IOFailure, err, "build dictionary page for %q", b.leaf.PathString())
	}
	before := b.pw.Len()
	if _, err := b.pw.WriteDictionaryPage(dict.DictionarySize(), payload); err != nil {
		return err
	}
	b.dictPageOffset = before
	return nil
}

func levelEncodingTag(maxLevel int) format.Encoding {
	if maxLevel == 0 {
		return format.BitPacked
	}
	return format.RLE
}

// Flush finalizes any buffered values into a final page for this chunk.
// Called at row-group/chunk boundary even if the soft page bound was
// never crossed, so a column chunk with any rows at all always ends with
// at least one data page (§3).
func (b *ColumnValueBuffer) Flush() error {
	return b.flushPage()
}

// DictionaryPageOffset returns the dictionary page's sink offset, or -1
// if none was written. That happens only when dictionary encoding is
// disabled: a dictionary-enabled chunk writes a dictionary page at its
// first flush even if the dictionary is empty or has already fallen back.
func (b *ColumnValueBuffer) DictionaryPageOffset() int64 {
	if !b.dictPageWritten {
		return -1
	}
	return b.dictPageOffset
}

// FirstDataPageOffset returns the accumulator-relative offset of this
// chunk's first data page.
func (b *ColumnValueBuffer) FirstDataPageOffset() int64 { return b.firstDataPageOffset }

// ValueCount returns the total number of leaf value occurrences (present
// and null) written to this chunk across every page.
func (b *ColumnValueBuffer) ValueCount() int64 { return b.totalValueCount }
