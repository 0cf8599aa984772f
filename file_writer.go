package parquet

import (
	"encoding/binary"

	"github.com/loopmachine/parquet-go/format"
	"github.com/loopmachine/parquet-go/schema"
)

// magic is the four-byte file marker that opens and closes every file
// (§4's "PAR1" layout).
var magic = [4]byte{'P', 'A', 'R', '1'}

// writerState is the FileWriter's legal-transition state (§4.11).
type writerState int

const (
	stateNotStarted writerState = iota
	stateStarted
	stateBlock
	stateColumn
	stateEnded
)

func (s writerState) String() string {
	switch s {
	case stateNotStarted:
		return "NotStarted"
	case stateStarted:
		return "Started"
	case stateBlock:
		return "Block"
	case stateColumn:
		return "Column"
	case stateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// FileWriter drives one parquet file's on-disk layout end to end: MAGIC,
// a sequence of row groups each holding one column chunk per schema leaf,
// and a Thrift-encoded footer, per the state machine of §4.11. It is not
// safe for concurrent use; one FileWriter serves exactly one file.
type FileWriter struct {
	sink   PositionedByteSink
	schema *schema.Schema
	cfg    *WriterConfig
	meta   format.MetadataCodec

	state writerState

	rowGroups []format.RowGroup

	// current row group under construction
	blockColumns []format.ColumnChunk
	blockStart   int64

	// current column under construction
	colLeaf     *schema.Leaf
	colPW       *PageWriter
	colStartOff int64
}

// NewFileWriter returns a FileWriter for s, writing to sink under cfg.
// No bytes are written until Start is called.
func NewFileWriter(sink PositionedByteSink, s *schema.Schema, cfg *WriterConfig) *FileWriter {
	return &FileWriter{sink: sink, schema: s, cfg: cfg}
}

func (fw *FileWriter) transition(from, to writerState, op string) error {
	if fw.state != from {
		return newErr(IllegalState, "%s requires state %s, file is in state %s", op, from, fw.state)
	}
	fw.state = to
	return nil
}

// Start writes MAGIC and transitions NotStarted -> Started.
func (fw *FileWriter) Start() error {
	if err := fw.transition(stateNotStarted, stateStarted, "start"); err != nil {
		return err
	}
	_, err := fw.sink.Write(magic[:])
	return err
}

// StartBlock opens a new row group (Started -> Block).
func (fw *FileWriter) StartBlock() error {
	if err := fw.transition(stateStarted, stateBlock, "startBlock"); err != nil {
		return err
	}
	fw.blockColumns = nil
	fw.blockStart = fw.sink.Position()
	return nil
}

// StartColumn opens leaf's column chunk within the current row group
// (Block -> Column), recording the chunk's file start offset. pw already
// holds the chunk's fully-assembled, in-memory page stream — produced
// incrementally during WriteRecord — which writeDataPages below hands to
// the sink as one contiguous write.
func (fw *FileWriter) StartColumn(leaf *schema.Leaf, pw *PageWriter) error {
	if err := fw.transition(stateBlock, stateColumn, "startColumn"); err != nil {
		return err
	}
	fw.colLeaf = leaf
	fw.colPW = pw
	fw.colStartOff = fw.sink.Position()
	return nil
}

// WriteDataPages hands the current column's preassembled page buffer to
// the sink in one contiguous write.
func (fw *FileWriter) WriteDataPages() error {
	if fw.state != stateColumn {
		return newErr(IllegalState, "writeDataPages requires state %s, file is in state %s", stateColumn, fw.state)
	}
	_, err := fw.sink.Write(fw.colPW.Bytes())
	return err
}

// EndColumn closes the current column chunk, appending its
// ColumnMetaData to the row group under construction (Column -> Block).
// firstDataPageOffset and dictOffset are offsets relative to the chunk's
// accumulator (as reported by ColumnValueBuffer); dictOffset is -1 when
// no dictionary page was written. valueCount is the chunk's total number
// of leaf value occurrences (present and null).
func (fw *FileWriter) EndColumn(valueCount, firstDataPageOffset, dictOffset int64) error {
	if err := fw.transition(stateColumn, stateBlock, "endColumn"); err != nil {
		return err
	}
	leaf := fw.colLeaf
	pw := fw.colPW

	meta := format.ColumnMetaData{
		Type:                  leaf.Node.Type,
		Encodings:             pw.Encodings(),
		PathInSchema:          leaf.Path,
		Codec:                 fw.cfg.Compression,
		NumValues:             valueCount,
		TotalUncompressedSize: pw.TotalUncompressedSize(),
		TotalCompressedSize:   pw.TotalCompressedSize(),
		DataPageOffset:        fw.colStartOff + firstDataPageOffset,
	}
	if dictOffset >= 0 {
		off := fw.colStartOff + dictOffset
		meta.DictionaryPageOffset = &off
	}

	fw.blockColumns = append(fw.blockColumns, format.ColumnChunk{
		FileOffset: fw.colStartOff,
		MetaData:   meta,
	})
	fw.colLeaf = nil
	fw.colPW = nil
	return nil
}

// EndBlock closes the row group under construction, appending it to the
// footer's block list (Block -> Started).
func (fw *FileWriter) EndBlock(numRows int64) error {
	if err := fw.transition(stateBlock, stateStarted, "endBlock"); err != nil {
		return err
	}
	fw.rowGroups = append(fw.rowGroups, format.RowGroup{
		Columns:       fw.blockColumns,
		TotalByteSize: fw.sink.Position() - fw.blockStart,
		NumRows:       numRows,
	})
	fw.blockColumns = nil
	return nil
}

// AbandonBlock closes the row group under construction without recording
// it in the footer (Block -> Started). It is only valid for a block that
// never had any column started against it (no bytes were written for it),
// e.g. the implicit empty block Close finds open with zero buffered rows.
func (fw *FileWriter) AbandonBlock() error {
	if err := fw.transition(stateBlock, stateStarted, "abandonBlock"); err != nil {
		return err
	}
	fw.blockColumns = nil
	return nil
}

// End writes the footer, its 4-byte little-endian length, and the
// trailing MAGIC, then closes the sink (Started -> Ended).
func (fw *FileWriter) End(extraMetadata []format.KeyValue) error {
	if err := fw.transition(stateStarted, stateEnded, "end"); err != nil {
		return err
	}

	var totalRows int64
	for _, rg := range fw.rowGroups {
		totalRows += rg.NumRows
	}
	createdBy := "loopmachine-parquet-go"
	fm := &format.FileMetaData{
		Version:          1,
		Schema:           schemaElements(fw.schema),
		NumRows:          totalRows,
		RowGroups:        fw.rowGroups,
		KeyValueMetadata: extraMetadata,
		CreatedBy:        &createdBy,
	}

	footerBytes, err := fw.meta.Marshal(fm)
	if err != nil {
		return wrapErr(IOFailure, err, "marshal footer")
	}
	if _, err := fw.sink.Write(footerBytes); err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(footerBytes)))
	if _, err := fw.sink.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := fw.sink.Write(magic[:]); err != nil {
		return err
	}
	return fw.sink.Close()
}

// schemaElements flattens s into the footer's pre-order SchemaElement
// list: the implicit message root first, then every node in the same
// walk order schema.New used to assign leaf indexes.
func schemaElements(s *schema.Schema) []format.SchemaElement {
	var out []format.SchemaElement
	rootChildren := int32(len(s.Root.Children))
	out = append(out, format.SchemaElement{
		Name:        s.Root.Name,
		NumChildren: &rootChildren,
	})
	for _, child := range s.Root.Children {
		appendSchemaElement(&out, child)
	}
	return out
}

func appendSchemaElement(out *[]format.SchemaElement, n *schema.Node) {
	rep := n.Repetition
	if n.IsLeaf() {
		typ := n.Type
		el := format.SchemaElement{
			Type:           &typ,
			RepetitionType: &rep,
			Name:           n.Name,
		}
		if n.Type == schema.FixedLenByteArray {
			length := n.TypeLength
			el.TypeLength = &length
		}
		*out = append(*out, el)
		return
	}
	numChildren := int32(len(n.Children))
	*out = append(*out, format.SchemaElement{
		RepetitionType: &rep,
		Name:           n.Name,
		NumChildren:    &numChildren,
	})
	for _, c := range n.Children {
		appendSchemaElement(out, c)
	}
}
