// Package format defines the on-disk footer structures of a parquet file
// and the codec that serializes them. The wire format is the interoperable
// Thrift compact protocol so files remain cross-readable with other
// parquet implementations, per the core spec's MetadataCodec contract:
// round-tripping any valid footer yields byte-identical output.
package format

import "github.com/segmentio/encoding/thrift"

// Type is the primitive physical type of a leaf column.
type Type int32

const (
	Boolean Type = iota
	Int32
	Int64
	Int96
	Float
	Double
	ByteArray
	FixedLenByteArray
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// FieldRepetitionType is the repetition of a schema node.
type FieldRepetitionType int32

const (
	Required FieldRepetitionType = iota
	Optional
	Repeated
)

func (r FieldRepetitionType) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return "UNKNOWN"
	}
}

// Encoding identifies the value-stream codec used for a page.
type Encoding int32

const (
	Plain Encoding = iota
	// PlainDictionary identifies the legacy dictionary-indices encoding
	// (values are ids into a PLAIN-encoded dictionary page).
	PlainDictionary
	RLE
	BitPacked
	RLEDictionary
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case PlainDictionary:
		return "PLAIN_DICTIONARY"
	case RLE:
		return "RLE"
	case BitPacked:
		return "BIT_PACKED"
	case RLEDictionary:
		return "RLE_DICTIONARY"
	default:
		return "UNKNOWN"
	}
}

// CompressionCodec identifies the page compressor used for a column chunk.
type CompressionCodec int32

const (
	Uncompressed CompressionCodec = iota
	Snappy
	Gzip
	LZO
)

func (c CompressionCodec) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Snappy:
		return "SNAPPY"
	case Gzip:
		return "GZIP"
	case LZO:
		return "LZO"
	default:
		return "UNKNOWN"
	}
}

// PageType distinguishes data pages from dictionary (and future index)
// pages at the page-header level.
type PageType int32

const (
	DataPage PageType = iota
	DictionaryPage
	IndexPage
)

func (t PageType) String() string {
	switch t {
	case DataPage:
		return "DATA_PAGE"
	case DictionaryPage:
		return "DICTIONARY_PAGE"
	case IndexPage:
		return "INDEX_PAGE"
	default:
		return "UNKNOWN"
	}
}

// SchemaElement is one flattened node of the schema tree, in the same
// pre-order the schema was walked in; group nodes carry NumChildren,
// leaves carry Type (and TypeLength for FIXED_LEN_BYTE_ARRAY).
type SchemaElement struct {
	Type           *Type                `thrift:"1"`
	TypeLength     *int32               `thrift:"2"`
	RepetitionType *FieldRepetitionType `thrift:"3"`
	Name           string               `thrift:"4,required"`
	NumChildren    *int32               `thrift:"5"`
}

// DataPageHeader carries the per-page metadata for a DATA_PAGE.
type DataPageHeader struct {
	NumValues               int32    `thrift:"1,required"`
	Encoding                Encoding `thrift:"2,required"`
	DefinitionLevelEncoding Encoding `thrift:"3,required"`
	RepetitionLevelEncoding Encoding `thrift:"4,required"`
}

// DictionaryPageHeader carries the per-page metadata for a
// DICTIONARY_PAGE.
type DictionaryPageHeader struct {
	NumValues int32    `thrift:"1,required"`
	Encoding  Encoding `thrift:"2,required"`
	IsSorted  bool     `thrift:"3"`
}

// PageHeader precedes every page's (compressed) payload in the file.
type PageHeader struct {
	Type                 PageType              `thrift:"1,required"`
	UncompressedPageSize int32                 `thrift:"2,required"`
	CompressedPageSize   int32                 `thrift:"3,required"`
	CRC                  *int32                `thrift:"4"`
	DataPageHeader       *DataPageHeader       `thrift:"5"`
	DictionaryPageHeader *DictionaryPageHeader `thrift:"7"`
}

// ColumnMetaData describes one column chunk's data within a row group.
type ColumnMetaData struct {
	Type                  Type              `thrift:"1,required"`
	Encodings             []Encoding        `thrift:"2,required"`
	PathInSchema          []string          `thrift:"3,required"`
	Codec                 CompressionCodec  `thrift:"4,required"`
	NumValues             int64             `thrift:"5,required"`
	TotalUncompressedSize int64             `thrift:"6,required"`
	TotalCompressedSize   int64             `thrift:"7,required"`
	KeyValueMetadata      []KeyValue        `thrift:"8"`
	DataPageOffset        int64             `thrift:"9,required"`
	DictionaryPageOffset  *int64            `thrift:"11"`
}

// ColumnChunk locates one column chunk's metadata, inline within the file
// that owns it (FilePath is unset for the common self-contained layout).
type ColumnChunk struct {
	FilePath   *string         `thrift:"1"`
	FileOffset int64           `thrift:"2,required"`
	MetaData   ColumnMetaData  `thrift:"3"`
}

// RowGroup is one horizontal slice of the table: a contiguous run of
// column chunks in schema leaf order, plus its own row/byte accounting.
type RowGroup struct {
	Columns        []ColumnChunk `thrift:"1,required"`
	TotalByteSize  int64         `thrift:"2,required"`
	NumRows        int64         `thrift:"3,required"`
}

// KeyValue is one caller-supplied footer metadata entry.
type KeyValue struct {
	Key   string  `thrift:"1,required"`
	Value *string `thrift:"2"`
}

// FileMetaData is the whole footer: schema, row groups and auxiliary
// key/value metadata, as read off the wire by MetadataCodec.
type FileMetaData struct {
	Version          int32           `thrift:"1,required"`
	Schema           []SchemaElement `thrift:"2,required"`
	NumRows          int64           `thrift:"3,required"`
	RowGroups        []RowGroup      `thrift:"4,required"`
	KeyValueMetadata []KeyValue      `thrift:"5"`
	CreatedBy        *string         `thrift:"6"`
}

// MetadataCodec serializes and parses FileMetaData using the Thrift
// compact protocol, so round-tripping a footer is a byte-identical fixed
// point and the file stays cross-readable with other implementations.
type MetadataCodec struct {
	protocol thrift.CompactProtocol
}

// Marshal serializes v (a *FileMetaData footer or a *PageHeader) to its
// compact-protocol wire bytes.
func (c *MetadataCodec) Marshal(v any) ([]byte, error) {
	return thrift.Marshal(&c.protocol, v)
}

// Unmarshal parses wire bytes produced by Marshal back into v.
func (c *MetadataCodec) Unmarshal(data []byte, v any) error {
	return thrift.Unmarshal(&c.protocol, data, v)
}
