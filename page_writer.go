package parquet

import (
	"bytes"
	"hash/crc32"

	"github.com/loopmachine/parquet-go/compress"
	"github.com/loopmachine/parquet-go/format"
)

// PageWriter compresses and frames pages for one column chunk into an
// in-memory per-chunk accumulator, and tracks that chunk's running byte
// totals and the set of encodings actually used. The accumulator is
// handed to the sink as one contiguous write by the FileWriter's
// WriteDataPages, between StartColumn and EndColumn (§4.8, §4.11),
// so a column chunk's pages stay contiguous on disk even though they may
// be produced (and accumulated) across many WriteRecord calls.
type PageWriter struct {
	codec     compress.Compressor
	meta      format.MetadataCodec
	encodings map[format.Encoding]bool
	buf       bytes.Buffer

	totalUncompressed int64
	totalCompressed    int64
}

// NewPageWriter returns a PageWriter that compresses with codec and
// accumulates framed pages in memory until its chunk is flushed.
func NewPageWriter(codec compress.Compressor) *PageWriter {
	return &PageWriter{
		codec:     codec,
		encodings: make(map[format.Encoding]bool),
	}
}

// Len reports the accumulator's current length — the offset, relative to
// the eventual chunk start, that the next page written will land at.
func (pw *PageWriter) Len() int64 { return int64(pw.buf.Len()) }

// Bytes returns the chunk's full accumulated, already-framed page stream,
// ready for one contiguous write to the sink.
func (pw *PageWriter) Bytes() []byte { return pw.buf.Bytes() }

// pageStreams is the assembled, uncompressed page payload, per §4.7's
// frame: repLenPrefix | repBytes | defLenPrefix | defBytes | valueBytes.
type pageStreams struct {
	repBytes, defBytes, valueBytes []byte
}

func assemblePagePayload(s pageStreams) []byte {
	out := make([]byte, 0, 8+len(s.repBytes)+len(s.defBytes)+len(s.valueBytes))
	out = appendLenPrefixed(out, s.repBytes)
	out = appendLenPrefixed(out, s.defBytes)
	out = append(out, s.valueBytes...)
	return out
}

func appendLenPrefixed(dst, data []byte) []byte {
	n := uint32(len(data))
	dst = append(dst, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return append(dst, data...)
}

// WriteDataPage compresses and frames one DATA_PAGE and appends it to the
// in-memory accumulator, returning the number of bytes appended (header +
// compressed payload).
func (pw *PageWriter) WriteDataPage(valueCount int, streams pageStreams, valuesEncoding, repEncoding, defEncoding format.Encoding) (int64, error) {
	payload := assemblePagePayload(streams)
	return pw.writePage(format.DataPage, payload, int32(valueCount), valuesEncoding, repEncoding, defEncoding, false)
}

// WriteDictionaryPage compresses and frames one DICTIONARY_PAGE.
func (pw *PageWriter) WriteDictionaryPage(numValues int, payload []byte) (int64, error) {
	return pw.writePage(format.DictionaryPage, payload, int32(numValues), format.Plain, 0, 0, false)
}

func (pw *PageWriter) writePage(pageType format.PageType, payload []byte, numValues int32, valuesEncoding, repEncoding, defEncoding format.Encoding, isDict bool) (int64, error) {
	compressed, err := pw.codec.Compress(payload)
	if err != nil {
		return 0, wrapErr(IOFailure, err, "compress page")
	}
	crc := int32(crc32.ChecksumIEEE(compressed))

	header := &format.PageHeader{
		Type:                 pageType,
		UncompressedPageSize: int32(len(payload)),
		CompressedPageSize:   int32(len(compressed)),
		CRC:                  &crc,
	}
	switch pageType {
	case format.DataPage:
		header.DataPageHeader = &format.DataPageHeader{
			NumValues:               numValues,
			Encoding:                valuesEncoding,
			DefinitionLevelEncoding: defEncoding,
			RepetitionLevelEncoding: repEncoding,
		}
		pw.encodings[valuesEncoding] = true
		pw.encodings[repEncoding] = true
		pw.encodings[defEncoding] = true
	case format.DictionaryPage:
		header.DictionaryPageHeader = &format.DictionaryPageHeader{
			NumValues: numValues,
			Encoding:  valuesEncoding,
		}
	}

	headerBytes, err := pw.meta.Marshal(header)
	if err != nil {
		return 0, wrapErr(IOFailure, err, "marshal page header")
	}

	pw.buf.Write(headerBytes)
	pw.buf.Write(compressed)

	written := int64(len(headerBytes) + len(compressed))
	pw.totalUncompressed += int64(len(headerBytes) + len(payload))
	pw.totalCompressed += written
	return written, nil
}

// Encodings returns the set of encodings used by pages written so far, in
// no particular order.
func (pw *PageWriter) Encodings() []format.Encoding {
	out := make([]format.Encoding, 0, len(pw.encodings))
	for e := range pw.encodings {
		out = append(out, e)
	}
	return out
}

// TotalUncompressedSize and TotalCompressedSize report this chunk's
// running byte totals (payload bytes plus their page headers).
func (pw *PageWriter) TotalUncompressedSize() int64 { return pw.totalUncompressed }
func (pw *PageWriter) TotalCompressedSize() int64   { return pw.totalCompressed }
