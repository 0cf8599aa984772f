// Package compress implements the Compressor collaborator interface the
// core write path consumes, backed by the page-compression libraries
// used elsewhere in the wider parquet-go ecosystem: klauspost/compress
// for SNAPPY and GZIP, pierrec/lz4 standing in for LZO (no maintained
// LZO1X implementation exists in the Go ecosystem; see DESIGN.md).
package compress

import (
	"bytes"
	"fmt"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/pierrec/lz4/v4"

	"github.com/loopmachine/parquet-go/format"
)

// Compressor is the collaborator interface the page writer consumes; the
// core treats every codec as opaque beyond this contract.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(dst, src []byte) ([]byte, error)
	Codec() format.CompressionCodec
}

// ByCodec returns the Compressor implementation for a named codec.
func ByCodec(codec format.CompressionCodec) (Compressor, error) {
	switch codec {
	case format.Uncompressed:
		return noneCompressor{}, nil
	case format.Snappy:
		return snappyCompressor{}, nil
	case format.Gzip:
		return gzipCompressor{}, nil
	case format.LZO:
		return lz4Compressor{}, nil
	default:
		return nil, fmt.Errorf("compress: unsupported codec %s", codec)
	}
}

type noneCompressor struct{}

func (noneCompressor) Compress(src []byte) ([]byte, error)         { return src, nil }
func (noneCompressor) Decompress(dst, src []byte) ([]byte, error)  { return append(dst, src...), nil }
func (noneCompressor) Codec() format.CompressionCodec              { return format.Uncompressed }

type snappyCompressor struct{}

func (snappyCompressor) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCompressor) Decompress(dst, src []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, src)
	if err != nil {
		return nil, fmt.Errorf("compress: snappy decode: %w", err)
	}
	return append(dst, out...), nil
}

func (snappyCompressor) Codec() format.CompressionCodec { return format.Snappy }

type gzipCompressor struct{}

func (gzipCompressor) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := kgzip.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("compress: gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

func (gzipCompressor) Decompress(dst, src []byte) ([]byte, error) {
	r, err := kgzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("compress: gzip reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("compress: gzip read: %w", err)
	}
	return append(dst, out...), nil
}

func (gzipCompressor) Codec() format.CompressionCodec { return format.Gzip }

// lz4Compressor backs the LZO codec slot. Real Parquet LZO pages use
// lzo1x framing that has no maintained Go implementation in the pack;
// lz4 is used as a same-shape (block compressor, opaque to the core)
// stand-in so the LZO codec path is exercised end-to-end. See DESIGN.md.
type lz4Compressor struct{}

func (lz4Compressor) Compress(src []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, buf)
	if err != nil {
		return nil, fmt.Errorf("compress: lz4 block: %w", err)
	}
	if n == 0 && len(src) > 0 {
		// Incompressible input: lz4 signals this by writing nothing, so
		// the raw bytes are stored after the length prefix instead.
		buf, n = src, len(src)
	}
	out := make([]byte, 4+n)
	out[0] = byte(len(src))
	out[1] = byte(len(src) >> 8)
	out[2] = byte(len(src) >> 16)
	out[3] = byte(len(src) >> 24)
	copy(out[4:], buf[:n])
	return out, nil
}

func (lz4Compressor) Decompress(dst, src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("compress: lz4 payload too short")
	}
	origLen := int(src[0]) | int(src[1])<<8 | int(src[2])<<16 | int(src[3])<<24
	out := make([]byte, origLen)
	if origLen == 0 {
		return dst, nil
	}
	if len(src[4:]) == origLen {
		// Stored uncompressed (incompressible-input path above).
		return append(dst, src[4:]...), nil
	}
	n, err := lz4.UncompressBlock(src[4:], out)
	if err != nil {
		return nil, fmt.Errorf("compress: lz4 block: %w", err)
	}
	return append(dst, out[:n]...), nil
}

func (lz4Compressor) Codec() format.CompressionCodec { return format.LZO }
