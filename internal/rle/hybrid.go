// Package rle implements the RLE / bit-packing hybrid encoding used for
// definition levels, repetition levels, and dictionary-indices streams.
//
// encoded-data := <run>*
// run          := <bit-packed-run> | <rle-run>
// bit-packed-run := <bit-packed-header> <bit-packed-values>
// bit-packed-header := varint( numGroups<<1 | 1 )   (numGroups groups of 8 values)
// rle-run      := <rle-header> <repeated-value>
// rle-header   := varint( runLength<<1 )
// repeated-value is byteWidth(bitWidth) little-endian bytes.
//
// Adapted from the decoder half of loopmachine-parquet-go/parquet/rle.go:
// this package keeps that run-header / bit-packed-group layout but widens
// it into a symmetric encoder+decoder pair driven by the bits package
// instead of a per-width unpack-function table. The decoder reports
// errors for truncated or malformed streams; the width given to
// NewEncoder or NewDecoder is not validated.
package rle

import (
	"fmt"

	"github.com/loopmachine/parquet-go/internal/bits"
)

const groupSize = 8

// Encoder accumulates uint32 values and emits the RLE/bit-packing hybrid
// stream for a fixed bit width w. Values written must fit in w bits.
type Encoder struct {
	width int
	byteW int

	buf []byte

	// look-ahead window: values not yet committed to a run.
	pending []uint32
}

// NewEncoder returns an Encoder that packs values into width-bit slots.
// width must be in [0, 32].
func NewEncoder(width int) *Encoder {
	return &Encoder{
		width: width,
		byteW: bits.PaddedByteCount(width),
	}
}

// Write appends v to the stream being encoded. v must fit in the
// configured width; it is the caller's responsibility to ensure this.
// Write does not check it and returns no error for a value that is too
// wide.
func (e *Encoder) Write(v uint32) {
	e.pending = append(e.pending, v)
	e.drain(false)
}

// drain converts as much of the pending look-ahead window into committed
// runs as the current policy allows. When final is true, all remaining
// pending values are flushed as a last (possibly short, zero-padded)
// bit-packed group, matching the spec's "pad with zeros to 8 values but
// record only groups" flush contract.
func (e *Encoder) drain(final bool) {
	for {
		if len(e.pending) == 0 {
			return
		}

		if e.width == 0 {
			// Degenerate width: every value is 0 bits; just count it as an
			// RLE run of zeros so header bytes stay minimal.
			if !final && len(e.pending) < groupSize {
				return
			}
			e.emitRLE(0, uint32(len(e.pending)))
			e.pending = e.pending[:0]
			return
		}

		runLen := e.leadingRunLength()
		if runLen >= groupSize {
			if runLen == len(e.pending) && !final {
				// The run might still be extended by a later Write; hold
				// off emitting until it breaks or the stream is flushed,
				// so the run is coalesced to its true length instead of
				// being capped at groupSize.
				return
			}
			e.emitRLE(e.pending[0], uint32(runLen))
			e.pending = e.pending[runLen:]
			continue
		}

		// Not enough of a run at the head; accumulate whole groups of 8
		// for bit-packing, unless this is the final flush.
		if len(e.pending) >= groupSize {
			n := (len(e.pending) / groupSize) * groupSize
			// Stop short of a run that is building at the tail so a
			// later long run of equal values can still be detected.
			if tail := e.trailingRunLength(); tail >= groupSize && tail < len(e.pending) {
				n = len(e.pending) - tail
				n -= n % groupSize
				if n == 0 {
					if !final {
						// Fewer than a full group precedes the trailing
						// run; wait for more input before deciding how to
						// encode it.
						return
					}
					// Flushing now: the short leading prefix isn't a run
					// and isn't a full bit-packable group, so it must
					// still be emitted rather than dropped. One-value RLE
					// runs are wire-valid (just less compact) and keep
					// every following bit-packed group a true multiple of
					// groupSize.
					prefixLen := len(e.pending) - tail
					for i := 0; i < prefixLen; i++ {
						e.emitRLE(e.pending[i], 1)
					}
					e.pending = e.pending[prefixLen:]
					continue
				}
			}
			e.emitBitPacked(e.pending[:n])
			e.pending = e.pending[n:]
			continue
		}

		if final {
			e.emitBitPacked(e.pending)
			e.pending = e.pending[:0]
		}
		return
	}
}

func (e *Encoder) leadingRunLength() int {
	if len(e.pending) == 0 {
		return 0
	}
	v := e.pending[0]
	n := 1
	for n < len(e.pending) && e.pending[n] == v {
		n++
	}
	return n
}

func (e *Encoder) trailingRunLength() int {
	n := len(e.pending)
	if n == 0 {
		return 0
	}
	v := e.pending[n-1]
	run := 1
	for run < n && e.pending[n-1-run] == v {
		run++
	}
	return run
}

func (e *Encoder) emitRLE(value uint32, runLen uint32) {
	e.buf = bits.AppendUvarint32(e.buf, runLen<<1)
	valBuf := make([]byte, e.byteW)
	for i := 0; i < e.byteW; i++ {
		valBuf[i] = byte(value >> uint(8*i))
	}
	e.buf = append(e.buf, valBuf...)
}

func (e *Encoder) emitBitPacked(values []uint32) {
	numGroups := len(values) / groupSize
	if len(values)%groupSize != 0 {
		numGroups++
	}
	padded := make([]uint32, numGroups*groupSize)
	copy(padded, values)
	e.buf = bits.AppendUvarint32(e.buf, uint32(numGroups<<1)|1)
	packed := make([]byte, bits.PackedByteCount(len(padded), e.width))
	bits.Pack(packed, padded, e.width)
	e.buf = append(e.buf, packed...)
}

// Bytes finalizes any pending look-ahead state and returns the encoded
// stream. The Encoder must not be reused after calling Bytes.
func (e *Encoder) Bytes() []byte {
	e.drain(true)
	return e.buf
}

// ApproxBytes estimates the stream's current size without finalizing the
// look-ahead window, for memSize()-style soft bookkeeping.
func (e *Encoder) ApproxBytes() int {
	return len(e.buf) + bits.PackedByteCount(len(e.pending), e.width)
}

// Decoder reads a hybrid stream back into uint32 values. The stream does
// not record a final count for a partial bit-packed group, so the caller
// stops calling Next after the number of values it expects (a page's
// valueCount). Reading further yields the zero padding of a final
// partial group, then a truncated-stream error.
type Decoder struct {
	width int
	byteW int

	data []byte
	pos  int

	rleCount uint32
	rleValue uint32

	bpRun    [groupSize]uint32
	bpRunPos int
	bpGroups uint32
}

// NewDecoder returns a Decoder for a width-bit hybrid stream.
func NewDecoder(width int, data []byte) *Decoder {
	return &Decoder{
		width: width,
		byteW: bits.PaddedByteCount(width),
		data:  data,
	}
}

// Next returns the next decoded value.
func (d *Decoder) Next() (uint32, error) {
	if d.width == 0 {
		return 0, nil
	}
	if d.rleCount == 0 && d.bpGroups == 0 && d.bpRunPos == 0 {
		if err := d.readHeader(); err != nil {
			return 0, err
		}
	}
	if d.rleCount > 0 {
		d.rleCount--
		return d.rleValue, nil
	}
	if d.bpRunPos == 0 {
		if err := d.readBitPackedGroup(); err != nil {
			return 0, err
		}
		d.bpGroups--
	}
	v := d.bpRun[d.bpRunPos]
	d.bpRunPos = (d.bpRunPos + 1) % groupSize
	return v, nil
}

func (d *Decoder) readHeader() error {
	if d.pos >= len(d.data) {
		return fmt.Errorf("rle: truncated stream reading run header")
	}
	h, n, err := bits.ReadUvarint32(d.data[d.pos:])
	if err != nil {
		return fmt.Errorf("rle: malformed run header: %w", err)
	}
	d.pos += n
	if h&1 == 1 {
		d.bpGroups = h >> 1
		d.bpRunPos = 0
		if d.bpGroups == 0 {
			return fmt.Errorf("rle: empty bit-packed run")
		}
		return nil
	}
	d.rleCount = h >> 1
	if d.rleCount == 0 {
		return fmt.Errorf("rle: empty rle run")
	}
	return d.readRLEValue()
}

func (d *Decoder) readRLEValue() error {
	end := d.pos + d.byteW
	if end > len(d.data) {
		return fmt.Errorf("rle: truncated rle run value")
	}
	var v uint32
	for i := 0; i < d.byteW; i++ {
		v |= uint32(d.data[d.pos+i]) << uint(8*i)
	}
	d.rleValue = v
	d.pos = end
	return nil
}

func (d *Decoder) readBitPackedGroup() error {
	n := bits.PackedByteCount(groupSize, d.width)
	end := d.pos + n
	if end > len(d.data) {
		return fmt.Errorf("rle: truncated bit-packed group")
	}
	bits.Unpack(d.bpRun[:], d.data[d.pos:end], groupSize, d.width)
	d.pos = end
	return nil
}
