package encoding

import (
	"github.com/loopmachine/parquet-go/internal/bits"
	"github.com/loopmachine/parquet-go/internal/rle"
)

// LevelEncoder packs a stream of repetition or definition levels (ints in
// [0, maxLevel]) into the RLE/bit-packing hybrid, sized to the smallest
// width that fits maxLevel. When maxLevel is 0 there is nothing to
// encode: the level is always 0 and the stream is empty.
type LevelEncoder struct {
	width int
	enc   *rle.Encoder
	count int
}

// NewLevelEncoder returns a LevelEncoder for levels in [0, maxLevel].
func NewLevelEncoder(maxLevel int) *LevelEncoder {
	width := bits.BitsNeeded(uint32(maxLevel))
	e := &LevelEncoder{width: width}
	if width > 0 {
		e.enc = rle.NewEncoder(width)
	}
	return e
}

// Write appends one level value.
func (e *LevelEncoder) Write(level int) {
	e.count++
	if e.enc != nil {
		e.enc.Write(uint32(level))
	}
}

// Count returns the number of levels written since construction.
func (e *LevelEncoder) Count() int { return e.count }

// ApproxBytes estimates the stream's current size for memSize() bookkeeping.
func (e *LevelEncoder) ApproxBytes() int {
	if e.enc == nil {
		return 0
	}
	return e.enc.ApproxBytes()
}

// Bytes finalizes and returns the encoded level stream; empty when
// maxLevel was 0.
func (e *LevelEncoder) Bytes() []byte {
	if e.enc == nil {
		return nil
	}
	return e.enc.Bytes()
}
