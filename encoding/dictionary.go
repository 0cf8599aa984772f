package encoding

import (
	"math"
	"strconv"

	"github.com/loopmachine/parquet-go/format"
	"github.com/loopmachine/parquet-go/internal/bits"
	"github.com/loopmachine/parquet-go/internal/rle"
)

// DictionaryEncoder builds an insertion-ordered value->id map for one
// column chunk and emits ids via the RLE/bit-packing hybrid. It falls
// back to PLAIN once the dictionary's estimated PLAIN-encoded byte size
// would exceed dictPageSizeLimit: the dictionary page already captured is
// kept, the ids buffered for the page currently being accumulated are
// resolved back to their values, and every value from that point on
// (including the rest of the in-progress page and all later pages in the
// chunk) is written through a PLAIN encoder instead. This is the fallback
// policy documented as the chosen resolution of the open question in
// the core spec's §9/§4.5.
type DictionaryEncoder struct {
	kind      format.Type
	budget    int
	index     map[string]uint32
	order     []Value
	estBytes  int
	pendingID []uint32

	fallback *PlainEncoder
}

// NewDictionaryEncoder returns a DictionaryEncoder for leaves of the
// given physical type, falling back to PLAIN once the dictionary would
// grow past dictPageSizeLimit estimated PLAIN-encoded bytes.
func NewDictionaryEncoder(kind format.Type, dictPageSizeLimit int) *DictionaryEncoder {
	return &DictionaryEncoder{
		kind:   kind,
		budget: dictPageSizeLimit,
		index:  make(map[string]uint32),
	}
}

func (e *DictionaryEncoder) Tag() format.Encoding {
	if e.fallback != nil {
		return format.Plain
	}
	return format.RLEDictionary
}

// FellBack reports whether this chunk has switched to PLAIN.
func (e *DictionaryEncoder) FellBack() bool { return e.fallback != nil }

// DictionarySize returns the number of distinct values captured in the
// dictionary page (frozen once fallback occurs).
func (e *DictionaryEncoder) DictionarySize() int { return len(e.order) }

// DictionaryPageBytes returns the PLAIN encoding of the dictionary's
// values, in insertion (id) order, for the chunk's dictionary page.
func (e *DictionaryEncoder) DictionaryPageBytes() ([]byte, error) {
	p := NewPlainEncoder(e.kind)
	for _, v := range e.order {
		if err := p.WriteValue(v); err != nil {
			return nil, err
		}
	}
	return p.Finish()
}

func (e *DictionaryEncoder) WriteNull() {
	if e.fallback != nil {
		e.fallback.WriteNull()
	}
}

func (e *DictionaryEncoder) WriteValue(v Value) error {
	if e.fallback != nil {
		return e.fallback.WriteValue(v)
	}
	key := dictKey(v)
	id, ok := e.index[key]
	if !ok {
		cost := plainCost(v)
		if e.estBytes+cost > e.budget {
			return e.fallBackTo(v)
		}
		id = uint32(len(e.order))
		e.index[key] = id
		e.order = append(e.order, v)
		e.estBytes += cost
	}
	e.pendingID = append(e.pendingID, id)
	return nil
}

func (e *DictionaryEncoder) fallBackTo(v Value) error {
	e.fallback = NewPlainEncoder(e.kind)
	for _, id := range e.pendingID {
		if err := e.fallback.WriteValue(e.order[id]); err != nil {
			return err
		}
	}
	e.pendingID = nil
	return e.fallback.WriteValue(v)
}

func (e *DictionaryEncoder) BytesWritten() int {
	if e.fallback != nil {
		return e.fallback.BytesWritten()
	}
	return len(e.pendingID) * 4
}

// Finish emits the ids buffered for the current page via the RLE/bit-
// packing hybrid, at width = max(1, bitsNeeded(dictionarySize-1)) as
// required by §4.5. The dictionary itself (and its page bytes) outlives
// Finish and is read back via DictionaryPageBytes.
func (e *DictionaryEncoder) Finish() ([]byte, error) {
	if e.fallback != nil {
		return e.fallback.Finish()
	}
	width := 1
	if n := len(e.order); n > 1 {
		width = bits.BitsNeeded(uint32(n - 1))
		if width == 0 {
			width = 1
		}
	}
	enc := rle.NewEncoder(width)
	for _, id := range e.pendingID {
		enc.Write(id)
	}
	e.pendingID = e.pendingID[:0]
	return enc.Bytes(), nil
}

func dictKey(v Value) string {
	switch v.Kind {
	case format.Boolean:
		if v.b {
			return "1"
		}
		return "0"
	case format.Int32:
		return "i:" + strconv.FormatInt(int64(v.i32), 10)
	case format.Int64:
		return "l:" + strconv.FormatInt(v.i64, 10)
	case format.Float:
		return "f:" + strconv.FormatUint(uint64(math.Float32bits(v.f32)), 10)
	case format.Double:
		return "d:" + strconv.FormatUint(math.Float64bits(v.f64), 10)
	case format.Int96:
		return "n:" + string(v.i96[:])
	default:
		return "b:" + string(v.bin)
	}
}

func plainCost(v Value) int {
	switch v.Kind {
	case format.ByteArray:
		return 4 + len(v.bin)
	default:
		return v.ByteSize()
	}
}
