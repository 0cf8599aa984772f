package parquet

import (
	"github.com/loopmachine/parquet-go/encoding"
	"github.com/loopmachine/parquet-go/schema"
)

// Group is the generic nested-record representation the shredder walks.
// Input-record adapters (struct/protobuf/JSON -> Group) are an external
// collaborator per §1; the core only ever sees this shape. A field's
// value is one of:
//   - nil                      absent OPTIONAL/REPEATED field
//   - a leaf value             bool, int32, int64, float32, float64,
//                               []byte (BINARY/FIXED_LEN_BYTE_ARRAY), or
//                               [12]byte (INT96)
//   - a Group                  a present (non-repeated) group field
//   - []any                    a REPEATED field's elements, each either
//                               a Group (repeated group) or a leaf value
//                               (repeated leaf); an empty or nil slice
//                               means the repeated field has no elements
type Group map[string]any

// LeafSink receives the (value, rep, def) triples the shredder produces,
// addressed by the target leaf's schema.Node.LeafIndex. ColumnStore is
// the production implementation.
type LeafSink interface {
	WriteValue(leafIndex int, v encoding.Value, rep, def int) error
	WriteNull(leafIndex int, rep, def int)
}

// RecordShredder walks Group records against a fixed Schema, converting
// each into one (value|null, rep, def) triple per leaf occurrence per the
// Dremel shredding algorithm (§4.9).
type RecordShredder struct {
	schema *schema.Schema
}

// NewRecordShredder returns a shredder bound to s.
func NewRecordShredder(s *schema.Schema) *RecordShredder {
	return &RecordShredder{schema: s}
}

// Shred walks one record, writing triples for every leaf to sink.
// rec's first emitted triple per leaf has rep=0, as required for any new
// outer record (§4.9).
func (rs *RecordShredder) Shred(rec Group, sink LeafSink) error {
	for _, field := range rs.schema.Root.Children {
		val, ok := rec[field.Name]
		if !ok {
			val = nil
		}
		if err := rs.visit(field, val, 0, 0, 0, sink); err != nil {
			return err
		}
	}
	return nil
}

// visit processes one schema node at one record position.
//
//   - currentRep is the rep value to use if this node begins a repeated
//     field's first element (or is not repeated at all).
//   - repDepth is the count of repeated ancestors strictly above node
//     (node's own contribution, if repeated, is repDepth+1).
//   - currentDef is the count of non-required ancestors already realized
//     as present on the path down to node.
func (rs *RecordShredder) visit(node *schema.Node, val any, currentRep, repDepth, currentDef int, sink LeafSink) error {
	if node.Repetition == schema.Repeated {
		return rs.visitRepeated(node, val, currentRep, repDepth, currentDef, sink)
	}

	present := val != nil
	def := currentDef
	if node.Repetition == schema.Optional {
		if !present {
			rs.emitNullSubtree(node, currentRep, currentDef, sink)
			return nil
		}
		def++
	} else if node.Repetition == schema.Required && !present {
		return newErr(InvalidRecord, "missing required field %q", node.Name)
	}

	if node.IsLeaf() {
		return rs.emitLeafValue(node, val, currentRep, def, sink)
	}
	return rs.visitGroup(node, val, currentRep, repDepth, def, sink)
}

func (rs *RecordShredder) visitRepeated(node *schema.Node, val any, currentRep, repDepth, currentDef int, sink LeafSink) error {
	elems, _ := val.([]any)
	if len(elems) == 0 {
		rs.emitNullSubtree(node, currentRep, currentDef, sink)
		return nil
	}
	ownRepLevel := repDepth + 1
	def := currentDef + 1
	for i, elem := range elems {
		elemRep := ownRepLevel
		if i == 0 {
			elemRep = currentRep
		}
		if node.IsLeaf() {
			if err := rs.emitLeafValue(node, elem, elemRep, def, sink); err != nil {
				return err
			}
			continue
		}
		g, _ := elem.(Group)
		if err := rs.visitGroup(node, g, elemRep, ownRepLevel, def, sink); err != nil {
			return err
		}
	}
	return nil
}

func (rs *RecordShredder) visitGroup(node *schema.Node, val any, currentRep, repDepth, def int, sink LeafSink) error {
	g, _ := val.(Group)
	for _, child := range node.Children {
		childVal, ok := g[child.Name]
		if !ok {
			childVal = nil
		}
		if err := rs.visit(child, childVal, currentRep, repDepth, def, sink); err != nil {
			return err
		}
	}
	return nil
}

func (rs *RecordShredder) emitLeafValue(node *schema.Node, val any, rep, def int, sink LeafSink) error {
	if val == nil {
		if node.Repetition == schema.Required {
			return newErr(InvalidRecord, "missing required leaf %q", node.Name)
		}
		sink.WriteNull(node.LeafIndex, rep, def)
		return nil
	}
	v, err := toValue(node, val)
	if err != nil {
		return err
	}
	return sink.WriteValue(node.LeafIndex, v, rep, def)
}

// emitNullSubtree emits one null triple for every leaf beneath (and
// including) node, at the rep/def that held at the point node was found
// absent — the "depthOfFirstMissingAncestor-1" rule of §4.9.
func (rs *RecordShredder) emitNullSubtree(node *schema.Node, rep, def int, sink LeafSink) {
	if node.IsLeaf() {
		sink.WriteNull(node.LeafIndex, rep, def)
		return
	}
	for _, child := range node.Children {
		rs.emitNullSubtree(child, rep, def, sink)
	}
}

func toValue(node *schema.Node, val any) (encoding.Value, error) {
	switch node.Type {
	case schema.Boolean:
		v, ok := val.(bool)
		if !ok {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected bool, got %T", node.Name, val)
		}
		return encoding.BoolValue(v), nil
	case schema.Int32:
		v, ok := val.(int32)
		if !ok {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected int32, got %T", node.Name, val)
		}
		return encoding.Int32Value(v), nil
	case schema.Int64:
		v, ok := val.(int64)
		if !ok {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected int64, got %T", node.Name, val)
		}
		return encoding.Int64Value(v), nil
	case schema.Float:
		v, ok := val.(float32)
		if !ok {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected float32, got %T", node.Name, val)
		}
		return encoding.FloatValue(v), nil
	case schema.Double:
		v, ok := val.(float64)
		if !ok {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected float64, got %T", node.Name, val)
		}
		return encoding.DoubleValue(v), nil
	case schema.Int96:
		v, ok := val.([12]byte)
		if !ok {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected [12]byte, got %T", node.Name, val)
		}
		return encoding.Int96Value(v), nil
	case schema.FixedLenByteArray:
		v, ok := val.([]byte)
		if !ok || int32(len(v)) != node.TypeLength {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected %d-byte fixed array, got %T", node.Name, node.TypeLength, val)
		}
		return encoding.FixedLenValue(v), nil
	default:
		v, ok := val.([]byte)
		if !ok {
			return encoding.Value{}, newErr(InvalidRecord, "field %q: expected []byte, got %T", node.Name, val)
		}
		return encoding.BinaryValue(v), nil
	}
}
