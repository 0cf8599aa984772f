package parquet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmachine/parquet-go/encoding"
	"github.com/loopmachine/parquet-go/schema"
)

type triple struct {
	val      *encoding.Value
	rep, def int
}

type recordingSink struct {
	triples []triple
}

func (s *recordingSink) WriteValue(leafIndex int, v encoding.Value, rep, def int) error {
	s.triples = append(s.triples, triple{val: &v, rep: rep, def: def})
	return nil
}

func (s *recordingSink) WriteNull(leafIndex int, rep, def int) {
	s.triples = append(s.triples, triple{rep: rep, def: def})
}

// message M { optional group a { repeated group b { required int32 c; }}}
// maxDef(c) = 2, maxRep(c) = 1.
func dremelSchema() *schema.Schema {
	return schema.New("M",
		schema.Group("a", schema.Optional,
			schema.Group("b", schema.Repeated,
				schema.Leaf("c", schema.Required, schema.Int32),
			),
		),
	)
}

func TestShredNestedRepeatedGroup(t *testing.T) {
	s := dremelSchema()
	rs := NewRecordShredder(s)

	cases := []struct {
		name string
		rec  Group
		want []triple
	}{
		{
			name: "two elements",
			rec: Group{"a": Group{"b": []any{
				Group{"c": int32(1)},
				Group{"c": int32(2)},
			}}},
			want: []triple{{rep: 0, def: 2}, {rep: 1, def: 2}},
		},
		{
			name: "empty repeated group",
			rec:  Group{"a": Group{"b": []any{}}},
			want: []triple{{rep: 0, def: 1}},
		},
		{
			name: "absent optional group",
			rec:  Group{"a": nil},
			want: []triple{{rep: 0, def: 0}},
		},
		{
			name: "missing field entirely",
			rec:  Group{},
			want: []triple{{rep: 0, def: 0}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sink := &recordingSink{}
			require.NoError(t, rs.Shred(c.rec, sink))
			require.Len(t, sink.triples, len(c.want))
			for i, want := range c.want {
				got := sink.triples[i]
				assert.Equal(t, want.rep, got.rep, "triple %d rep", i)
				assert.Equal(t, want.def, got.def, "triple %d def", i)
			}
		})
	}
}

func TestShredMissingRequiredFieldIsInvalidRecord(t *testing.T) {
	s := schema.New("m", schema.Leaf("x", schema.Required, schema.Int32))
	rs := NewRecordShredder(s)
	sink := &recordingSink{}

	err := rs.Shred(Group{}, sink)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, InvalidRecord, kind)
}

func TestShredEmitsValuesInSchemaLeafOrder(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("x", schema.Required, schema.Int32),
		schema.Leaf("y", schema.Required, schema.Int32),
	)
	rs := NewRecordShredder(s)
	sink := &recordingSink{}

	require.NoError(t, rs.Shred(Group{"x": int32(1), "y": int32(2)}, sink))
	require.Len(t, sink.triples, 2)
	assert.Equal(t, int32(1), sink.triples[0].val.Int32())
	assert.Equal(t, int32(2), sink.triples[1].val.Int32())
}
