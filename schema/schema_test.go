package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComputesLevelsAndPaths(t *testing.T) {
	// message m {
	//   required int64 id;
	//   optional group address {
	//     optional binary city;
	//     repeated int64 zip;
	//   }
	// }
	s := New("m",
		Leaf("id", Required, Int64),
		Group("address", Optional,
			Leaf("city", Optional, Binary),
			Leaf("zip", Repeated, Int64),
		),
	)

	require.Len(t, s.Leaves, 3)

	id := s.LeafByPath("id")
	require.NotNil(t, id)
	assert.Equal(t, 0, id.MaxRep)
	assert.Equal(t, 0, id.MaxDef)

	city := s.LeafByPath("address", "city")
	require.NotNil(t, city)
	assert.Equal(t, 0, city.MaxRep)
	assert.Equal(t, 2, city.MaxDef) // address optional + city optional

	zip := s.LeafByPath("address", "zip")
	require.NotNil(t, zip)
	assert.Equal(t, 1, zip.MaxRep)
	assert.Equal(t, 2, zip.MaxDef) // address optional + zip repeated
}

func TestLeafIndexMatchesSchemaOrder(t *testing.T) {
	s := New("m",
		Leaf("a", Required, Int32),
		Leaf("b", Required, Int32),
		Leaf("c", Required, Int32),
	)
	for i, l := range s.Leaves {
		assert.Equal(t, i, l.Node.LeafIndex)
	}
}

func TestLeafByPathMissing(t *testing.T) {
	s := New("m", Leaf("a", Required, Int32))
	assert.Nil(t, s.LeafByPath("nope"))
}

func TestFixedLenLeaf(t *testing.T) {
	s := New("m", FixedLenLeaf("hash", Required, 16))
	l := s.Leaves[0]
	assert.Equal(t, int32(16), l.Node.TypeLength)
	assert.Equal(t, FixedLenByteArray, l.Node.Type)
}
