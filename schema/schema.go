// Package schema implements the parquet schema tree: a rooted tree of
// named, typed nodes from which every leaf's repetition/definition level
// ceilings (maxRep, maxDef) and its root-to-leaf path are derived once, at
// tree-construction time, and then treated as immutable for the life of a
// writer.
package schema

import (
	"strings"

	"github.com/loopmachine/parquet-go/format"
)

// Repetition is a node's repetition, re-exported from format so callers
// building a schema don't need to import the wire package directly.
type Repetition = format.FieldRepetitionType

const (
	Required = format.Required
	Optional = format.Optional
	Repeated = format.Repeated
)

// PrimitiveType is a leaf's physical type.
type PrimitiveType = format.Type

const (
	Boolean           = format.Boolean
	Int32             = format.Int32
	Int64             = format.Int64
	Int96             = format.Int96
	Float             = format.Float
	Double            = format.Double
	Binary            = format.ByteArray
	FixedLenByteArray = format.FixedLenByteArray
)

// Node is one element of the schema tree. A Node with Children != nil is a
// Group; otherwise it is a Leaf and Type is meaningful.
type Node struct {
	Name       string
	Repetition Repetition
	Children   []*Node // nil for leaves
	Type       PrimitiveType
	TypeLength int32 // meaningful only for FixedLenByteArray leaves

	// LeafIndex is this leaf's position in the schema's flattened,
	// leaf-order list (Schema.Leaves), assigned by New. It is the stable
	// key the shredder and column store use to address a column; it is
	// meaningless for group nodes.
	LeafIndex int

	parent *Node
	isRoot bool
}

// Group constructs an interior node with the given children, in order.
func Group(name string, rep Repetition, children ...*Node) *Node {
	return &Node{Name: name, Repetition: rep, Children: children}
}

// Leaf constructs a primitive-typed leaf node.
func Leaf(name string, rep Repetition, typ PrimitiveType) *Node {
	return &Node{Name: name, Repetition: rep, Type: typ}
}

// FixedLenLeaf constructs a FIXED_LEN_BYTE_ARRAY leaf of the given length.
func FixedLenLeaf(name string, rep Repetition, length int32) *Node {
	return &Node{Name: name, Repetition: rep, Type: FixedLenByteArray, TypeLength: length}
}

// IsLeaf reports whether n is a leaf (primitive-typed) node.
func (n *Node) IsLeaf() bool { return n.Children == nil }

// Leaf is the resolved, flattened description of one leaf column: its
// path from the schema root, its derived level ceilings, and the ordered
// chain of ancestors (outermost first) used by the shredder to walk
// def/rep transitions.
type Leaf struct {
	Path       []string
	Node       *Node
	MaxRep     int
	MaxDef     int
	Ancestors  []*Node // top-level field..node inclusive; the message root is not included
}

// PathString joins a leaf's path with '.', used for log/footer display.
func (l *Leaf) PathString() string { return strings.Join(l.Path, ".") }

// Schema is an immutable schema tree plus its precomputed, schema-leaf-
// ordered list of leaves. A Schema is safe for concurrent read-only use by
// the shredder, column store, and metadata codec once built.
type Schema struct {
	Root  *Node
	Leaves []*Leaf
}

// New builds a Schema from a message-level root group, computing every
// leaf's path, maxRep and maxDef.
func New(name string, fields ...*Node) *Schema {
	root := &Node{Name: name, Repetition: Required, Children: fields, isRoot: true}
	linkParents(root, nil)
	s := &Schema{Root: root}
	walk(root, nil, 0, 0, &s.Leaves)
	return s
}

func linkParents(n *Node, parent *Node) {
	n.parent = parent
	for _, c := range n.Children {
		linkParents(c, n)
	}
}

func walk(n *Node, path []string, rep, def int, out *[]*Leaf) {
	if !n.isRoot {
		path = append(path, n.Name)
		if n.Repetition == Repeated {
			rep++
		}
		if n.Repetition != Required {
			def++
		}
	}
	if n.IsLeaf() {
		n.LeafIndex = len(*out)
		leaf := &Leaf{
			Path:   append([]string(nil), path...),
			Node:   n,
			MaxRep: rep,
			MaxDef: def,
		}
		leaf.Ancestors = ancestorChain(n)
		*out = append(*out, leaf)
		return
	}
	for _, c := range n.Children {
		walk(c, path, rep, def, out)
	}
}

func ancestorChain(n *Node) []*Node {
	var chain []*Node
	for cur := n; cur != nil && !cur.isRoot; cur = cur.parent {
		chain = append([]*Node{cur}, chain...)
	}
	return chain
}

// LeafByPath returns the Leaf whose path matches the given dotted names,
// or nil if no such leaf exists.
func (s *Schema) LeafByPath(path ...string) *Leaf {
	for _, l := range s.Leaves {
		if len(l.Path) != len(path) {
			continue
		}
		match := true
		for i := range path {
			if l.Path[i] != path[i] {
				match = false
				break
			}
		}
		if match {
			return l
		}
	}
	return nil
}
