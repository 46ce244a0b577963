// Package model defines the catalog tree entity shared by every canopy
// component. A catalog is a strict rooted tree of Nodes: each node is owned
// by exactly one parent (or by the store at the root level), and derived
// views always work on copies, never on the canonical nodes themselves.
package model

// Kind classifies a catalog node for display purposes (icon, color, sort
// grouping). The tree engine never branches on Kind: whether a node can hold
// children is determined solely by the Children field.
type Kind string

const (
	KindDatabase Kind = "database"
	KindSchema   Kind = "schema"
	KindFolder   Kind = "folder"
	KindTable    Kind = "table"
	KindView     Kind = "view"
	KindFunction Kind = "function"
	KindColumn   Kind = "column"
	KindFile     Kind = "file"
)

// Node is a single entry in the catalog tree.
//
// Children carries the container/leaf distinction: a nil slice marks an
// intrinsic leaf that can never gain children, while a non-nil slice (even an
// empty one) marks a container. An empty container is either unloaded (Loaded
// false, children unknown) or genuinely empty (Loaded true). The JSON tag on
// Children deliberately omits omitempty so an empty container round-trips as
// [] and a leaf as null.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Kind     Kind    `json:"kind,omitempty"`
	Children []*Node `json:"children"`

	// Checked is authoritative user intent for leaves. For containers it is
	// a cached "fully checked" hint maintained by the store; the tri-state
	// aggregator is the source of truth for display.
	Checked bool `json:"checked,omitempty"`

	// Loaded is true once a successful fetch has populated Children.
	Loaded bool `json:"loaded,omitempty"`

	// Loading is true while a child fetch is in flight. Transient, never
	// serialized.
	Loading bool `json:"-"`
}

// NewContainer returns a container node. With no children the container is
// an unloaded shell; with children it is born loaded.
func NewContainer(id, name string, kind Kind, children ...*Node) *Node {
	n := &Node{ID: id, Name: name, Kind: kind, Children: []*Node{}}
	if len(children) > 0 {
		n.Children = children
		n.Loaded = true
	}
	return n
}

// NewLeaf returns an intrinsic leaf node.
func NewLeaf(id, name string, kind Kind) *Node {
	return &Node{ID: id, Name: name, Kind: kind}
}

// IsContainer reports whether the node can hold children, even if none are
// currently known.
func (n *Node) IsContainer() bool {
	return n != nil && n.Children != nil
}

// IsLeaf reports whether the node is an intrinsic leaf.
func (n *Node) IsLeaf() bool {
	return n != nil && n.Children == nil
}

// Clone returns a deep copy of the node and its entire subtree. The copy
// shares no memory with the original, so a holder of the clone can mutate it
// freely without corrupting the source tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			c.Children = append(c.Children, child.Clone())
		}
	}
	return &c
}

// CloneShallow returns a copy of the node with the same Children slice
// contents in a fresh slice. Subtrees are shared; callers that intend to edit
// a child must replace the slice entry with its own copy first.
func (n *Node) CloneShallow() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
	}
	return &c
}

// CloneForest deep-copies a root-level sequence.
func CloneForest(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Walk visits the subtree rooted at n in document order (parent before
// children, siblings in sequence order). Returning false from fn stops the
// walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// WalkForest visits every node of a root-level sequence in document order.
func WalkForest(nodes []*Node, fn func(*Node) bool) {
	for _, n := range nodes {
		if !n.Walk(fn) {
			return
		}
	}
}

// Count returns the number of nodes in the forest, the roots included.
func Count(nodes []*Node) int {
	total := 0
	WalkForest(nodes, func(*Node) bool {
		total++
		return true
	})
	return total
}
