// Package tree implements the catalog tree state engine: a copy-on-write
// snapshot store, the tri-state check aggregator, the lazy-load state
// machine, the selected-only projection, and the search filter.
//
// Every mutation takes a *Snapshot and returns a new one; a snapshot handed
// to a caller is never mutated afterwards, so readers (the UI, projections,
// tests) can hold one across an arbitrary number of later mutations.
package tree

import (
	"github.com/vanderheijden86/canopy/pkg/debug"
	"github.com/vanderheijden86/canopy/pkg/model"
)

// Snapshot is one immutable version of the catalog tree plus the lookup
// indexes built for it. Mutations share unchanged subtrees with the snapshot
// they were derived from; only the path from the root to the edited node (and
// the edited subtree itself) is copied.
type Snapshot struct {
	roots      []*model.Node
	byID       map[string]*model.Node
	parentOf   map[string]string // child id -> parent id; roots have no entry
	generation uint64
}

// NewSnapshot builds the initial snapshot from a root-level sequence. The
// input forest is deep-copied so the store owns its tree outright. Subtrees
// whose root id collides with an already-indexed id are dropped (and logged)
// rather than corrupting the index.
func NewSnapshot(roots []*model.Node) *Snapshot {
	s := &Snapshot{
		byID:     make(map[string]*model.Node),
		parentOf: make(map[string]string),
	}
	for _, r := range roots {
		c := r.Clone()
		if s.indexSubtree(c, "") {
			s.roots = append(s.roots, c)
		}
	}
	return s
}

// indexSubtree adds n and its descendants to the indexes. It returns false
// (and removes nothing it already added is guaranteed by checking the whole
// subtree first) when any id in the subtree is already taken.
func (s *Snapshot) indexSubtree(n *model.Node, parentID string) bool {
	dup := ""
	n.Walk(func(m *model.Node) bool {
		if _, exists := s.byID[m.ID]; exists {
			dup = m.ID
			return false
		}
		return true
	})
	if dup != "" {
		debug.Log("tree: dropping subtree %q: duplicate id %q", n.ID, dup)
		return false
	}
	var add func(m *model.Node, parent string)
	add = func(m *model.Node, parent string) {
		s.byID[m.ID] = m
		if parent != "" {
			s.parentOf[m.ID] = parent
		}
		for _, child := range m.Children {
			add(child, m.ID)
		}
	}
	add(n, parentID)
	return true
}

// Roots returns the root-level sequence. The result is read-only: callers
// must not modify the returned nodes.
func (s *Snapshot) Roots() []*model.Node {
	return s.roots
}

// Generation returns a counter that increments on every mutation. Used by
// the lazy loader to tag in-flight fetches.
func (s *Snapshot) Generation() uint64 {
	return s.generation
}

// Len returns the total number of nodes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.byID)
}

// FindByID returns the node with the given id, or nil if absent. The result
// is read-only.
func (s *Snapshot) FindByID(id string) *model.Node {
	return s.byID[id]
}

// ParentID returns the id of the node's parent, or "" for roots and unknown
// ids.
func (s *Snapshot) ParentID(id string) string {
	return s.parentOf[id]
}

// pathTo returns the ids from a root down to (and including) id, using the
// parent index so the walk is O(depth) rather than a scan of the whole tree.
func (s *Snapshot) pathTo(id string) []string {
	var rev []string
	for cur := id; cur != ""; cur = s.parentOf[cur] {
		rev = append(rev, cur)
		if _, ok := s.parentOf[cur]; !ok {
			break
		}
	}
	path := make([]string, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// withNode returns a new snapshot in which the node with the given id has
// been passed through edit. The path from the root to the node is shallow-
// copied; everything off the path is shared with the receiver. The edit
// callback owns the copied node and may replace its Children wholesale, but
// must deep-copy any subtree it intends to mutate in place (the children
// still alias the previous snapshot).
//
// Unknown ids are a silent no-op returning the receiver unchanged, per the
// store's error model.
func (s *Snapshot) withNode(id string, edit func(*model.Node)) *Snapshot {
	if _, ok := s.byID[id]; !ok {
		return s
	}
	path := s.pathTo(id)

	next := &Snapshot{
		roots:      make([]*model.Node, len(s.roots)),
		generation: s.generation + 1,
	}
	copy(next.roots, s.roots)

	// Walk down the path, replacing each node with a shallow copy wired into
	// its (already copied) parent.
	var parent *model.Node
	var target *model.Node
	for _, pid := range path {
		orig := s.byID[pid]
		cp := orig.CloneShallow()
		if parent == nil {
			for i, r := range next.roots {
				if r.ID == pid {
					next.roots[i] = cp
					break
				}
			}
		} else {
			for i, child := range parent.Children {
				if child.ID == pid {
					parent.Children[i] = cp
					break
				}
			}
		}
		parent = cp
		target = cp
	}

	edit(target)

	// The edit may have replaced entire subtrees, so rebuild the indexes for
	// the new snapshot. Node memory off the edited path is still shared.
	next.reindex()

	// Recompute the cached "fully checked" flag on each ancestor of the
	// edited node, bottom-up. Ancestors on the path are private copies, so
	// setting the flag here cannot be observed through the old snapshot.
	for i := len(path) - 2; i >= 0; i-- {
		anc := next.byID[path[i]]
		if anc == nil || !anc.IsContainer() {
			continue
		}
		anc.Checked = allChildrenChecked(anc)
	}

	return next
}

// reindex rebuilds byID and parentOf from the current roots, dropping any
// subtree that would introduce a duplicate id (this can only happen when a
// fetch result smuggles in an id that already exists elsewhere).
func (s *Snapshot) reindex() {
	s.byID = make(map[string]*model.Node)
	s.parentOf = make(map[string]string)
	kept := s.roots[:0:0]
	for _, r := range s.roots {
		if s.indexSubtree(r, "") {
			kept = append(kept, r)
		}
	}
	s.roots = kept
}

// allChildrenChecked reports whether every immediate child of the container
// aggregates to fully checked. An ancestor with some-but-not-all checked
// descendants records false even though the aggregator reports indeterminate.
func allChildrenChecked(n *model.Node) bool {
	if len(n.Children) == 0 {
		return n.Checked
	}
	for _, child := range n.Children {
		if Aggregate(child) != StateChecked {
			return false
		}
	}
	return true
}

// SetLoading returns a snapshot with the node's loading flag set. Unknown
// ids return the receiver unchanged.
func (s *Snapshot) SetLoading(id string, loading bool) *Snapshot {
	return s.withNode(id, func(n *model.Node) {
		n.Loading = loading
	})
}

// ReplaceChildren returns a snapshot in which the node's children have been
// replaced by a deep copy of the given sequence (order preserved), with
// loaded set and loading cleared in the same update. This is the only way a
// container transitions to the loaded state.
//
// A new child subtree whose id collides with a node elsewhere in the tree
// (or with an earlier sibling in the same batch) is dropped and logged, so
// the id-uniqueness invariant holds on every published snapshot. Collisions
// with the node's previous subtree are fine since that subtree is being
// replaced.
func (s *Snapshot) ReplaceChildren(id string, children []*model.Node) *Snapshot {
	// Ids under the container's old children no longer count as taken.
	removed := make(map[string]bool)
	if old := s.byID[id]; old != nil {
		for _, c := range old.Children {
			c.Walk(func(m *model.Node) bool {
				removed[m.ID] = true
				return true
			})
		}
	}

	return s.withNode(id, func(n *model.Node) {
		seen := make(map[string]bool)
		kept := make([]*model.Node, 0, len(children))
		for _, child := range children {
			cp := child.Clone()
			dup := ""
			cp.Walk(func(m *model.Node) bool {
				if seen[m.ID] {
					dup = m.ID
					return false
				}
				if _, taken := s.byID[m.ID]; taken && !removed[m.ID] {
					dup = m.ID
					return false
				}
				return true
			})
			if dup != "" {
				debug.Log("tree: dropping fetched child %q under %q: duplicate id %q", cp.ID, id, dup)
				continue
			}
			cp.Walk(func(m *model.Node) bool {
				seen[m.ID] = true
				return true
			})
			kept = append(kept, cp)
		}
		n.Children = kept
		n.Loaded = true
		n.Loading = false
	})
}

// SetChecked returns a snapshot with the node's checked flag set. Checking a
// container forces the same value onto every descendant ("select all under
// this folder"); the cached flag on each ancestor is then recomputed by
// withNode. Unknown ids return the receiver unchanged.
func (s *Snapshot) SetChecked(id string, checked bool) *Snapshot {
	return s.withNode(id, func(n *model.Node) {
		n.Checked = checked
		if n.Children == nil {
			return
		}
		// Descendants still alias the previous snapshot; replace them with a
		// private copy before cascading.
		n.Children = model.CloneForest(n.Children)
		model.WalkForest(n.Children, func(m *model.Node) bool {
			m.Checked = checked
			return true
		})
	})
}
