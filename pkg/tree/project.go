package tree

import "github.com/vanderheijden86/canopy/pkg/model"

// Projection is a derived, read-only tree plus the container ids that must
// be shown expanded so the full selected path is visible without manual
// clicks.
type Projection struct {
	Roots     []*model.Node
	ExpandIDs map[string]bool
}

// ProjectSelection derives the "selected objects" mirror tree from the
// canonical snapshot. The result references copies only: mutating it never
// corrupts the canonical tree. It must be recomputed whenever the canonical
// tree changes.
//
// Inclusion rules, recursive over the canonical children in order:
//   - a leaf is included iff it is checked (the copy is pinned to
//     checked/loaded so the mirror renders it as a settled selection);
//   - a container is included iff it is itself checked or its projection
//     produced at least one child; the copy keeps the container's original
//     checked flag for display and carries only the projected children.
//
// A container with no checked descendants and not itself checked is omitted
// entirely, even when it has unchecked descendants.
func ProjectSelection(s *Snapshot) Projection {
	p := Projection{ExpandIDs: make(map[string]bool)}
	for _, root := range s.Roots() {
		if copied := p.project(root); copied != nil {
			p.Roots = append(p.Roots, copied)
		}
	}
	return p
}

func (p *Projection) project(n *model.Node) *model.Node {
	if n.IsLeaf() {
		if !n.Checked {
			return nil
		}
		c := *n
		c.Checked = true
		c.Loaded = true
		c.Loading = false
		return &c
	}

	var kept []*model.Node
	for _, child := range n.Children {
		if copied := p.project(child); copied != nil {
			kept = append(kept, copied)
		}
	}
	if len(kept) == 0 && !n.Checked {
		return nil
	}

	c := *n
	c.Children = kept
	if c.Children == nil {
		c.Children = []*model.Node{}
	}
	c.Loaded = true
	c.Loading = false
	p.ExpandIDs[c.ID] = true
	return &c
}
