package tree

import (
	"strings"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// FilterResult is the pruned search view of the tree plus the container ids
// that must be force-expanded so every match is reachable. Identity reports
// that the query was empty and Roots aliases the canonical tree (read-only,
// like every snapshot view).
type FilterResult struct {
	Roots     []*model.Node
	ExpandIDs map[string]bool
	Identity  bool
}

// Filter prunes the tree to the nodes matching the query, preserving the
// ancestor chain of every match. Matching is a case-insensitive substring
// test against the node name; a container also matches when any descendant
// does.
//
// A leaf survives iff it matches. A container survives iff its own name
// matches or at least one child survives; a container kept with surviving
// children joins the force-expand set. Kept containers carry only the
// surviving children, in original order, and are copies — the canonical
// tree is never touched.
//
// An empty or whitespace-only query is the identity transform. Callers merge
// ExpandIDs into their expansion set (union, never replacement) so manual
// collapses are only overridden where a match path requires it.
func Filter(s *Snapshot, query string) FilterResult {
	res := FilterResult{ExpandIDs: make(map[string]bool)}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		res.Roots = s.Roots()
		res.Identity = true
		return res
	}
	for _, root := range s.Roots() {
		if kept := res.prune(root, q); kept != nil {
			res.Roots = append(res.Roots, kept)
		}
	}
	return res
}

func (res *FilterResult) prune(n *model.Node, q string) *model.Node {
	nameMatch := strings.Contains(strings.ToLower(n.Name), q)

	if n.IsLeaf() {
		if !nameMatch {
			return nil
		}
		c := *n
		return &c
	}

	var kept []*model.Node
	for _, child := range n.Children {
		if copied := res.prune(child, q); copied != nil {
			kept = append(kept, copied)
		}
	}
	if len(kept) == 0 && !nameMatch {
		return nil
	}

	c := *n
	c.Children = kept
	if c.Children == nil {
		c.Children = []*model.Node{}
	}
	if len(kept) > 0 {
		res.ExpandIDs[c.ID] = true
	}
	return &c
}
