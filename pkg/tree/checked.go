package tree

import (
	"fmt"
	"regexp"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// CheckedItems flattens the canonical tree (or, when sub is non-nil, just
// that subtree) into the nodes whose own checked flag is set, in document
// order. The returned nodes are read-only references into the snapshot.
func (s *Snapshot) CheckedItems(sub *model.Node) []*model.Node {
	var out []*model.Node
	collect := func(n *model.Node) bool {
		if n.Checked {
			out = append(out, n)
		}
		return true
	}
	if sub != nil {
		sub.Walk(collect)
	} else {
		model.WalkForest(s.roots, collect)
	}
	return out
}

// CheckedLeafCount returns the number of checked leaves in the snapshot,
// the figure shown in the status bar.
func (s *Snapshot) CheckedLeafCount() int {
	count := 0
	model.WalkForest(s.roots, func(n *model.Node) bool {
		if n.IsLeaf() && n.Checked {
			count++
		}
		return true
	})
	return count
}

// ApplyPattern compiles a user-entered regular expression and applies the
// checked value to every node under rootID (the subtree root excluded)
// whose name matches, through the cascading SetChecked primitive. An empty
// rootID applies across the whole tree.
//
// It returns the new snapshot and the number of nodes that matched. A
// malformed pattern returns the snapshot unchanged with the compile error;
// the tree is never left half-applied on a bad pattern because compilation
// happens before any mutation.
func (s *Snapshot) ApplyPattern(rootID, pattern string, checked bool) (*Snapshot, int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return s, 0, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var scope []*model.Node
	if rootID == "" {
		scope = s.roots
	} else {
		root := s.FindByID(rootID)
		if root == nil {
			return s, 0, nil
		}
		scope = root.Children
	}

	// Collect ids first: SetChecked swaps snapshots, and node pointers from
	// this snapshot must not be chased across the swap.
	var ids []string
	model.WalkForest(scope, func(n *model.Node) bool {
		if re.MatchString(n.Name) {
			ids = append(ids, n.ID)
		}
		return true
	})

	next := s
	for _, id := range ids {
		next = next.SetChecked(id, checked)
	}
	return next, len(ids), nil
}
