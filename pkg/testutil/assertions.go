package testutil

import (
	"testing"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// AssertUniqueIDs verifies no two nodes anywhere in the forest share an id.
func AssertUniqueIDs(t *testing.T, roots []*model.Node) {
	t.Helper()
	seen := make(map[string]bool)
	model.WalkForest(roots, func(n *model.Node) bool {
		if seen[n.ID] {
			t.Errorf("duplicate node id: %s", n.ID)
		}
		seen[n.ID] = true
		return true
	})
}

// AssertNoAliasing verifies the two forests share no node pointers, i.e. one
// is a genuine copy of (parts of) the other.
func AssertNoAliasing(t *testing.T, a, b []*model.Node) {
	t.Helper()
	ptrs := make(map[*model.Node]bool)
	model.WalkForest(a, func(n *model.Node) bool {
		ptrs[n] = true
		return true
	})
	model.WalkForest(b, func(n *model.Node) bool {
		if ptrs[n] {
			t.Errorf("node %s is aliased between the two trees", n.ID)
			return false
		}
		return true
	})
}

// AssertContains verifies a node with the id exists somewhere in the forest.
func AssertContains(t *testing.T, roots []*model.Node, id string) {
	t.Helper()
	found := false
	model.WalkForest(roots, func(n *model.Node) bool {
		if n.ID == id {
			found = true
			return false
		}
		return true
	})
	if !found {
		t.Errorf("expected node %s in tree, not found", id)
	}
}
