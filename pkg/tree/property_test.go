package tree

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// genCatalog draws a random catalog forest with unique ids.
func genCatalog(t *rapid.T) []*model.Node {
	seq := 0
	nextID := func() string {
		seq++
		return fmt.Sprintf("n%03d", seq)
	}

	var gen func(depth int) *model.Node
	gen = func(depth int) *model.Node {
		id := nextID()
		if depth >= 3 || rapid.Float64Range(0, 1).Draw(t, "leaf") < 0.5 {
			n := model.NewLeaf(id, "leaf "+id, model.KindTable)
			n.Checked = rapid.Bool().Draw(t, "checked")
			return n
		}
		n := model.NewContainer(id, "dir "+id, model.KindFolder)
		count := rapid.IntRange(0, 4).Draw(t, "children")
		if count > 0 {
			n.Loaded = true
		}
		for i := 0; i < count; i++ {
			n.Children = append(n.Children, gen(depth+1))
		}
		return n
	}

	count := rapid.IntRange(1, 4).Draw(t, "roots")
	roots := make([]*model.Node, 0, count)
	for i := 0; i < count; i++ {
		roots = append(roots, gen(0))
	}
	return roots
}

// allIDs returns every id in the snapshot in document order.
func allIDs(s *Snapshot) []string {
	var ids []string
	model.WalkForest(s.Roots(), func(n *model.Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

func TestPropUniqueIDsUnderMutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSnapshot(genCatalog(t))
		ids := allIDs(s)

		ops := rapid.IntRange(1, 10).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "target")
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				s = s.SetChecked(id, rapid.Bool().Draw(t, "value"))
			case 1:
				s = s.SetLoading(id, rapid.Bool().Draw(t, "value"))
			case 2:
				s = s.Toggle(id)
			case 3:
				if s.FindByID(id).IsContainer() {
					s = s.ReplaceChildren(id, []*model.Node{
						model.NewLeaf(id+".x", "x", model.KindTable),
					})
				}
			}
		}

		seen := make(map[string]bool)
		model.WalkForest(s.Roots(), func(n *model.Node) bool {
			if seen[n.ID] {
				t.Fatalf("duplicate id %q after mutations", n.ID)
			}
			seen[n.ID] = true
			return true
		})
	})
}

func TestPropSnapshotsAreImmutable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s1 := NewSnapshot(genCatalog(t))
		before := fingerprint(s1)

		ids := allIDs(s1)
		id := rapid.SampledFrom(ids).Draw(t, "target")
		_ = s1.SetChecked(id, true).Toggle(id).SetLoading(id, true)

		if got := fingerprint(s1); got != before {
			t.Fatalf("snapshot changed under later mutations:\nbefore %s\nafter  %s", before, got)
		}
	})
}

func TestPropAggregateLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSnapshot(genCatalog(t))
		model.WalkForest(s.Roots(), func(n *model.Node) bool {
			agg := Aggregate(n)
			if len(n.Children) == 0 {
				want := StateUnchecked
				if n.Checked {
					want = StateChecked
				}
				if agg != want {
					t.Fatalf("leaf-like %s: aggregate %v, own flag %v", n.ID, agg, n.Checked)
				}
				return true
			}
			checkedKids, selectedKids := 0, 0
			for _, c := range n.Children {
				switch Aggregate(c) {
				case StateChecked:
					checkedKids++
					selectedKids++
				case StateIndeterminate:
					selectedKids++
				}
			}
			switch agg {
			case StateChecked:
				if checkedKids != len(n.Children) {
					t.Fatalf("%s checked with %d/%d checked children", n.ID, checkedKids, len(n.Children))
				}
			case StateUnchecked:
				if selectedKids != 0 {
					t.Fatalf("%s unchecked with selected descendants", n.ID)
				}
			case StateIndeterminate:
				if selectedKids == 0 || checkedKids == len(n.Children) {
					t.Fatalf("%s indeterminate with %d selected, %d/%d checked",
						n.ID, selectedKids, checkedKids, len(n.Children))
				}
			}
			return true
		})
	})
}

func TestPropToggleAlwaysResolves(t *testing.T) {
	// After toggling any node, its aggregate is fully checked or fully
	// unchecked; a toggle never leaves the target indeterminate.
	rapid.Check(t, func(t *rapid.T) {
		s := NewSnapshot(genCatalog(t))
		id := rapid.SampledFrom(allIDs(s)).Draw(t, "target")

		s = s.Toggle(id)
		if got := Aggregate(s.FindByID(id)); got == StateIndeterminate {
			t.Fatalf("toggle left %s indeterminate", id)
		}
	})
}

func TestPropProjectionCompleteness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSnapshot(genCatalog(t))
		p := ProjectSelection(s)

		projected := make(map[string]bool)
		model.WalkForest(p.Roots, func(n *model.Node) bool {
			if n.IsLeaf() {
				projected[n.ID] = true
				canonical := s.FindByID(n.ID)
				if canonical == nil || !canonical.Checked {
					t.Fatalf("projected leaf %s not checked canonically", n.ID)
				}
			}
			return true
		})
		model.WalkForest(s.Roots(), func(n *model.Node) bool {
			if n.IsLeaf() && n.Checked && !projected[n.ID] {
				t.Fatalf("checked leaf %s dropped from projection", n.ID)
			}
			return true
		})
	})
}

func TestPropFilterAncestorPreservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSnapshot(genCatalog(t))

		// Pick a leaf and search for its exact name.
		var leaves []*model.Node
		model.WalkForest(s.Roots(), func(n *model.Node) bool {
			if n.IsLeaf() {
				leaves = append(leaves, n)
			}
			return true
		})
		if len(leaves) == 0 {
			t.Skip("no leaves drawn")
		}
		target := rapid.SampledFrom(leaves).Draw(t, "target")

		res := Filter(s, target.Name)
		if findIn(res.Roots, target.ID) == nil {
			t.Fatalf("exact-name search lost leaf %s", target.ID)
		}
		for anc := s.ParentID(target.ID); anc != ""; anc = s.ParentID(anc) {
			if findIn(res.Roots, anc) == nil {
				t.Fatalf("ancestor %s of match pruned away", anc)
			}
			if !res.ExpandIDs[anc] {
				t.Fatalf("ancestor %s not marked for force-expand", anc)
			}
		}
	})
}

// fingerprint serializes the visible state of a snapshot for comparison.
func fingerprint(s *Snapshot) string {
	var sb strings.Builder
	model.WalkForest(s.Roots(), func(n *model.Node) bool {
		fmt.Fprintf(&sb, "%s|%v|%v|%v|%d;", n.ID, n.Checked, n.Loaded, n.Loading, len(n.Children))
		return true
	})
	return sb.String()
}
