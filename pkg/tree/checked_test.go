package tree

import (
	"testing"

	"github.com/vanderheijden86/canopy/pkg/model"
)

func TestCheckedItemsDocumentOrder(t *testing.T) {
	s := NewSnapshot(sampleCatalog())
	s = s.SetChecked("1.1", true) // cascades to 1.1.1 and 1.1.2
	s = s.SetChecked("1.2", true)

	var ids []string
	for _, n := range s.CheckedItems(nil) {
		ids = append(ids, n.ID)
	}
	// Document order: "1" flips to checked because all of its children are.
	want := []string{"1", "1.1", "1.1.1", "1.1.2", "1.2"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}

func TestCheckedItemsSubtree(t *testing.T) {
	s := NewSnapshot(sampleCatalog())
	s = s.SetChecked("1.1.1", true)
	s = s.SetChecked("1.2", true)

	sub := s.FindByID("1.1")
	items := s.CheckedItems(sub)
	if len(items) != 1 || items[0].ID != "1.1.1" {
		t.Errorf("subtree flatten: got %+v", items)
	}
}

func TestCheckedLeafCount(t *testing.T) {
	s := NewSnapshot(sampleCatalog())
	if got := s.CheckedLeafCount(); got != 0 {
		t.Errorf("fresh tree: got %d", got)
	}
	s = s.SetChecked("1.1", true)
	if got := s.CheckedLeafCount(); got != 2 {
		t.Errorf("after cascade: got %d, want 2", got)
	}
}

func TestApplyPattern(t *testing.T) {
	s := NewSnapshot(sampleCatalog())
	s, matched, err := s.ApplyPattern("1", `^(orders|customers)$`, true)
	if err != nil {
		t.Fatalf("ApplyPattern: %v", err)
	}
	if matched != 2 {
		t.Errorf("expected 2 matches, got %d", matched)
	}
	if !s.FindByID("1.1.1").Checked || !s.FindByID("1.1.2").Checked {
		t.Error("matching leaves not checked")
	}
	if s.FindByID("1.2").Checked {
		t.Error("non-matching leaf checked")
	}
	// Both children of 1.1 are checked, so the cascade primitive flipped
	// the cached ancestor flag too.
	if !s.FindByID("1.1").Checked {
		t.Error("ancestor cache not recomputed through the primitive")
	}
}

func TestApplyPatternWholeTree(t *testing.T) {
	s := NewSnapshot(sampleCatalog())
	s, matched, err := s.ApplyPattern("", `read`, true)
	if err != nil {
		t.Fatal(err)
	}
	if matched != 1 || !s.FindByID("1.2").Checked {
		t.Errorf("expected readme.md checked, matched=%d", matched)
	}
}

func TestApplyPatternInvalidRegex(t *testing.T) {
	s := NewSnapshot(sampleCatalog())
	s2, matched, err := s.ApplyPattern("1", `[unclosed`, true)
	if err == nil {
		t.Fatal("expected compile error")
	}
	if matched != 0 {
		t.Errorf("bad pattern must match nothing, got %d", matched)
	}
	if s2 != s {
		t.Error("bad pattern must leave the tree untouched")
	}
	model.WalkForest(s2.Roots(), func(n *model.Node) bool {
		if n.Checked {
			t.Errorf("node %s checked by a bad pattern", n.ID)
		}
		return true
	})
}

func TestApplyPatternUnknownRoot(t *testing.T) {
	s := NewSnapshot(sampleCatalog())
	s2, matched, err := s.ApplyPattern("ghost", `.*`, true)
	if err != nil || matched != 0 || s2 != s {
		t.Errorf("unknown root should be a silent no-op: %v %d", err, matched)
	}
}
