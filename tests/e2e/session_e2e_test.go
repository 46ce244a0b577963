// Package e2e drives full sessions through the real packages: a fixture on
// disk, the datasource layer, the tree engine and the exporters, with no
// terminal attached.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/canopy/internal/datasource"
	"github.com/vanderheijden86/canopy/pkg/export"
	"github.com/vanderheijden86/canopy/pkg/model"
	"github.com/vanderheijden86/canopy/pkg/testutil"
	"github.com/vanderheijden86/canopy/pkg/tree"
)

func writeCatalog(t *testing.T, roots []*model.Node) string {
	t.Helper()
	data, err := json.Marshal(roots)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestBrowseSelectExportSession walks the primary user journey: open a
// fixture, lazily expand into it, select a few objects, and export both
// manifest and snapshot.
func TestBrowseSelectExportSession(t *testing.T) {
	gen := testutil.NewGenerator(testutil.GeneratorConfig{
		Seed: 7, Roots: 2, MaxDepth: 3, MaxChildren: 4, LeafRatio: 0.6,
	})
	path := writeCatalog(t, gen.Catalog())

	src, err := datasource.Open("", path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	ctx := context.Background()

	roots, err := src.Roots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	snap := tree.NewSnapshot(roots)
	loader := tree.NewLoader(src)

	// Expand breadth-first until the whole catalog is loaded.
	for {
		var pending []string
		for _, n := range snap.Roots() {
			n.Walk(func(c *model.Node) bool {
				if c.IsContainer() && !c.Loaded && !c.Loading {
					pending = append(pending, c.ID)
				}
				return true
			})
		}
		if len(pending) == 0 {
			break
		}
		for _, id := range pending {
			next, fetch, ok := loader.Begin(snap, id)
			if !ok {
				continue
			}
			snap = next
			snap = loader.Apply(snap, fetch(ctx))
		}
	}
	testutil.AssertUniqueIDs(t, snap.Roots())

	// Select every table object via pattern, then spot-toggle one off.
	snap, count, err := snap.ApplyPattern("", "^object obj-", true)
	if err != nil {
		t.Fatal(err)
	}
	if count == 0 {
		t.Fatal("pattern should have matched generated objects")
	}
	items := snap.CheckedItems(nil)
	var firstLeaf string
	for _, n := range items {
		if n.IsLeaf() {
			firstLeaf = n.ID
			break
		}
	}
	if firstLeaf == "" {
		t.Fatal("no checked leaves after pattern apply")
	}
	snap = snap.Toggle(firstLeaf)
	if snap.FindByID(firstLeaf).Checked {
		t.Fatal("toggle should have unchecked the leaf")
	}

	// Export both artifacts and verify they reflect the selection.
	outDir := t.TempDir()
	manifestPath := filepath.Join(outDir, "selection.json")
	manifest := export.BuildManifest(snap, path, string(src.Type()))
	if err := export.SaveManifest(manifestPath, manifest); err != nil {
		t.Fatal(err)
	}
	var back export.Manifest
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.CheckedLeaves != snap.CheckedLeafCount() {
		t.Errorf("manifest leaves = %d, snapshot = %d", back.CheckedLeaves, snap.CheckedLeafCount())
	}
	found := false
	model.WalkForest(back.Selection, func(n *model.Node) bool {
		if n.ID == firstLeaf {
			found = true
			return false
		}
		return true
	})
	if found {
		t.Error("unchecked leaf leaked into the manifest selection")
	}

	svgPath := filepath.Join(outDir, "selection.svg")
	if err := export.SaveSnapshot(snap, export.SnapshotOptions{Path: svgPath, Source: path}); err != nil {
		t.Fatal(err)
	}
	svg, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("snapshot export is not SVG")
	}
}

// TestMatryoshkaFetchConsistency reloads a level while a stale fetch for a
// replaced subtree is outstanding and verifies the engine discards it.
func TestMatryoshkaFetchConsistency(t *testing.T) {
	roots := []*model.Node{model.NewContainer("top", "top", model.KindFolder)}
	first := []*model.Node{model.NewContainer("top/a", "a", model.KindFolder)}
	second := []*model.Node{model.NewContainer("top/b", "b", model.KindFolder)}

	serve := map[string][]*model.Node{"top": first, "top/a": {model.NewLeaf("top/a/x", "x", model.KindFile)}}
	fetcher := tree.FetcherFunc(func(ctx context.Context, id string) ([]*model.Node, error) {
		return model.CloneForest(serve[id]), nil
	})

	snap := tree.NewSnapshot(roots)
	loader := tree.NewLoader(fetcher)
	ctx := context.Background()

	next, fetch, ok := loader.Begin(snap, "top")
	if !ok {
		t.Fatal("top should fetch")
	}
	snap = loader.Apply(next, fetch(ctx))

	// Start the fetch for top/a but do not apply it yet.
	next, staleFetch, ok := loader.Begin(snap, "top/a")
	if !ok {
		t.Fatal("top/a should fetch")
	}
	snap = next
	staleRes := staleFetch(ctx)

	// The top level is replaced before the stale result lands.
	snap = snap.ReplaceChildren("top", second)
	if snap.FindByID("top/a") != nil {
		t.Fatal("top/a should be gone after replacement")
	}

	after := loader.Apply(snap, staleRes)
	if after != snap {
		t.Error("stale result for a vanished id should be a no-op")
	}
	if after.FindByID("top/a/x") != nil {
		t.Error("stale children must not resurrect")
	}
}
