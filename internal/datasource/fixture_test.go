package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleFixture = `[
  {
    "id": "1", "name": "warehouse", "kind": "database",
    "children": [
      {
        "id": "1.1", "name": "staging", "kind": "schema",
        "children": [
          {"id": "1.1.1", "name": "orders", "kind": "table", "children": null},
          {"id": "1.1.2", "name": "customers", "kind": "table", "children": null}
        ]
      },
      {"id": "1.2", "name": "empty", "kind": "folder", "children": []},
      {"id": "1.3", "name": "readme.md", "kind": "file", "children": null}
    ]
  }
]`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFixtureRootsAreUnloaded(t *testing.T) {
	src, err := OpenFixture(writeFixture(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	roots, err := src.Roots(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].ID != "1" {
		t.Fatalf("roots = %+v", roots)
	}
	if roots[0].Loaded || len(roots[0].Children) != 0 {
		t.Error("root container should come back unloaded")
	}
}

func TestFixtureFetchPreservesOrder(t *testing.T) {
	src, err := OpenFixture(writeFixture(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	kids, err := src.FetchChildren(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1.1", "1.2", "1.3"}
	if len(kids) != len(want) {
		t.Fatalf("got %d children, want %d", len(kids), len(want))
	}
	for i, id := range want {
		if kids[i].ID != id {
			t.Errorf("child %d = %s, want %s", i, kids[i].ID, id)
		}
	}
	// Container/leaf distinction survives the round trip.
	if !kids[0].IsContainer() {
		t.Error("1.1 should be a container")
	}
	if !kids[1].IsContainer() {
		t.Error("1.2 (empty container in file) should stay a container")
	}
	if !kids[2].IsLeaf() {
		t.Error("1.3 should be a leaf")
	}
	// Nested children are withheld until their own fetch.
	if len(kids[0].Children) != 0 {
		t.Error("nested children should be withheld from a one-level fetch")
	}
}

func TestFixtureUnknownParentIsEmpty(t *testing.T) {
	src, err := OpenFixture(writeFixture(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	kids, err := src.FetchChildren(context.Background(), "1.2")
	if err != nil {
		t.Fatal(err)
	}
	if len(kids) != 0 {
		t.Errorf("empty container should fetch no children, got %d", len(kids))
	}
}

func TestFixtureDelayHonorsContext(t *testing.T) {
	src, err := OpenFixture(writeFixture(t), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.FetchChildren(ctx, "1"); err == nil {
		t.Error("cancelled context should abort the delayed fetch")
	}
}

func TestFixtureFailOnce(t *testing.T) {
	src, err := OpenFixture(writeFixture(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	src.FailIDs["1"] = true

	if _, err := src.FetchChildren(context.Background(), "1"); err == nil {
		t.Fatal("expected injected failure")
	}
	// Second attempt succeeds: the failure is one-shot, matching the
	// engine's retryable semantics.
	kids, err := src.FetchChildren(context.Background(), "1")
	if err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if len(kids) != 3 {
		t.Errorf("retry returned %d children", len(kids))
	}
}

func TestOpenFixtureInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFixture(path, 0); err == nil {
		t.Error("expected parse error")
	}
}
