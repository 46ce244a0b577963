package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectType(t *testing.T) {
	base := t.TempDir()
	mk := func(name string) string {
		path := filepath.Join(base, name)
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if typ, err := DetectType(base); err != nil || typ != SourceTypeDir {
		t.Errorf("dir: got %s, %v", typ, err)
	}
	if typ, err := DetectType(mk("cat.json")); err != nil || typ != SourceTypeFixture {
		t.Errorf("json: got %s, %v", typ, err)
	}
	if typ, err := DetectType(mk("cat.sqlite3")); err != nil || typ != SourceTypeSQLite {
		t.Errorf("sqlite3: got %s, %v", typ, err)
	}
	if _, err := DetectType(mk("cat.csv")); err == nil {
		t.Error("csv should not be detectable")
	}
	if _, err := DetectType(filepath.Join(base, "missing.json")); err == nil {
		t.Error("missing path should error")
	}
}

func TestOpenDetectsWhenTypeEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.json")
	if err := os.WriteFile(path, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Open("", path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if src.Type() != SourceTypeFixture {
		t.Errorf("Type() = %s", src.Type())
	}
}

func TestDiscoverValidatesAndSorts(t *testing.T) {
	base := t.TempDir()
	good := filepath.Join(base, "good.json")
	if err := os.WriteFile(good, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(base, "bad.json")
	if err := os.WriteFile(bad, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Not a catalog extension, should be skipped entirely.
	if err := os.WriteFile(filepath.Join(base, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cands, err := Discover(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	byPath := make(map[string]Candidate, len(cands))
	for _, c := range cands {
		byPath[filepath.Base(c.Path)] = c
	}
	if c := byPath["good.json"]; !c.Valid {
		t.Errorf("good.json should validate: %s", c.ValidationError)
	}
	if c := byPath["bad.json"]; c.Valid || c.ValidationError == "" {
		t.Error("bad.json should carry its validation error")
	}
}
