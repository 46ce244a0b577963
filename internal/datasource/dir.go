package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// DirSource browses a filesystem directory as a catalog: directories are
// containers, regular files are leaves. Each level is listed on first
// expansion, never recursively, so a deep tree costs only what the user
// opens.
//
// Node ids are slash-separated paths relative to the base directory.
type DirSource struct {
	base string
}

// OpenDir creates a directory source rooted at base.
func OpenDir(base string) (*DirSource, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("directory %s: %w", base, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", base)
	}
	return &DirSource{base: abs}, nil
}

// Roots lists the first level of the base directory.
func (d *DirSource) Roots(ctx context.Context) ([]*model.Node, error) {
	return d.list("")
}

// FetchChildren lists one directory level addressed by its relative path.
func (d *DirSource) FetchChildren(ctx context.Context, parentID string) ([]*model.Node, error) {
	return d.list(parentID)
}

func (d *DirSource) list(rel string) ([]*model.Node, error) {
	dir := filepath.Join(d.base, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	// Directories first, each group alphabetical, matching how catalog
	// browsers conventionally order mixed listings.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	out := make([]*model.Node, 0, len(entries))
	for _, entry := range entries {
		id := entry.Name()
		if rel != "" {
			id = rel + "/" + entry.Name()
		}
		if entry.IsDir() {
			out = append(out, model.NewContainer(id, entry.Name(), model.KindFolder))
		} else {
			out = append(out, model.NewLeaf(id, entry.Name(), model.KindFile))
		}
	}
	return out, nil
}

// Type identifies the backend.
func (d *DirSource) Type() SourceType { return SourceTypeDir }

// Close releases nothing.
func (d *DirSource) Close() error { return nil }
