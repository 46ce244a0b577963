// Package export writes the current selection out of the browser: a JSON
// manifest for tooling, and static SVG/PNG snapshots of the selection tree
// for humans.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/canopy/pkg/model"
	"github.com/vanderheijden86/canopy/pkg/tree"
)

// Manifest is the JSON selection export: the selected-only mirror of the
// catalog plus enough provenance to reproduce it.
type Manifest struct {
	GeneratedAt   time.Time     `json:"generated_at"`
	Source        string        `json:"source,omitempty"`
	SourceType    string        `json:"source_type,omitempty"`
	Generation    uint64        `json:"generation"`
	CheckedLeaves int           `json:"checked_leaves"`
	Selection     []*model.Node `json:"selection"`
}

// BuildManifest projects the snapshot's selection into a manifest.
func BuildManifest(s *tree.Snapshot, source, sourceType string) Manifest {
	proj := tree.ProjectSelection(s)
	return Manifest{
		GeneratedAt:   time.Now().UTC(),
		Source:        source,
		SourceType:    sourceType,
		Generation:    s.Generation(),
		CheckedLeaves: s.CheckedLeafCount(),
		Selection:     proj.Roots,
	}
}

// WriteManifest encodes the manifest as indented JSON.
func WriteManifest(w io.Writer, m Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// SaveManifest writes the manifest to a file, creating parent directories
// as needed.
func SaveManifest(path string, m Manifest) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteManifest(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
