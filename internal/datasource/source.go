// Package datasource provides the catalog backends canopy can browse: JSON
// fixtures with a simulated fetch delay, SQLite databases introspected
// lazily, and filesystem directories. It also detects which backend a given
// path wants.
package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/canopy/pkg/model"
	"github.com/vanderheijden86/canopy/pkg/tree"
)

// SourceType identifies the type of catalog backend.
type SourceType string

const (
	// SourceTypeFixture is a JSON catalog file served through the timed
	// resolver.
	SourceTypeFixture SourceType = "fixture"
	// SourceTypeSQLite is a SQLite database introspected lazily.
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeDir is a filesystem directory.
	SourceTypeDir SourceType = "dir"
)

// Source is a catalog backend: it supplies the initial root-level sequence
// and acts as the child-fetch collaborator for lazy expansion.
type Source interface {
	tree.Fetcher

	// Roots returns the initial root-level sequence. Containers whose
	// children are expensive may come back unloaded (empty children,
	// loaded=false) and be filled in on first expansion.
	Roots(ctx context.Context) ([]*model.Node, error)

	// Type identifies the backend.
	Type() SourceType

	// Close releases backend resources.
	Close() error
}

// Candidate is a potential catalog source found during discovery.
type Candidate struct {
	Type            SourceType `json:"type"`
	Path            string     `json:"path"`
	ModTime         time.Time  `json:"mod_time"`
	Valid           bool       `json:"valid"`
	ValidationError string     `json:"validation_error,omitempty"`
}

// String returns a human-readable description of the candidate.
func (c Candidate) String() string {
	status := "valid"
	if !c.Valid {
		status = fmt.Sprintf("invalid: %s", c.ValidationError)
	}
	return fmt.Sprintf("%s (%s, mod=%s, %s)", c.Path, c.Type, c.ModTime.Format(time.RFC3339), status)
}

// DetectType infers the backend type for a path: directories browse as-is,
// .json files are fixtures, anything else is tried as SQLite.
func DetectType(path string) (SourceType, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("source %s: %w", path, err)
	}
	if info.IsDir() {
		return SourceTypeDir, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceTypeFixture, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	}
	return "", fmt.Errorf("source %s: cannot infer type from extension (want .json, .db, .sqlite, or a directory)", path)
}

// Open creates the Source for the given type and path. An empty typ runs
// detection first.
func Open(typ SourceType, path string, fixtureDelay time.Duration) (Source, error) {
	if typ == "" {
		detected, err := DetectType(path)
		if err != nil {
			return nil, err
		}
		typ = detected
	}
	switch typ {
	case SourceTypeFixture:
		return OpenFixture(path, fixtureDelay)
	case SourceTypeSQLite:
		return OpenSQLite(path)
	case SourceTypeDir:
		return OpenDir(path)
	default:
		return nil, fmt.Errorf("unknown source type %q", typ)
	}
}

// Discover scans a directory for candidate catalog sources and validates
// them concurrently. Candidates are returned newest first; invalid ones are
// kept (with their validation error) so callers can explain why a file was
// skipped.
func Discover(ctx context.Context, dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		typ, err := DetectType(path)
		if err != nil {
			continue // not a catalog file
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, Candidate{Type: typ, Path: path, ModTime: info.ModTime()})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range candidates {
		g.Go(func() error {
			c := &candidates[i]
			if err := validate(ctx, *c); err != nil {
				c.Valid = false
				c.ValidationError = err.Error()
			} else {
				c.Valid = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ModTime.After(candidates[j].ModTime)
	})
	return candidates, nil
}

// validate opens the candidate and asks for its roots, proving the file is
// usable before it is offered to the user.
func validate(ctx context.Context, c Candidate) error {
	src, err := Open(c.Type, c.Path, 0)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = src.Roots(ctx)
	return err
}
