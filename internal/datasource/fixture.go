package datasource

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// FixtureSource serves a JSON catalog file through a timed resolver. The
// whole tree is known to the fixture up front, but children are handed out
// one level at a time after a configurable delay, simulating a slow backend
// so the loading states are exercised end to end.
//
// File format: a JSON array of nodes in the model.Node shape. Children given
// in the file below the first level are withheld from Roots and produced by
// FetchChildren on demand; a node listed with "children": [] and no entries
// is a genuinely empty container.
type FixtureSource struct {
	path  string
	delay time.Duration

	mu       sync.RWMutex
	children map[string][]*model.Node // parent id -> full child nodes
	roots    []*model.Node

	// FailIDs lists parent ids whose fetch should fail once, then succeed.
	// Used by tests and demos to exercise the retry path.
	FailIDs map[string]bool
}

// OpenFixture loads and indexes a JSON catalog fixture.
func OpenFixture(path string, delay time.Duration) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	var full []*model.Node
	if err := json.Unmarshal(data, &full); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}

	f := &FixtureSource{
		path:     path,
		delay:    delay,
		children: make(map[string][]*model.Node),
		FailIDs:  make(map[string]bool),
	}
	f.roots = f.index(full)
	return f, nil
}

// index strips each container down to an unloaded shell, remembering the
// withheld children for later fetches. Leaves pass through unchanged.
func (f *FixtureSource) index(nodes []*model.Node) []*model.Node {
	out := make([]*model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsLeaf() {
			out = append(out, n)
			continue
		}
		shell := *n
		shell.Children = []*model.Node{}
		shell.Loaded = false
		if len(n.Children) > 0 {
			f.children[n.ID] = f.index(n.Children)
		}
		out = append(out, &shell)
	}
	return out
}

// Roots returns the first level of the catalog with all containers
// unloaded.
func (f *FixtureSource) Roots(ctx context.Context) ([]*model.Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return model.CloneForest(f.roots), nil
}

// FetchChildren waits out the configured delay, then returns the withheld
// children for the parent. Unknown parents resolve to no children, which
// the store records as a genuinely empty container.
func (f *FixtureSource) FetchChildren(ctx context.Context, parentID string) ([]*model.Node, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	if f.FailIDs[parentID] {
		delete(f.FailIDs, parentID)
		f.mu.Unlock()
		return nil, fmt.Errorf("simulated fetch failure for %q", parentID)
	}
	kids := f.children[parentID]
	f.mu.Unlock()

	return model.CloneForest(kids), nil
}

// Type identifies the backend.
func (f *FixtureSource) Type() SourceType { return SourceTypeFixture }

// Close releases nothing; fixtures are fully in memory.
func (f *FixtureSource) Close() error { return nil }
