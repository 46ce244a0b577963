package tree

import (
	"context"
	"time"

	"github.com/vanderheijden86/canopy/pkg/debug"
	"github.com/vanderheijden86/canopy/pkg/model"
)

// Fetcher is the external child-fetch collaborator. It may take arbitrarily
// long; the loader places no timeout on it. Returned children must be in
// display order, with an empty (non-nil) Children slice marking an unloaded
// container and a nil one marking an intrinsic leaf.
type Fetcher interface {
	FetchChildren(ctx context.Context, parentID string) ([]*model.Node, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, parentID string) ([]*model.Node, error)

// FetchChildren implements Fetcher.
func (f FetcherFunc) FetchChildren(ctx context.Context, parentID string) ([]*model.Node, error) {
	return f(ctx, parentID)
}

// FetchResult is the settled outcome of one child fetch, delivered back to
// whoever drives the loader (in the TUI, as a bubbletea message).
type FetchResult struct {
	ParentID   string
	Children   []*model.Node
	Err        error
	Generation uint64 // store generation at dispatch time
	Elapsed    time.Duration
}

// Loader drives the per-container load state machine:
//
//	unloaded -> loading -> loaded
//	              └─(failure)─> unloaded (retryable)
//
// At most one fetch is in flight per node. That is guaranteed by Begin
// performing the loading check and the loading=true transition as a single
// snapshot mutation, not by any locking around the fetcher.
type Loader struct {
	fetcher Fetcher

	// OnError receives fetch failures for observability. Defaults to the
	// debug log. The failure never propagates to the expand caller.
	OnError func(parentID string, err error)
}

// NewLoader creates a loader around the given fetch collaborator.
func NewLoader(f Fetcher) *Loader {
	return &Loader{
		fetcher: f,
		OnError: func(parentID string, err error) {
			debug.Log("tree: fetch %q failed: %v", parentID, err)
		},
	}
}

// Begin inspects the node and, when it is an unloaded idle container,
// returns a snapshot with its loading flag set plus a fetch thunk to run
// asynchronously. The loading transition is applied (and observable in the
// returned snapshot) before the thunk ever runs.
//
// Begin declines (start == false, thunk nil, snapshot unchanged) when the
// id is unknown, the node is a leaf, a fetch is already in flight, or the
// container is already loaded — a genuinely empty folder never re-fetches.
func (l *Loader) Begin(s *Snapshot, id string) (next *Snapshot, fetch func(context.Context) FetchResult, start bool) {
	n := s.FindByID(id)
	if n == nil || !n.IsContainer() || n.Loading || n.Loaded || len(n.Children) > 0 {
		return s, nil, false
	}

	next = s.SetLoading(id, true)
	gen := next.Generation()
	fetch = func(ctx context.Context) FetchResult {
		started := time.Now()
		children, err := l.fetcher.FetchChildren(ctx, id)
		return FetchResult{
			ParentID:   id,
			Children:   children,
			Err:        err,
			Generation: gen,
			Elapsed:    time.Since(started),
		}
	}
	return next, fetch, true
}

// Apply folds a settled fetch back into the current snapshot. On success the
// children, loaded and loading fields are replaced in a single snapshot swap;
// on failure only loading is reset so a later expansion can retry.
//
// A result whose target id no longer exists (the subtree was replaced while
// the fetch was in flight) is discarded: applying it by id-search alone
// could resurrect a node under a structurally different tree if ids are
// reused, so presence in the current snapshot is the guard. Collapsing the
// node does not discard anything; the result lands regardless of expansion
// state.
func (l *Loader) Apply(s *Snapshot, res FetchResult) *Snapshot {
	if s.FindByID(res.ParentID) == nil {
		debug.Log("tree: discarding stale fetch for %q (gen %d, now %d)",
			res.ParentID, res.Generation, s.Generation())
		return s
	}
	if res.Err != nil {
		if l.OnError != nil {
			l.OnError(res.ParentID, res.Err)
		}
		return s.SetLoading(res.ParentID, false)
	}
	return s.ReplaceChildren(res.ParentID, res.Children)
}
