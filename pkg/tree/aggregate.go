package tree

import "github.com/vanderheijden86/canopy/pkg/model"

// State is the tri-state selection of a node as shown on its checkbox.
type State int

const (
	StateUnchecked State = iota
	StateChecked
	StateIndeterminate
)

// String returns a human-readable label for the state.
func (s State) String() string {
	switch s {
	case StateChecked:
		return "checked"
	case StateIndeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Aggregate computes the node's tri-state from its own flag and its
// descendants. It is a pure function over the node it is given: no
// memoization, safe to call repeatedly against the latest snapshot, and it
// always reflects that snapshot exactly — it drives both checkbox rendering
// and toggle semantics.
//
// A leaf (and an empty, fully known container, which has no descendants to
// disagree with) aggregates over its own flag. A populated container is
// checked when every child is checked, unchecked when no child contributes
// anything, and indeterminate otherwise.
func Aggregate(n *model.Node) State {
	if n == nil {
		return StateUnchecked
	}
	if len(n.Children) == 0 {
		if n.Checked {
			return StateChecked
		}
		return StateUnchecked
	}

	allChecked := true
	anySelected := false
	for _, child := range n.Children {
		switch Aggregate(child) {
		case StateChecked:
			anySelected = true
		case StateIndeterminate:
			allChecked = false
			anySelected = true
		default:
			allChecked = false
		}
	}
	switch {
	case allChecked:
		return StateChecked
	case anySelected:
		return StateIndeterminate
	default:
		return StateUnchecked
	}
}

// NextChecked returns the checked value a toggle should apply given the
// current aggregate: a fully checked node unchecks, anything else (including
// indeterminate) promotes to fully checked.
func NextChecked(current State) bool {
	return current != StateChecked
}

// Toggle computes the node's current aggregate and returns a snapshot with
// the toggled value cascaded through SetChecked. Unknown ids return the
// receiver unchanged.
func (s *Snapshot) Toggle(id string) *Snapshot {
	n := s.FindByID(id)
	if n == nil {
		return s
	}
	return s.SetChecked(id, NextChecked(Aggregate(n)))
}
