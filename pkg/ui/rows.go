package ui

import (
	"github.com/vanderheijden86/canopy/pkg/model"
)

// row is one visible line of a tree pane.
type row struct {
	node      *model.Node
	depth     int
	container bool
	expanded  bool
}

// visibleRows flattens the forest into the lines a pane shows, honoring the
// user's expanded set plus any force-expanded ids (search results, mirror).
// Children of collapsed containers are skipped entirely.
func visibleRows(roots []*model.Node, expanded, forced map[string]bool) []row {
	var rows []row
	var walk func(nodes []*model.Node, depth int)
	walk = func(nodes []*model.Node, depth int) {
		for _, n := range nodes {
			open := expanded[n.ID] || forced[n.ID]
			rows = append(rows, row{
				node:      n,
				depth:     depth,
				container: n.IsContainer(),
				expanded:  open && n.IsContainer(),
			})
			if open {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(roots, 0)
	return rows
}

// allExpanded returns a force set covering every container in the forest,
// used by the mirror pane which always shows its full projection.
func allExpanded(roots []*model.Node) map[string]bool {
	forced := make(map[string]bool)
	model.WalkForest(roots, func(n *model.Node) bool {
		if n.IsContainer() {
			forced[n.ID] = true
		}
		return true
	})
	return forced
}

// expandToDepth returns the ids of containers within depth levels of the
// roots, used for the startup auto-expand preference.
func expandToDepth(roots []*model.Node, depth int) map[string]bool {
	ids := make(map[string]bool)
	if depth <= 0 {
		return ids
	}
	var walk func(nodes []*model.Node, level int)
	walk = func(nodes []*model.Node, level int) {
		if level >= depth {
			return
		}
		for _, n := range nodes {
			if n.IsContainer() {
				ids[n.ID] = true
				walk(n.Children, level+1)
			}
		}
	}
	walk(roots, 0)
	return ids
}
