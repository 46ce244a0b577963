package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# canopy

## Moving around

| Key | Action |
|-----|--------|
| j / ↓ | move down |
| k / ↑ | move up |
| g / G | first / last row |
| l / → / enter | expand container (fetches children on first open) |
| h / ← | collapse container, or jump to parent |

## Selecting

| Key | Action |
|-----|--------|
| space | toggle checkbox (partially checked promotes to checked) |
| p | check or uncheck everything matching a regex |
| y | copy checked ids to the clipboard |

## Panes and overlays

| Key | Action |
|-----|--------|
| / | filter the catalog; esc clears |
| m | show or hide the selection mirror |
| S | fetch latency stats |
| ? | this help |

## Session

| Key | Action |
|-----|--------|
| e | export the selection manifest (JSON) |
| E | export a selection snapshot (SVG) |
| r | reload the catalog from the source |
| q | quit |
`

// renderHelp renders the help overlay through glamour, falling back to the
// raw markdown when the renderer cannot be built.
func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(clamp(width-4, 40, 100)),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
