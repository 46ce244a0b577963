package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/canopy/pkg/model"
	"github.com/vanderheijden86/canopy/pkg/tree"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Checkbox states
	ColorChecked       = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorIndeterminate = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorUnchecked     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - Catalog and mirror panes
// ══════════════════════════════════════════════════════════════════════════════

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	CursorStyle = lipgloss.NewStyle().
			Background(ColorBgHighlight).
			Foreground(ColorText)

	MatchStyle = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)
)

// checkboxGlyph renders the tri-state checkbox for a node.
func checkboxGlyph(state tree.State) string {
	switch state {
	case tree.StateChecked:
		return lipgloss.NewStyle().Foreground(ColorChecked).Render("[x]")
	case tree.StateIndeterminate:
		return lipgloss.NewStyle().Foreground(ColorIndeterminate).Render("[-]")
	default:
		return lipgloss.NewStyle().Foreground(ColorUnchecked).Render("[ ]")
	}
}

// expandGlyph renders the container marker: open, closed, or a leaf spacer.
func expandGlyph(container, expanded bool) string {
	switch {
	case !container:
		return "  "
	case expanded:
		return "▾ "
	default:
		return "▸ "
	}
}

// RenderKindTag renders the node kind as a dim bracketed tag.
func RenderKindTag(kind model.Kind) string {
	if kind == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render("[" + string(kind) + "]")
}

// RenderDivider renders a horizontal divider line.
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
