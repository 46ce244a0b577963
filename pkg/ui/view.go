package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/canopy/pkg/tree"
)

// View renders the whole screen: header, panes (or an overlay), input line
// and status bar.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.mode {
	case modeHelp:
		b.WriteString(renderHelp(m.width))
	case modeStats:
		b.WriteString(m.stats.render(m.width))
		b.WriteString("\n")
		b.WriteString(StatusStyle.Render("press any key to close"))
	default:
		b.WriteString(m.renderPanes())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render("canopy")
	src := StatusStyle.Render(m.sourceLabel)
	checked := StatusStyle.Render(fmt.Sprintf("%d checked", m.snap.CheckedLeafCount()))
	parts := []string{title, src, checked}
	if m.dirty {
		parts = append(parts, ErrorStyle.Render("source changed"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	switch {
	case m.mode == modeSearch:
		return m.searchInput.View()
	case m.mode == modePattern:
		return m.patternInput.View()
	case m.status != "":
		if m.statusErr {
			return ErrorStyle.Render(m.status)
		}
		return StatusStyle.Render(m.status)
	case m.query != "":
		return StatusStyle.Render(fmt.Sprintf("filter: %q (esc clears)  ?: help", m.query))
	default:
		return StatusStyle.Render("space: check  enter: expand  /: filter  m: mirror  ?: help  q: quit")
	}
}

// bodyHeight is the row budget of the tree panes.
func (m Model) bodyHeight() int {
	// Header, footer, and the panel border rows.
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) renderPanes() string {
	bodyH := m.bodyHeight()
	catalogW := m.width - 2
	if m.showMirror {
		catalogW = int(float64(m.width) * m.cfg.UI.SplitRatio)
		if catalogW < 20 {
			catalogW = 20
		}
	}

	catalog := FocusedPanelStyle.
		Width(catalogW - 2).
		Height(bodyH).
		Render(m.renderTree(m.catalogRows(), catalogW-4, bodyH, true))

	if !m.showMirror {
		return catalog
	}

	mirrorW := m.width - catalogW - 2
	if mirrorW < 20 {
		mirrorW = 20
	}
	mirrorRows := m.mirrorRows()
	var mirrorBody string
	if len(mirrorRows) == 0 {
		mirrorBody = StatusStyle.Render("nothing selected")
	} else {
		mirrorBody = m.renderTree(mirrorRows, mirrorW-4, bodyH, false)
	}
	mirror := PanelStyle.
		Width(mirrorW - 2).
		Height(bodyH).
		Render(TitleStyle.Render("selected") + "\n" + mirrorBody)

	return lipgloss.JoinHorizontal(lipgloss.Top, catalog, mirror)
}

// renderTree renders a window of rows sized to the pane, keeping the cursor
// visible in the interactive pane.
func (m Model) renderTree(rows []row, width, height int, interactive bool) string {
	if len(rows) == 0 {
		return StatusStyle.Render("empty catalog")
	}

	start := 0
	if interactive && m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(rows) {
		end = len(rows)
	}

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], width, interactive && i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, width int, selected bool) string {
	indent := strings.Repeat("  ", r.depth)
	glyph := expandGlyph(r.container, r.expanded)
	state := tree.Aggregate(m.snap.FindByID(r.node.ID))

	// Fixed prefix: indent, expand glyph (2), checkbox (3), separator (1).
	avail := width - len(indent) - 6
	name := truncateString(r.node.Name, avail)

	// The cursor row stays unstyled inside so the background reads cleanly.
	if selected {
		box := plainCheckbox(state)
		return CursorStyle.Render(padRight(indent+glyph+box+" "+name, width))
	}

	styledName := name
	if m.query != "" && containsFold(r.node.Name, m.query) {
		styledName = MatchStyle.Render(name)
	}
	var suffix string
	switch {
	case r.node.Loading:
		suffix = " " + m.spin.View()
	case m.cfg.UI.ShowKindTags && r.node.Kind != "":
		suffix = " " + RenderKindTag(r.node.Kind)
	}
	return indent + glyph + checkboxGlyph(state) + " " + styledName + suffix
}

func plainCheckbox(state tree.State) string {
	switch state {
	case tree.StateChecked:
		return "[x]"
	case tree.StateIndeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
