// Package ui implements the canopy terminal interface: a lazy-loading
// catalog tree with tri-state checkboxes, a live selection mirror, search,
// and export shortcuts.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/canopy/internal/datasource"
	"github.com/vanderheijden86/canopy/pkg/config"
	"github.com/vanderheijden86/canopy/pkg/debug"
	"github.com/vanderheijden86/canopy/pkg/export"
	"github.com/vanderheijden86/canopy/pkg/model"
	"github.com/vanderheijden86/canopy/pkg/tree"
	"github.com/vanderheijden86/canopy/pkg/watcher"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modePattern
	modeHelp
	modeStats
)

// Messages delivered back to Update from async work.
type (
	fetchResultMsg   struct{ res tree.FetchResult }
	sourceChangedMsg struct{}
	reloadMsg        struct {
		roots []*model.Node
		err   error
	}
	clearStatusMsg struct{ seq int }
)

const statusTimeout = 4 * time.Second

// Model is the bubbletea model for the whole application.
type Model struct {
	cfg         config.Config
	source      datasource.Source
	sourceLabel string

	snap   *tree.Snapshot
	loader *tree.Loader
	watch  *watcher.Watcher

	expanded map[string]bool
	cursor   int
	scroll   int

	mode         mode
	searchInput  textinput.Model
	patternInput textinput.Model
	query        string

	spin  spinner.Model
	stats fetchStats

	showMirror bool
	width      int
	height     int

	status    string
	statusErr bool
	statusSeq int
	dirty     bool // source changed on disk since last reload

	// initCmds carries the startup expansion fetches from New to Init.
	initCmds []tea.Cmd
}

// New builds the model around an opened source and its initial roots.
func New(cfg config.Config, source datasource.Source, roots []*model.Node, w *watcher.Watcher) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = sp.Style.Foreground(ColorInfo)

	search := textinput.New()
	search.Placeholder = "filter by name"
	search.Prompt = "/ "
	search.CharLimit = 120

	pattern := textinput.New()
	pattern.Placeholder = "regex to check (prefix ! to uncheck)"
	pattern.Prompt = "p "
	pattern.CharLimit = 200

	m := Model{
		cfg:          cfg,
		source:       source,
		sourceLabel:  cfg.Source.Path,
		snap:         tree.NewSnapshot(roots),
		loader:       tree.NewLoader(source),
		watch:        w,
		expanded:     make(map[string]bool),
		searchInput:  search,
		patternInput: pattern,
		spin:         sp,
		showMirror:   cfg.UI.ShowMirror,
		width:        100,
		height:       30,
	}

	// Startup expansion: open containers down to the preferred depth and
	// start their fetches. Levels below whatever the source pre-populated
	// fill in as users descend.
	if cfg.UI.ExpandDepth > 0 {
		m.expanded = expandToDepth(m.snap.Roots(), cfg.UI.ExpandDepth)
		for id := range m.expanded {
			if next, fetch, ok := m.loader.Begin(m.snap, id); ok {
				m.snap = next
				m.initCmds = append(m.initCmds, runFetch(fetch))
			}
		}
	}
	return m
}

// Init starts the spinner, arms the source watcher, and dispatches the
// startup expansion fetches.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.watch != nil {
		cmds = append(cmds, waitSourceChange(m.watch))
	}
	cmds = append(cmds, m.initCmds...)
	return tea.Batch(cmds...)
}

func runFetch(fetch func(context.Context) tree.FetchResult) tea.Cmd {
	return func() tea.Msg {
		return fetchResultMsg{res: fetch(context.Background())}
	}
}

func waitSourceChange(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return sourceChangedMsg{}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		roots, err := source.Roots(context.Background())
		return reloadMsg{roots: roots, err: err}
	}
}

func (m Model) expireStatus() (Model, tea.Cmd) {
	m.statusSeq++
	seq := m.statusSeq
	return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m Model) setStatus(format string, args ...any) (Model, tea.Cmd) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
	return m.expireStatus()
}

func (m Model) setError(format string, args ...any) (Model, tea.Cmd) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = true
	return m.expireStatus()
}

// Update is the single writer for the snapshot: every mutation happens here,
// on the bubbletea goroutine, while fetches run as commands off it.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case fetchResultMsg:
		if msg.res.Err != nil {
			m.stats.recordError()
			m.snap = m.loader.Apply(m.snap, msg.res)
			next, cmd := m.setError("load %s failed: %v", msg.res.ParentID, msg.res.Err)
			return next, cmd
		}
		m.stats.record(msg.res.Elapsed)
		m.snap = m.loader.Apply(m.snap, msg.res)
		return m, nil

	case sourceChangedMsg:
		m.dirty = true
		next, cmd := m.setStatus("source changed on disk, press r to reload")
		if m.watch != nil {
			return next, tea.Batch(cmd, waitSourceChange(m.watch))
		}
		return next, cmd

	case reloadMsg:
		if msg.err != nil {
			next, cmd := m.setError("reload failed: %v", msg.err)
			return next, cmd
		}
		m = m.applyReload(msg.roots)
		next, cmd := m.setStatus("reloaded %s", m.sourceLabel)
		return next, cmd

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyReload swaps in fresh roots, carrying over the checked leaves and
// expanded containers that still resolve by id. Everything else resets with
// the tree.
func (m Model) applyReload(roots []*model.Node) Model {
	old := m.snap
	m.snap = tree.NewSnapshot(roots)
	for _, n := range old.CheckedItems(nil) {
		if n.IsLeaf() && m.snap.FindByID(n.ID) != nil {
			m.snap = m.snap.SetChecked(n.ID, true)
		}
	}
	kept := make(map[string]bool)
	for id := range m.expanded {
		if m.snap.FindByID(id) != nil {
			kept[id] = true
		}
	}
	m.expanded = kept
	m.cursor = 0
	m.scroll = 0
	m.dirty = false
	debug.Log("ui: reloaded, %d nodes", m.snap.Len())
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modePattern:
		return m.handlePatternKey(msg)
	case modeHelp, modeStats:
		// Any key dismisses an overlay.
		m.mode = modeBrowse
		return m, nil
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.query = ""
		m.cursor = 0
		return m, nil
	case "enter":
		m.mode = modeBrowse
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if q := m.searchInput.Value(); q != m.query {
		m.query = q
		m.cursor = 0
		m.scroll = 0
	}
	return m, cmd
}

func (m Model) handlePatternKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.patternInput.SetValue("")
		m.patternInput.Blur()
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.patternInput.Value())
		m.mode = modeBrowse
		m.patternInput.SetValue("")
		m.patternInput.Blur()
		if raw == "" {
			return m, nil
		}
		checked := true
		if strings.HasPrefix(raw, "!") {
			checked = false
			raw = strings.TrimPrefix(raw, "!")
		}
		next, count, err := m.snap.ApplyPattern("", raw, checked)
		if err != nil {
			nm, cmd := m.setError("bad pattern: %v", err)
			return nm, cmd
		}
		m.snap = next
		verb := "checked"
		if !checked {
			verb = "unchecked"
		}
		nm, cmd := m.setStatus("%s %d nodes matching %q", verb, count, raw)
		return nm, cmd
	}
	var cmd tea.Cmd
	m.patternInput, cmd = m.patternInput.Update(msg)
	return m, cmd
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.catalogRows()
	if len(rows) > 0 {
		m.cursor = clamp(m.cursor, 0, len(rows)-1)
	} else {
		m.cursor = 0
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if m.watch != nil {
			m.watch.Stop()
		}
		return m, tea.Quit

	case "j", "down":
		if len(rows) > 0 {
			m.cursor = clamp(m.cursor+1, 0, len(rows)-1)
		}
	case "k", "up":
		if len(rows) > 0 {
			m.cursor = clamp(m.cursor-1, 0, len(rows)-1)
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		if len(rows) > 0 {
			m.cursor = len(rows) - 1
		}

	case "l", "right", "enter":
		return m.expandCursor(rows)
	case "h", "left":
		return m.collapseCursor(rows), nil

	case " ", "space":
		if len(rows) > 0 {
			m.snap = m.snap.Toggle(rows[m.cursor].node.ID)
		}

	case "/":
		m.mode = modeSearch
		m.searchInput.SetValue(m.query)
		return m, m.searchInput.Focus()

	case "p":
		m.mode = modePattern
		return m, m.patternInput.Focus()

	case "m":
		m.showMirror = !m.showMirror
	case "?":
		m.mode = modeHelp
	case "S":
		m.mode = modeStats

	case "y":
		return m.yankSelection()
	case "e":
		return m.exportManifest()
	case "E":
		return m.exportSnapshot()

	case "r":
		return m, m.reloadCmd()

	case "esc":
		if m.query != "" {
			m.query = ""
			m.searchInput.SetValue("")
			m.cursor = 0
			m.scroll = 0
		}
	}
	return m, nil
}

// expandCursor opens the container under the cursor, starting a child fetch
// when it has never loaded. Expanding an already-open container collapses
// it, matching how enter behaves in most tree views.
func (m Model) expandCursor(rows []row) (tea.Model, tea.Cmd) {
	if len(rows) == 0 {
		return m, nil
	}
	r := rows[m.cursor]
	if !r.container {
		return m, nil
	}
	id := r.node.ID
	if m.expanded[id] {
		delete(m.expanded, id)
		return m, nil
	}
	m.expanded[id] = true
	if next, fetch, ok := m.loader.Begin(m.snap, id); ok {
		m.snap = next
		return m, runFetch(fetch)
	}
	return m, nil
}

// collapseCursor closes the container under the cursor, or moves to the
// parent when the row is a leaf or already closed.
func (m Model) collapseCursor(rows []row) Model {
	if len(rows) == 0 {
		return m
	}
	r := rows[m.cursor]
	id := r.node.ID
	if r.container && m.expanded[id] {
		delete(m.expanded, id)
		return m
	}
	if parent := m.snap.ParentID(id); parent != "" {
		for i, cand := range rows {
			if cand.node.ID == parent {
				m.cursor = i
				break
			}
		}
	}
	return m
}

func (m Model) yankSelection() (tea.Model, tea.Cmd) {
	var ids []string
	for _, n := range m.snap.CheckedItems(nil) {
		if n.IsLeaf() {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		next, cmd := m.setStatus("nothing checked to yank")
		return next, cmd
	}
	if err := clipboard.WriteAll(strings.Join(ids, "\n")); err != nil {
		next, cmd := m.setError("clipboard: %v", err)
		return next, cmd
	}
	next, cmd := m.setStatus("yanked %d ids", len(ids))
	return next, cmd
}

func (m Model) exportManifest() (tea.Model, tea.Cmd) {
	path := "canopy-selection.json"
	manifest := export.BuildManifest(m.snap, m.sourceLabel, string(m.source.Type()))
	if err := export.SaveManifest(path, manifest); err != nil {
		next, cmd := m.setError("export: %v", err)
		return next, cmd
	}
	next, cmd := m.setStatus("wrote %s", path)
	return next, cmd
}

func (m Model) exportSnapshot() (tea.Model, tea.Cmd) {
	path := "canopy-selection.svg"
	err := export.SaveSnapshot(m.snap, export.SnapshotOptions{
		Path:   path,
		Source: m.sourceLabel,
	})
	if err != nil {
		next, cmd := m.setError("export: %v", err)
		return next, cmd
	}
	next, cmd := m.setStatus("wrote %s", path)
	return next, cmd
}

// catalogRows computes the visible catalog rows for the current filter and
// expansion state.
func (m Model) catalogRows() []row {
	if strings.TrimSpace(m.query) == "" {
		return visibleRows(m.snap.Roots(), m.expanded, nil)
	}
	fr := tree.Filter(m.snap, m.query)
	return visibleRows(fr.Roots, m.expanded, fr.ExpandIDs)
}

// mirrorRows computes the selection mirror rows, always fully expanded.
func (m Model) mirrorRows() []row {
	proj := tree.ProjectSelection(m.snap)
	return visibleRows(proj.Roots, nil, allExpanded(proj.Roots))
}

// Snapshot exposes the current tree state, used by tests and by main for
// exit-time exports.
func (m Model) Snapshot() *tree.Snapshot { return m.snap }
