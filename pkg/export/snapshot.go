package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/canopy/pkg/model"
	"github.com/vanderheijden86/canopy/pkg/tree"
)

// SnapshotOptions controls tree snapshot export behaviour.
type SnapshotOptions struct {
	Path   string // output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // optional title rendered in the header
	Source string // source path shown in the header
	Preset string // layout preset: "compact" (default) or "roomy"
}

// SaveSnapshot renders the snapshot's selection tree as a static SVG or
// PNG: one row per selected node, indented by depth, colored by checkbox
// state.
func SaveSnapshot(s *tree.Snapshot, opts SnapshotOptions) error {
	proj := tree.ProjectSelection(s)
	if len(proj.Roots) == 0 {
		return fmt.Errorf("nothing selected to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	layout := buildLayout(s, proj.Roots, opts)

	switch format {
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		return renderSVGToWriter(f, layout)
	}
}

// --- layout ----------------------------------------------------------------

type layoutRow struct {
	ID      string
	Label   string
	Kind    model.Kind
	State   tree.State
	Depth   int
	X, Y    float64
	W, H    float64
	ParentY float64 // center Y of the parent row, <0 for roots
}

type layoutResult struct {
	Rows    []layoutRow
	Width   int
	Height  int
	Header  float64
	Summary summaryInfo
}

type summaryInfo struct {
	Title         string
	Source        string
	NodeCount     int
	CheckedLeaves int
}

func buildLayout(s *tree.Snapshot, roots []*model.Node, opts SnapshotOptions) layoutResult {
	const (
		rowHCompact  = 26.0
		rowHRoomy    = 34.0
		indent       = 28.0
		padding      = 36.0
		headerHeight = 96.0
		labelMax     = 48
	)

	rowH := rowHCompact
	if strings.EqualFold(opts.Preset, "roomy") {
		rowH = rowHRoomy
	}

	var rows []layoutRow
	maxDepth := 0
	maxLabel := 0
	var place func(nodes []*model.Node, depth int, parentY float64)
	place = func(nodes []*model.Node, depth int, parentY float64) {
		for _, n := range nodes {
			y := padding + headerHeight + float64(len(rows))*rowH
			label := truncate(n.Name, labelMax)
			// State comes from the full catalog, not the mirror: a container
			// whose unchecked children were projected away is still partial.
			row := layoutRow{
				ID:      n.ID,
				Label:   label,
				Kind:    n.Kind,
				State:   tree.Aggregate(s.FindByID(n.ID)),
				Depth:   depth,
				X:       padding + float64(depth)*indent,
				Y:       y,
				W:       float64(len(label))*8 + 40,
				H:       rowH - 6,
				ParentY: parentY,
			}
			if depth > maxDepth {
				maxDepth = depth
			}
			if len(label) > maxLabel {
				maxLabel = len(label)
			}
			rows = append(rows, row)
			place(n.Children, depth+1, y+row.H/2)
		}
	}
	place(roots, 0, -1)

	width := int(padding*2 + float64(maxDepth)*indent + float64(maxLabel)*8 + 80)
	if width < 560 {
		width = 560
	}
	height := int(padding*2 + headerHeight + float64(len(rows))*rowH)
	if height < 320 {
		height = 320
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Selection Snapshot"
	}

	return layoutResult{
		Rows:   rows,
		Width:  width,
		Height: height,
		Header: headerHeight,
		Summary: summaryInfo{
			Title:         title,
			Source:        opts.Source,
			NodeCount:     len(rows),
			CheckedLeaves: s.CheckedLeafCount(),
		},
	}
}

// --- rendering -------------------------------------------------------------

var (
	colorChecked  = color.RGBA{0xc8, 0xe6, 0xc9, 0xff}
	colorPartial  = color.RGBA{0xff, 0xf3, 0xe0, 0xff}
	colorPinned   = color.RGBA{0xcf, 0xd8, 0xdc, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorGuide    = color.RGBA{0x9e, 0xa7, 0xb3, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

// stateColor maps a row's aggregate state to its fill. Containers that are
// in the projection only to keep a selected descendant reachable show as
// pinned.
func stateColor(s tree.State) color.RGBA {
	switch s {
	case tree.StateChecked:
		return colorChecked
	case tree.StateIndeterminate:
		return colorPartial
	default:
		return colorPinned
	}
}

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	drawSummary(dc, layout)
	drawLegend(dc, layout)

	dc.SetColor(colorGuide)
	dc.SetLineWidth(1.5)
	for _, r := range layout.Rows {
		if r.ParentY < 0 {
			continue
		}
		x := r.X - 14
		dc.DrawLine(x, r.ParentY, x, r.Y+r.H/2)
		dc.Stroke()
		dc.DrawLine(x, r.Y+r.H/2, r.X, r.Y+r.H/2)
		dc.Stroke()
	}

	for _, r := range layout.Rows {
		dc.SetColor(stateColor(r.State))
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(r.Label, r.X+10, r.Y+r.H/2-5, 0, 0.5)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(string(r.Kind), r.X+10, r.Y+r.H/2+7, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummarySVG(canvas, layout)
	drawLegendSVG(canvas, layout)

	for _, r := range layout.Rows {
		if r.ParentY < 0 {
			continue
		}
		x := int(r.X - 14)
		midY := int(r.Y + r.H/2)
		style := fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorGuide))
		canvas.Line(x, int(r.ParentY), x, midY, style)
		canvas.Line(x, midY, int(r.X), midY, style)
	}

	for _, r := range layout.Rows {
		canvas.Roundrect(int(r.X), int(r.Y), int(r.W), int(r.H), 6, 6,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(stateColor(r.State)), css(colorStroke)))
		canvas.Text(int(r.X)+10, int(r.Y+r.H/2)-2, r.Label,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
		canvas.Text(int(r.X)+10, int(r.Y+r.H/2)+10, string(r.Kind),
			fmt.Sprintf("fill:%s;font-size:10px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func drawSummary(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	if layout.Summary.Source != "" {
		dc.DrawStringAnchored(fmt.Sprintf("source: %s", layout.Summary.Source), 32, 58, 0, 0.5)
	}
	dc.DrawStringAnchored(fmt.Sprintf("nodes: %d  checked leaves: %d",
		layout.Summary.NodeCount, layout.Summary.CheckedLeaves), 32, 76, 0, 0.5)
}

func drawLegend(dc *gg.Context, layout layoutResult) {
	boxW, boxH := 170.0, 74.0
	x := float64(layout.Width) - boxW - 20
	y := 22.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+12, y+16, 0, 0.5)
	drawLegendRow(dc, x+12, y+32, colorChecked, "Checked")
	drawLegendRow(dc, x+12, y+48, colorPartial, "Partially checked")
	drawLegendRow(dc, x+12, y+64, colorPinned, "Kept for a descendant")
}

func drawLegendRow(dc *gg.Context, x, y float64, c color.RGBA, label string) {
	dc.SetColor(c)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, x+20, y, 0, 0.5)
}

func drawSummarySVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 40, layout.Summary.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	if layout.Summary.Source != "" {
		canvas.Text(32, 58, fmt.Sprintf("source: %s", layout.Summary.Source),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	}
	canvas.Text(32, 76, fmt.Sprintf("nodes: %d  checked leaves: %d",
		layout.Summary.NodeCount, layout.Summary.CheckedLeaves),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

func drawLegendSVG(canvas *svg.SVG, layout layoutResult) {
	boxW, boxH := 170, 74
	x := layout.Width - boxW - 20
	y := 22
	canvas.Roundrect(x, y, boxW, boxH, 10, 10,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	canvas.Text(x+12, y+16, "Legend",
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	drawLegendRowSVG(canvas, x+12, y+32, colorChecked, "Checked")
	drawLegendRowSVG(canvas, x+12, y+48, colorPartial, "Partially checked")
	drawLegendRowSVG(canvas, x+12, y+64, colorPinned, "Kept for a descendant")
}

func drawLegendRowSVG(canvas *svg.SVG, x, y int, c color.RGBA, label string) {
	canvas.Roundrect(x, y-8, 14, 14, 3, 3,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(c), css(colorStroke)))
	canvas.Text(x+20, y, label,
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
