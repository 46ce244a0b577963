// Package setup implements the interactive first-run wizard behind the
// --init flag. It discovers candidate catalog sources, walks the user
// through picking one, and writes the resulting config file.
package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/canopy/internal/datasource"
	"github.com/vanderheijden86/canopy/pkg/config"
)

// Wizard collects a working configuration interactively.
type Wizard struct {
	cfg config.Config
	// scanDir is searched for candidate sources; defaults to the working
	// directory.
	scanDir string
}

// NewWizard creates a wizard starting from the defaults.
func NewWizard() *Wizard {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &Wizard{cfg: config.DefaultConfig(), scanDir: wd}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm applies the shared theme and switches to accessible prompts when
// stdin is not a terminal.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the wizard and writes the config to its default location.
// It returns the saved config and the path it was written to.
func (w *Wizard) Run(ctx context.Context) (config.Config, string, error) {
	fmt.Println("canopy setup")
	fmt.Println("────────────")

	if err := w.collectSource(ctx); err != nil {
		return w.cfg, "", err
	}
	if err := w.collectOptions(); err != nil {
		return w.cfg, "", err
	}

	path := config.ConfigPath()
	if err := config.Save(w.cfg); err != nil {
		return w.cfg, "", err
	}
	fmt.Printf("wrote %s\n", path)
	return w.cfg, path, nil
}

func (w *Wizard) collectSource(ctx context.Context) error {
	candidates, _ := datasource.Discover(ctx, w.scanDir)

	opts := candidateOptions(candidates)
	const manual = "__manual__"
	opts = append(opts, huh.NewOption("enter a path manually", manual))

	var picked string
	form := newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Catalog source").
			Description("Sources found in the current directory").
			Options(opts...).
			Value(&picked),
	))
	if err := form.Run(); err != nil {
		return err
	}

	if picked != manual {
		typ, err := datasource.DetectType(picked)
		if err != nil {
			return err
		}
		w.cfg.Source = config.Source{Type: string(typ), Path: picked}
		return nil
	}

	var path string
	form = newForm(huh.NewGroup(
		huh.NewInput().
			Title("Source path").
			Description("A .json fixture, a SQLite database, or a directory").
			Validate(validateSourcePath).
			Value(&path),
	))
	if err := form.Run(); err != nil {
		return err
	}
	typ, err := datasource.DetectType(path)
	if err != nil {
		return err
	}
	w.cfg.Source = config.Source{Type: string(typ), Path: path}
	return nil
}

func (w *Wizard) collectOptions() error {
	delay := fmt.Sprintf("%d", w.cfg.Fixture.FetchDelay/time.Millisecond)
	form := newForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Show the selection mirror pane?").
			Value(&w.cfg.UI.ShowMirror),
		huh.NewConfirm().
			Title("Reload when the source changes on disk?").
			Value(&w.cfg.Watch),
		huh.NewInput().
			Title("Fixture fetch delay (ms)").
			Description("Simulated backend latency for JSON fixtures").
			Validate(validateDelay).
			Value(&delay),
	))
	if err := form.Run(); err != nil {
		return err
	}
	ms, err := strconv.Atoi(strings.TrimSpace(delay))
	if err != nil {
		return fmt.Errorf("fetch delay: %w", err)
	}
	w.cfg.Fixture.FetchDelay = time.Duration(ms) * time.Millisecond
	return nil
}

// candidateOptions renders discovered sources as select options, valid ones
// first.
func candidateOptions(candidates []datasource.Candidate) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		label := fmt.Sprintf("%s (%s)", c.Path, c.Type)
		opts = append(opts, huh.NewOption(label, c.Path))
	}
	for _, c := range candidates {
		if c.Valid {
			continue
		}
		label := fmt.Sprintf("%s (invalid: %s)", c.Path, c.ValidationError)
		opts = append(opts, huh.NewOption(label, c.Path))
	}
	return opts
}

func validateSourcePath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("path is required")
	}
	_, err := datasource.DetectType(s)
	return err
}

func validateDelay(s string) error {
	ms, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a number of milliseconds")
	}
	if ms < 0 || ms > 60_000 {
		return fmt.Errorf("delay must be between 0 and 60000")
	}
	return nil
}
