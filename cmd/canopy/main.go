package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/canopy/internal/datasource"
	"github.com/vanderheijden86/canopy/pkg/config"
	"github.com/vanderheijden86/canopy/pkg/debug"
	"github.com/vanderheijden86/canopy/pkg/export"
	"github.com/vanderheijden86/canopy/pkg/setup"
	"github.com/vanderheijden86/canopy/pkg/ui"
	"github.com/vanderheijden86/canopy/pkg/version"
	"github.com/vanderheijden86/canopy/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	initFlag := flag.Bool("init", false, "Run the interactive setup wizard")
	sourceFlag := flag.String("source", "", "Catalog source: JSON fixture, SQLite database, or directory")
	sourceType := flag.String("source-type", "", "Force the source type: fixture, sqlite, or dir")
	watchFlag := flag.Bool("watch", false, "Reload when the source changes on disk")
	exportSelection := flag.String("export-selection", "", "Write the selection manifest to this path on exit")
	exportSnapshot := flag.String("export-snapshot", "", "Write an SVG/PNG selection snapshot to this path on exit")
	fetchDelay := flag.Duration("fetch-delay", 0, "Override the fixture fetch delay (e.g. 250ms)")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: canopy [options]")
		fmt.Println("\nA TUI catalog browser with tri-state selection.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("canopy %s\n", version.Version)
		os.Exit(0)
	}

	if *initFlag {
		if _, _, err := setup.NewWizard().Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	// Flags override the config file.
	if *sourceFlag != "" {
		cfg.Source = config.Source{Type: *sourceType, Path: *sourceFlag}
	}
	if *watchFlag {
		cfg.Watch = true
	}
	if *fetchDelay > 0 {
		cfg.Fixture.FetchDelay = *fetchDelay
	}

	if cfg.Source.Path == "" {
		fmt.Fprintln(os.Stderr, "No catalog source configured.")
		fmt.Fprintln(os.Stderr, "Run 'canopy --init' or pass --source <path>.")
		os.Exit(1)
	}

	src, err := datasource.Open(datasource.SourceType(cfg.Source.Type), cfg.Source.Path, cfg.Fixture.FetchDelay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	roots, err := src.Roots(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", cfg.Source.Path, err)
		os.Exit(1)
	}

	var w *watcher.Watcher
	if cfg.Watch {
		w, err = watcher.New(cfg.Source.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot watch source: %v\n", err)
		} else if err := w.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot watch source: %v\n", err)
			w = nil
		} else {
			debug.Log("main: watching %s (polling=%v)", w.Path(), w.IsPolling())
		}
	}

	m := ui.New(cfg, src, roots, w)
	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Exit-time exports operate on whatever the session left selected.
	fm, ok := final.(ui.Model)
	if !ok {
		return
	}
	snap := fm.Snapshot()
	if *exportSelection != "" {
		manifest := export.BuildManifest(snap, cfg.Source.Path, string(src.Type()))
		if err := export.SaveManifest(*exportSelection, manifest); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *exportSelection)
	}
	if *exportSnapshot != "" {
		err := export.SaveSnapshot(snap, export.SnapshotOptions{
			Path:   *exportSnapshot,
			Source: cfg.Source.Path,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *exportSnapshot)
	}
}
