//go:build ignore

// generate_testdata.go creates standard catalog fixtures for benchmarking
// and manual testing.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	tests/testdata/catalogs/small.json   (~100 nodes)
//	tests/testdata/catalogs/medium.json  (~1000 nodes)
//	tests/testdata/catalogs/large.json   (~5000 nodes)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/canopy/pkg/model"
	"github.com/vanderheijden86/canopy/pkg/testutil"
)

type datasetSpec struct {
	name  string
	roots int
	depth int
	width int
}

var datasets = []datasetSpec{
	{"small", 3, 3, 5},
	{"medium", 6, 4, 8},
	{"large", 10, 5, 10},
}

func main() {
	outputDir := "tests/testdata/catalogs"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s catalog...\n", ds.name)

		gen := testutil.NewGenerator(testutil.GeneratorConfig{
			Seed:        int64(ds.roots * ds.depth * ds.width), // reproducible per shape
			Roots:       ds.roots,
			MaxDepth:    ds.depth,
			MaxChildren: ds.width,
			LeafRatio:   0.6,
			Unloaded:    0.1,
		})
		roots := gen.Catalog()

		data, err := json.MarshalIndent(roots, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d nodes, %d bytes)\n", outputPath, model.Count(roots), len(data))
	}

	fmt.Println("\nDone! Catalog fixtures created in", outputDir)
}
