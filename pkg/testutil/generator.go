// Package testutil provides catalog fixture generators and shared test
// assertions. All generators produce deterministic output for reproducible
// tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// GeneratorConfig controls catalog generation.
type GeneratorConfig struct {
	Seed        int64   // Random seed for determinism
	Roots       int     // Number of root containers
	MaxDepth    int     // Maximum nesting below the roots
	MaxChildren int     // Maximum children per container
	LeafRatio   float64 // Probability a child is a leaf (0..1)
	Unloaded    float64 // Probability a container is left unloaded (0..1)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Roots:       3,
		MaxDepth:    4,
		MaxChildren: 5,
		LeafRatio:   0.6,
	}
}

// Generator creates catalog fixtures with various shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
	seq int
}

// NewGenerator creates a generator with the given config.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Roots <= 0 {
		cfg.Roots = 1
	}
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = 3
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Catalog generates a random root-level sequence. Every id is unique.
func (g *Generator) Catalog() []*model.Node {
	roots := make([]*model.Node, 0, g.cfg.Roots)
	for i := 0; i < g.cfg.Roots; i++ {
		roots = append(roots, g.container(0))
	}
	return roots
}

func (g *Generator) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s-%04d", prefix, g.seq)
}

func (g *Generator) container(depth int) *model.Node {
	id := g.nextID("dir")
	n := model.NewContainer(id, "folder "+id, model.KindFolder)
	if depth >= g.cfg.MaxDepth || g.rng.Float64() < g.cfg.Unloaded {
		// Left unloaded: empty children, loaded false.
		return n
	}
	n.Loaded = true
	count := 1 + g.rng.Intn(g.cfg.MaxChildren)
	for i := 0; i < count; i++ {
		if g.rng.Float64() < g.cfg.LeafRatio {
			leafID := g.nextID("obj")
			n.Children = append(n.Children, model.NewLeaf(leafID, "object "+leafID, model.KindTable))
		} else {
			n.Children = append(n.Children, g.container(depth+1))
		}
	}
	return n
}

// Flat returns a catalog of a single container with n leaf children, the
// shape most aggregate tests want.
func Flat(n int) []*model.Node {
	root := model.NewContainer("1", "root", model.KindFolder)
	root.Loaded = true
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("1.%d", i)
		root.Children = append(root.Children, model.NewLeaf(id, "leaf "+id, model.KindTable))
	}
	return []*model.Node{root}
}
