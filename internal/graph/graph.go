// Package graph builds the directed document cross-reference graph.
package graph

import (
	"sort"

	"github.com/starford/doclint/internal/models"
)

// Edge is a directed reference from one document to another. Multiple
// mentions of the same target collapse into one edge carrying the count.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Mentions int    `json:"mentions"`
}

// Graph is an immutable snapshot of the corpus reference structure.
// Nodes are every loaded path, whether or not the file validated; edges
// exist only between nodes (mentions without a resolution never become
// edges, they are surfaced separately by the integrity checks).
type Graph struct {
	nodes    map[string]struct{}
	edges    []Edge
	inDegree map[string]int
}

// Build assembles the graph in a single pass from the loaded path set and
// the resolved mentions. The result is never mutated after construction.
func Build(paths []string, mentions []models.ReferenceMention) *Graph {
	g := &Graph{
		nodes:    make(map[string]struct{}, len(paths)),
		inDegree: make(map[string]int, len(paths)),
	}
	for _, p := range paths {
		g.nodes[p] = struct{}{}
		g.inDegree[p] = 0
	}

	counts := make(map[[2]string]int)
	for _, m := range mentions {
		if m.Resolution != models.ResolutionResolved {
			continue
		}
		if _, ok := g.nodes[m.ResolvedPath]; !ok {
			continue
		}
		counts[[2]string{m.SourcePath, m.ResolvedPath}]++
	}

	g.edges = make([]Edge, 0, len(counts))
	for key, n := range counts {
		g.edges = append(g.edges, Edge{Source: key[0], Target: key[1], Mentions: n})
		g.inDegree[key[1]]++
	}
	sort.Slice(g.edges, func(i, j int) bool {
		if g.edges[i].Source != g.edges[j].Source {
			return g.edges[i].Source < g.edges[j].Source
		}
		return g.edges[i].Target < g.edges[j].Target
	})
	return g
}

// Nodes returns all node paths, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Edges returns the edge list, sorted by source then target.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// InDegree returns the number of distinct referencing documents for path.
func (g *Graph) InDegree(path string) int {
	return g.inDegree[path]
}

// HasNode reports whether path is a node.
func (g *Graph) HasNode(path string) bool {
	_, ok := g.nodes[path]
	return ok
}

// Orphans returns nodes with zero inbound edges, excluding the given entry
// points. Cycles are not an error condition; only in-degree matters.
func (g *Graph) Orphans(entryPoints []string) []string {
	excluded := make(map[string]struct{}, len(entryPoints))
	for _, p := range entryPoints {
		excluded[p] = struct{}{}
	}
	var out []string
	for p := range g.nodes {
		if g.inDegree[p] != 0 {
			continue
		}
		if _, skip := excluded[p]; skip {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
