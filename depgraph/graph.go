// Package depgraph builds and queries the dependents graph: the inversion
// of the direct "this package depends on that package" relation, used to
// compute the order in which affected packages must be released.
package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/analysis"
)

// ErrCycle is wrapped by the error BuildDependentsGraph returns when the
// managed-package dependency relation contains a cycle.
var ErrCycle = errors.New("dependency cycle detected")

// Graph is the inverted dependency relation: Graph.adj[P] holds every
// managed package D such that D depends on P, together with the Dependency
// record describing that edge.
//
// Invariant: acyclic (enforced at construction time).
type Graph struct {
	// adj[pkg][dependentPkg] = the Dependency edge from dependentPkg to pkg.
	adj map[string]map[string]analysis.Dependency
}

// BuildDependentsGraph inverts the direct-dependency relation found in db,
// restricting edges to packages managed by db (external dependencies never
// appear as graph nodes, only as skipped edges), then verifies the result
// is acyclic.
func BuildDependentsGraph(db *analysis.Database) (*Graph, error) {
	g := &Graph{adj: make(map[string]map[string]analysis.Dependency)}

	for _, h := range db.Handles() {
		entry, _ := db.Entry(h)
		// Ensure every managed package has a node, even with no dependents yet.
		if _, ok := g.adj[entry.Package]; !ok {
			g.adj[entry.Package] = make(map[string]analysis.Dependency)
		}
		for _, dep := range entry.Dependencies {
			if !db.HasPackage(dep.Name) {
				continue
			}
			if _, ok := g.adj[dep.Name]; !ok {
				g.adj[dep.Name] = make(map[string]analysis.Dependency)
			}
			g.adj[dep.Name][entry.Package] = dep
		}
	}

	if path := g.findCycle(); path != nil {
		return nil, errors.Wrap(ErrCycle, strings.Join(path, "→"))
	}

	return g, nil
}

// DependentsOf returns, for pkg, a mapping from each dependent package's
// name to the Dependency record describing the edge from that dependent to
// pkg, used by the planner to locate the exact span to patch.
func (g *Graph) DependentsOf(pkg string) map[string]analysis.Dependency {
	out := make(map[string]analysis.Dependency, len(g.adj[pkg]))
	for k, v := range g.adj[pkg] {
		out[k] = v
	}
	return out
}

// HasPackage reports whether pkg is a node in the graph.
func (g *Graph) HasPackage(pkg string) bool {
	_, ok := g.adj[pkg]
	return ok
}

// Packages returns all package names in the graph, sorted.
func (g *Graph) Packages() []string {
	out := make([]string, 0, len(g.adj))
	for k := range g.adj {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortedDependentNames returns the names of pkg's direct dependents, sorted,
// for deterministic traversal.
func (g *Graph) sortedDependentNames(pkg string) []string {
	names := make([]string, 0, len(g.adj[pkg]))
	for name := range g.adj[pkg] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findCycle runs a DFS with an explicit stack over the graph and returns
// the first cycle it finds as a path of package names a→b→…→a, or nil if
// the graph is acyclic.
func (g *Graph) findCycle() []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)
	color := make(map[string]int, len(g.adj))
	var stack []string

	var visit func(pkg string) []string
	visit = func(pkg string) []string {
		color[pkg] = gray
		stack = append(stack, pkg)

		for _, next := range g.sortedDependentNames(pkg) {
			switch color[next] {
			case white:
				if cyc := visit(next); cyc != nil {
					return cyc
				}
			case gray:
				// Found the back-edge closing a cycle: slice the stack from
				// next's first occurrence and close the loop.
				for i, p := range stack {
					if p == next {
						cyc := append([]string{}, stack[i:]...)
						cyc = append(cyc, next)
						return cyc
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[pkg] = black
		return nil
	}

	for _, pkg := range g.Packages() {
		if color[pkg] == white {
			if cyc := visit(pkg); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%d packages)", len(g.adj))
}
