package depgraph

import "sort"

// UpgradePhases computes the depth-ordered release phases for a seed
// package: phase 0 is the seed itself, and each following phase groups the
// dependents encountered at that depth: a DFS from the seed records the
// *maximum* depth at which each reachable dependent is encountered, nodes
// are grouped by depth, and the groups are returned in ascending depth
// order after the seed's own phase.
//
// Using maximum depth (rather than minimum) ensures a node only appears in
// the last phase where all of its own dependencies have already been
// released; a node reachable from the seed via both a short and a long
// path must wait for the long path to clear.
func (g *Graph) UpgradePhases(seed string) [][]string {
	// Longest-path-from-source over a DAG: collect the reachable subgraph
	// in reverse-postorder (a valid topological order here, since the whole
	// graph is already known to be acyclic), then relax depths forward
	// along that order. A naive DFS that recurses on every edge would
	// revisit shared descendants once per incoming path and blow up
	// exponentially on diamond-shaped dependency graphs.
	var topo []string
	visited := make(map[string]bool)

	var order func(pkg string)
	order = func(pkg string) {
		visited[pkg] = true
		for _, next := range g.sortedDependentNames(pkg) {
			if !visited[next] {
				order(next)
			}
		}
		topo = append(topo, pkg)
	}
	order(seed)

	// topo is currently in postorder; reverse it to get topological order.
	for i, j := 0, len(topo)-1; i < j; i, j = i+1, j-1 {
		topo[i], topo[j] = topo[j], topo[i]
	}

	depths := make(map[string]int)
	depths[seed] = 0
	for _, pkg := range topo {
		for _, next := range g.sortedDependentNames(pkg) {
			if d := depths[pkg] + 1; d > depths[next] {
				depths[next] = d
			}
		}
	}
	delete(depths, seed)

	phases := [][]string{{seed}}
	if len(depths) == 0 {
		return phases
	}

	byDepth := make(map[int][]string)
	maxDepth := 0
	for pkg, d := range depths {
		byDepth[d] = append(byDepth[d], pkg)
		if d > maxDepth {
			maxDepth = d
		}
	}

	for d := 1; d <= maxDepth; d++ {
		group := byDepth[d]
		if len(group) == 0 {
			continue
		}
		sort.Strings(group)
		phases = append(phases, group)
	}
	return phases
}
