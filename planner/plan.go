// Package planner computes a release plan: given the set of source
// packages an operator wants released at specific versions, it works out
// every other managed package that must be bumped in sympathy, in what
// order, and which manifest requirements need patching to point at the
// new versions.
//
// There is no search involved: every target version is either pinned by
// the operator or computed deterministically from a bump, so planning is a
// single forward propagation over the dependents graph, settling on a
// fixed point in one pass.
package planner

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/depgraph"
	"github.com/membraneframework-labs/sebex/log"
	"github.com/membraneframework-labs/sebex/release"
	"github.com/membraneframework-labs/sebex/semver"
)

// ErrBackport is returned when a source's target version is lower than its
// current version; this system only ever plans forward releases.
var ErrBackport = errors.New("planner: target version is a downgrade")

// ErrUnsolvable is returned when propagation computes a bump that cannot
// be expressed on some project (see semver.Unsolvable).
var ErrUnsolvable = errors.New("planner: unsolvable version bump")

// Options controls optional planning behavior.
type Options struct {
	// UpdateObsolete additionally bumps dependents whose requirement is
	// already out of date (neither the old nor the new source version
	// satisfies it), even when the requirement's own coverage wouldn't
	// otherwise force a release. Off by default: most operators only want
	// to touch what a release actually breaks.
	UpdateObsolete bool

	// Log receives the planner's warnings (obsolete dependents, skipped
	// non-version requirements). Nil drops them.
	Log *log.Logger
}

// Source is one project the operator is explicitly releasing, at Target.
type Source struct {
	Project analysis.ProjectHandle
	Target  semver.Version
}

// node is the planner's working state for a single project, before
// pruning. One node exists per project reachable by phase-seeding or by
// bump propagation.
type node struct {
	handle  analysis.ProjectHandle
	pkg     string
	lang    analysis.Language
	from    semver.Version
	to      semver.Version
	span    analysis.Span
	bump    semver.Bump
	ignore  bool
	updates map[string]release.DependencyUpdate // dependency name -> update
}

// Plan computes a release.State from a set of sources against db and the
// dependents graph built from it. The numbered steps below run strictly in
// order: refuse downgrades, seed phases and targets, simulate
// already-released sources, propagate bumps, validate, sort, prune.
func Plan(sources []Source, db *analysis.Database, graph *depgraph.Graph, opts Options) (*release.State, error) {
	nodes := make(map[analysis.ProjectHandle]*node)
	var phaseHandles [][]analysis.ProjectHandle

	// Step 1: refuse downgrades. Step 2/3/4: seed phases, to_version, and
	// the "already released" simulation.
	for _, src := range sources {
		entry, ok := db.Entry(src.Project)
		if !ok {
			return nil, errors.Errorf("planner: unknown project %s", src.Project)
		}
		if src.Target.Less(entry.Version) {
			return nil, errors.Wrapf(ErrBackport, "%s: %s -> %s", src.Project, entry.Version, src.Target)
		}

		n := mkNode(db, src.Project, entry)
		n.to = src.Target
		// Simulate only when the target is genuinely already out: if the
		// manifest version matches but the registry has nothing published
		// under it yet (analysis.Entry.IsPublished is false), this source
		// hasn't actually released, so there is nothing to propagate to
		// dependents in sympathy with it; it is an honest no-op, not an
		// already-done release being re-specified.
		if entry.Version.Equal(src.Target) && entry.IsPublished {
			n.from = semver.PreviousVersion(src.Target)
			n.ignore = true
		}
		nodes[src.Project] = n

		// UpgradePhases' own first group is {entry.Package} alone: the node
		// for it already exists (just built above, with the
		// already-released simulation applied if needed), so the existence
		// check below leaves it untouched.
		for _, group := range graph.UpgradePhases(entry.Package) {
			handles := make([]analysis.ProjectHandle, 0, len(group))
			for _, pkg := range group {
				h, ok := db.HandleForPackage(pkg)
				if !ok {
					continue
				}
				if _, exists := nodes[h]; !exists {
					e, _ := db.Entry(h)
					gn := mkNode(db, h, e)
					gn.to = e.Version
					nodes[h] = gn
				}
				handles = append(handles, h)
			}
			if len(handles) > 0 {
				phaseHandles = append(phaseHandles, handles)
			}
		}
	}

	// Step 5: propagate bumps, dependency-to-dependent, phase order.
	// Warnings are deduplicated (a node revisited through a second source
	// re-walks the same edges) and surfaced once planning succeeds.
	var warnings []string
	seenWarnings := make(map[string]bool)
	warn := func(msg string) {
		if !seenWarnings[msg] {
			seenWarnings[msg] = true
			warnings = append(warnings, msg)
		}
	}
	for _, src := range sources {
		nodes[src.Project].bump = semver.Between(nodes[src.Project].from, nodes[src.Project].to)
	}

	for _, handles := range phaseHandles {
		for _, h := range handles {
			this := nodes[h]
			pkg := this.pkg
			dependents := graph.DependentsOf(pkg)
			names := make([]string, 0, len(dependents))
			for name := range dependents {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, depName := range names {
				edge := dependents[depName]
				depHandle, ok := db.HandleForPackage(depName)
				if !ok {
					continue
				}
				dependent, ok := nodes[depHandle]
				if !ok {
					e, _ := db.Entry(depHandle)
					dependent = mkNode(db, depHandle, e)
					dependent.to = e.Version
					nodes[depHandle] = dependent
				}

				if dependent.from.IsPrerelease() {
					continue
				}
				if !edge.VersionSpec.IsVersion() {
					warn("non-version requirement on " + depName + " -> " + pkg + ": skipped")
					continue
				}
				req := edge.VersionSpec.(semver.VersionRequirement)

				prevTo := semver.PreviousVersion(this.to)
				releaseNewVersion := (req.Match(this.from) || req.Match(prevTo)) && !req.Match(this.to)
				dependentIsObsolete := !req.Match(this.from) && !req.Match(this.to)
				updateDependent := opts.UpdateObsolete && dependentIsObsolete && this.bump != semver.StayAsIs

				// Every dependent rides along with its upstream's bump,
				// derived down to what it induces on the dependent,
				// regardless of whether the dependent's own requirement
				// still covers the new version (Between is StayAsIs for an
				// upstream that isn't moving, so this is a no-op then).
				// Whether the requirement itself needs patching is a
				// separate question, decided below.
				required := semver.Between(this.from, this.to).Derive(this.from.Major() == 0)
				if updateDependent && semver.Minor > required {
					required = semver.Minor
				}
				dependent.bump = semver.Max(dependent.bump, required)
				if seeded, ok := findSource(sources, depHandle); ok {
					dependent.to = seeded.Target
				} else {
					dependent.to = dependent.bump.Apply(dependent.from)
				}

				if releaseNewVersion || updateDependent {
					if dependent.updates == nil {
						dependent.updates = make(map[string]release.DependencyUpdate)
					}
					dependent.updates[pkg] = release.DependencyUpdate{
						Name:       pkg,
						FromSpec:   edge.VersionSpec,
						ToSpec:     semver.Targeting(this.to),
						ToSpecSpan: edge.VersionSpecSpan,
					}
				}

				if dependentIsObsolete {
					warn(depName + ": already out of date against " + pkg)
				}
			}
		}
	}

	// Step 6: validate. Handles are checked in sorted order so the same
	// broken input always names the same project in its error.
	checkOrder := make([]analysis.ProjectHandle, 0, len(nodes))
	for h := range nodes {
		checkOrder = append(checkOrder, h)
	}
	sort.Slice(checkOrder, func(i, j int) bool { return checkOrder[i].String() < checkOrder[j].String() })
	for _, h := range checkOrder {
		if nodes[h].bump == semver.Unsolvable {
			return nil, errors.Wrapf(ErrUnsolvable, "%s", h)
		}
	}

	if opts.Log != nil {
		for _, w := range warnings {
			opts.Log.Warnfln("%s", w)
		}
	}

	// Step 7/8: sort dependency_updates, prune no-ops/ignored, drop empty
	// phases, build the final State.
	//
	// Multiple sources can seed overlapping dependent chains; a project
	// reachable from more than one source is kept only in the last phase it
	// was placed in, so the "each project appears at most once" invariant
	// holds even though phase-seeding concatenates per-source traversals.
	lastIndex := make(map[analysis.ProjectHandle]int)
	for i, handles := range phaseHandles {
		for _, h := range handles {
			lastIndex[h] = i
		}
	}

	state := &release.State{Sources: make(map[analysis.ProjectHandle]semver.Version, len(sources))}
	for _, src := range sources {
		state.Sources[src.Project] = src.Target
	}

	for i, handles := range phaseHandles {
		var projects []release.ProjectState
		for _, h := range handles {
			if lastIndex[h] != i {
				continue
			}
			n := nodes[h]
			if n.ignore || n.from.Equal(n.to) {
				continue
			}
			projects = append(projects, toProjectState(n))
		}
		if len(projects) > 0 {
			state.Phases = append(state.Phases, release.PhaseState{Projects: projects})
		}
	}

	return state, nil
}

func mkNode(db *analysis.Database, h analysis.ProjectHandle, entry analysis.Entry) *node {
	lang, _ := db.Language(h)
	return &node{
		handle: h,
		pkg:    entry.Package,
		lang:   lang,
		from:   entry.Version,
		to:     entry.Version,
		span:   entry.VersionSpan,
		bump:   semver.StayAsIs,
	}
}

func findSource(sources []Source, h analysis.ProjectHandle) (Source, bool) {
	for _, s := range sources {
		if s.Project == h {
			return s, true
		}
	}
	return Source{}, false
}

func toProjectState(n *node) release.ProjectState {
	names := make([]string, 0, len(n.updates))
	for name := range n.updates {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make([]release.DependencyUpdate, 0, len(names))
	for _, name := range names {
		updates = append(updates, n.updates[name])
	}

	return release.ProjectState{
		Project:           n.handle,
		FromVersion:       n.from,
		ToVersion:         n.to,
		VersionSpan:       n.span,
		Language:          n.lang,
		Publish:           true,
		DependencyUpdates: updates,
		Stage:             release.Clean,
	}
}
