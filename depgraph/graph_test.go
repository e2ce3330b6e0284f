package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/semver"
)

func dep(name, definedIn string) analysis.Dependency {
	req, _ := semver.ParseVersionRequirement("~> 1.0")
	return analysis.Dependency{Name: name, DefinedIn: definedIn, VersionSpec: req}
}

func buildDB(t *testing.T, pkgDeps map[string][]string) *analysis.Database {
	t.Helper()
	handles := make([]analysis.ProjectHandle, 0, len(pkgDeps))
	langs := make([]analysis.Language, 0, len(pkgDeps))
	entries := make([]analysis.Entry, 0, len(pkgDeps))
	for pkg, deps := range pkgDeps {
		var ds []analysis.Dependency
		for _, d := range deps {
			ds = append(ds, dep(d, pkg))
		}
		handles = append(handles, analysis.ProjectHandle{Repo: pkg})
		langs = append(langs, "go")
		entries = append(entries, analysis.Entry{
			Package:      pkg,
			Version:      semver.MustParse("1.0.0"),
			Dependencies: ds,
		})
	}
	db, err := analysis.NewDatabase(handles, langs, entries)
	require.NoError(t, err)
	return db
}

func TestInversion(t *testing.T) {
	// A depends on B: edge should appear as B -> {A}.
	db := buildDB(t, map[string][]string{
		"A": {"B"},
		"B": nil,
	})
	g, err := BuildDependentsGraph(db)
	require.NoError(t, err)

	dependents := g.DependentsOf("B")
	_, ok := dependents["A"]
	assert.True(t, ok)
}

func TestCycleDetection(t *testing.T) {
	db := buildDB(t, map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
	})
	_, err := BuildDependentsGraph(db)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestUpgradePhasesChain(t *testing.T) {
	// A -> B -> C (A depends on B, B depends on C). Releasing C should
	// place C itself in phase 0, B in phase 1 and A in phase 2.
	db := buildDB(t, map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": nil,
	})
	g, err := BuildDependentsGraph(db)
	require.NoError(t, err)

	phases := g.UpgradePhases("C")
	require.Len(t, phases, 3)
	assert.Equal(t, []string{"C"}, phases[0])
	assert.Equal(t, []string{"B"}, phases[1])
	assert.Equal(t, []string{"A"}, phases[2])
}

func TestUpgradePhasesDiamondUsesMaxDepth(t *testing.T) {
	// Triangle: A depends on B and C; B depends on C. Releasing C should
	// place C itself in phase 0, B in phase 1 and A in phase 2 (A must wait
	// for B, even though A
	// is also directly reachable from C at depth 1).
	db := buildDB(t, map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": nil,
	})
	g, err := BuildDependentsGraph(db)
	require.NoError(t, err)

	phases := g.UpgradePhases("C")
	require.Len(t, phases, 3)
	assert.Equal(t, []string{"C"}, phases[0])
	assert.Equal(t, []string{"B"}, phases[1])
	assert.Equal(t, []string{"A"}, phases[2])
}

func TestUpgradePhasesOrderingProperty(t *testing.T) {
	// For all (u,v) with v reachable from u, phase_index(v) > phase_index(u).
	db := buildDB(t, map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": nil,
	})
	g, err := BuildDependentsGraph(db)
	require.NoError(t, err)

	phases := g.UpgradePhases("D")
	index := make(map[string]int)
	for i, group := range phases {
		for _, pkg := range group {
			index[pkg] = i
		}
	}
	assert.Less(t, index["B"], index["A"])
	assert.Less(t, index["C"], index["A"])
}

func TestUpgradePhasesNoDependents(t *testing.T) {
	db := buildDB(t, map[string][]string{"A": nil})
	g, err := BuildDependentsGraph(db)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}}, g.UpgradePhases("A"))
}

func TestUpgradePhasesAcrossSharedDependents(t *testing.T) {
	// b->a, b->f, c->a, c->b, d->b, f->a, g->f (X->Y means X depends on Y).
	// A node reachable at more than one depth settles on the deepest.
	db := buildDB(t, map[string][]string{
		"a": nil,
		"b": {"a", "f"},
		"c": {"a", "b"},
		"d": {"b"},
		"f": {"a"},
		"g": {"f"},
	})
	g, err := BuildDependentsGraph(db)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a"}, {"f"}, {"b", "g"}, {"c", "d"}}, g.UpgradePhases("a"))
	assert.Equal(t, [][]string{{"b"}, {"c", "d"}}, g.UpgradePhases("b"))
	assert.Equal(t, [][]string{{"f"}, {"b", "g"}, {"c", "d"}}, g.UpgradePhases("f"))
}
