package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/depgraph"
	"github.com/membraneframework-labs/sebex/release"
	"github.com/membraneframework-labs/sebex/semver"
)

type fixtureProject struct {
	pkg       string
	version   string
	deps      map[string]string // dep package name -> requirement string
	published bool
}

func buildFixture(t *testing.T, projects ...fixtureProject) (*analysis.Database, *depgraph.Graph) {
	t.Helper()

	handles := make([]analysis.ProjectHandle, 0, len(projects))
	langs := make([]analysis.Language, 0, len(projects))
	entries := make([]analysis.Entry, 0, len(projects))

	for _, p := range projects {
		var deps []analysis.Dependency
		for name, reqStr := range p.deps {
			req, err := semver.ParseVersionRequirement(reqStr)
			require.NoError(t, err)
			deps = append(deps, analysis.Dependency{
				Name:            name,
				DefinedIn:       p.pkg,
				VersionSpec:     req,
				VersionSpecSpan: analysis.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 10},
			})
		}
		handles = append(handles, analysis.ProjectHandle{Repo: p.pkg})
		langs = append(langs, "go")
		entries = append(entries, analysis.Entry{
			Package:      p.pkg,
			Version:      semver.MustParse(p.version),
			Dependencies: deps,
			IsPublished:  p.published,
		})
	}

	db, err := analysis.NewDatabase(handles, langs, entries)
	require.NoError(t, err)
	graph, err := depgraph.BuildDependentsGraph(db)
	require.NoError(t, err)
	return db, graph
}

func findProject(state *release.State, pkg string) (release.ProjectState, bool) {
	h := analysis.ProjectHandle{Repo: pkg}
	p, ok := state.GetProject(h)
	if !ok {
		return release.ProjectState{}, false
	}
	return *p, true
}

func TestPlanChainPatchRelease(t *testing.T) {
	// A->B: releasing A at a patch leaves B's "~> 1.0" requirement intact.
	db, graph := buildFixture(t,
		fixtureProject{pkg: "A", version: "1.0.0"},
		fixtureProject{pkg: "B", version: "1.0.0", deps: map[string]string{"A": "~> 1.0"}},
	)

	state, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("1.0.1")}}, db, graph, Options{})
	require.NoError(t, err)
	require.Len(t, state.Phases, 2)

	a, ok := findProject(state, "A")
	require.True(t, ok)
	assert.Equal(t, "1.0.1", a.ToVersion.String())

	b, ok := findProject(state, "B")
	require.True(t, ok)
	assert.Equal(t, "1.0.1", b.ToVersion.String())
	assert.Empty(t, b.DependencyUpdates)
}

func TestPlanChainMajorRelease(t *testing.T) {
	db, graph := buildFixture(t,
		fixtureProject{pkg: "A", version: "1.0.0"},
		fixtureProject{pkg: "B", version: "1.0.0", deps: map[string]string{"A": "~> 1.0"}},
	)

	state, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("2.0.0")}}, db, graph, Options{})
	require.NoError(t, err)

	b, ok := findProject(state, "B")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", b.ToVersion.String())
	require.Len(t, b.DependencyUpdates, 1)
	assert.Equal(t, "A", b.DependencyUpdates[0].Name)
	assert.Equal(t, "~> 2.0", b.DependencyUpdates[0].ToSpec.String())
}

func TestPlanTriangle(t *testing.T) {
	// A's requirement on B is patch-pinned ("~> 1.0.0"), so B's own
	// minor-level bump (induced from C's major release) still forces an
	// update; the requirements on C use the broader major-pinned form.
	db, graph := buildFixture(t,
		fixtureProject{pkg: "A", version: "1.0.0", deps: map[string]string{"B": "~> 1.0.0", "C": "~> 1.0"}},
		fixtureProject{pkg: "B", version: "1.0.0", deps: map[string]string{"C": "~> 1.0"}},
		fixtureProject{pkg: "C", version: "1.0.0"},
	)

	state, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "C"}, Target: semver.MustParse("2.0.0")}}, db, graph, Options{})
	require.NoError(t, err)
	require.Len(t, state.Phases, 3)

	b, ok := findProject(state, "B")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", b.ToVersion.String())

	a, ok := findProject(state, "A")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", a.ToVersion.String())
	require.Len(t, a.DependencyUpdates, 2)
	assert.Equal(t, "B", a.DependencyUpdates[0].Name)
	assert.Equal(t, "~> 1.1", a.DependencyUpdates[0].ToSpec.String())
	assert.Equal(t, "C", a.DependencyUpdates[1].Name)
	assert.Equal(t, "~> 2.0", a.DependencyUpdates[1].ToSpec.String())
}

func TestPlanDerivesTightlyForPreV1Dependency(t *testing.T) {
	// A is still pre-1.0: a minor bump on it must induce a minor (not
	// patch) bump on B, per the derivation table's "dependency major == 0"
	// column (everything is tight below 1.0).
	db, graph := buildFixture(t,
		fixtureProject{pkg: "A", version: "0.1.0"},
		fixtureProject{pkg: "B", version: "1.0.0", deps: map[string]string{"A": "~> 0.1.0"}},
	)

	state, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("0.2.0")}}, db, graph, Options{})
	require.NoError(t, err)

	b, ok := findProject(state, "B")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", b.ToVersion.String())
	require.Len(t, b.DependencyUpdates, 1)
	assert.Equal(t, "A", b.DependencyUpdates[0].Name)
	assert.Equal(t, "~> 0.2.0", b.DependencyUpdates[0].ToSpec.String())
}

func TestPlanSkipsPrereleaseDependent(t *testing.T) {
	db, graph := buildFixture(t,
		fixtureProject{pkg: "A", version: "1.0.0"},
		fixtureProject{pkg: "X", version: "0.1.0-dev", deps: map[string]string{"A": "~> 1.0"}},
	)

	state, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("2.0.0")}}, db, graph, Options{})
	require.NoError(t, err)

	_, ok := findProject(state, "X")
	assert.False(t, ok, "prerelease dependent must not appear in the plan")
}

func TestPlanReleasingAtCurrentVersionIsEmpty(t *testing.T) {
	db, graph := buildFixture(t, fixtureProject{pkg: "A", version: "1.0.0"})

	state, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("1.0.0")}}, db, graph, Options{})
	require.NoError(t, err)
	assert.Empty(t, state.Phases)
}

func TestPlanAlreadyReleasedSourcePropagatesOnlyWhenPublished(t *testing.T) {
	// A is already at its target version. If the registry confirms it was
	// actually published, re-specifying it as a source must still cascade
	// the implied bump to B. If it wasn't (the manifest moved but nothing
	// shipped), there is nothing to cascade and B is left untouched.
	db, graph := buildFixture(t,
		fixtureProject{pkg: "A", version: "1.0.1", published: false},
		fixtureProject{pkg: "B", version: "1.0.0", deps: map[string]string{"A": "~> 1.0.0"}},
	)
	state, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("1.0.1")}}, db, graph, Options{})
	require.NoError(t, err)
	_, ok := findProject(state, "B")
	assert.False(t, ok, "unpublished already-at-target source must not cascade to dependents")

	db, graph = buildFixture(t,
		fixtureProject{pkg: "A", version: "1.0.1", published: true},
		fixtureProject{pkg: "B", version: "1.0.0", deps: map[string]string{"A": "~> 1.0.0"}},
	)
	state, err = Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("1.0.1")}}, db, graph, Options{})
	require.NoError(t, err)
	b, ok := findProject(state, "B")
	require.True(t, ok, "published already-at-target source must still cascade to dependents")
	assert.Equal(t, "1.0.1", b.ToVersion.String())
}

func TestPlanRefusesDowngrade(t *testing.T) {
	db, graph := buildFixture(t, fixtureProject{pkg: "A", version: "2.0.0"})

	_, err := Plan([]Source{{Project: analysis.ProjectHandle{Repo: "A"}, Target: semver.MustParse("1.0.0")}}, db, graph, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackport)
}

func TestPlanDetectsCycleAtGraphBuildTime(t *testing.T) {
	_, err := buildFixtureErr(t,
		fixtureProject{pkg: "A", version: "1.0.0", deps: map[string]string{"B": "~> 1.0"}},
		fixtureProject{pkg: "B", version: "1.0.0", deps: map[string]string{"C": "~> 1.0"}},
		fixtureProject{pkg: "C", version: "1.0.0", deps: map[string]string{"A": "~> 1.0"}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, depgraph.ErrCycle)
}

func buildFixtureErr(t *testing.T, projects ...fixtureProject) (*depgraph.Graph, error) {
	t.Helper()
	handles := make([]analysis.ProjectHandle, 0, len(projects))
	langs := make([]analysis.Language, 0, len(projects))
	entries := make([]analysis.Entry, 0, len(projects))
	for _, p := range projects {
		var deps []analysis.Dependency
		for name, reqStr := range p.deps {
			req, err := semver.ParseVersionRequirement(reqStr)
			require.NoError(t, err)
			deps = append(deps, analysis.Dependency{Name: name, DefinedIn: p.pkg, VersionSpec: req})
		}
		handles = append(handles, analysis.ProjectHandle{Repo: p.pkg})
		langs = append(langs, "go")
		entries = append(entries, analysis.Entry{Package: p.pkg, Version: semver.MustParse(p.version), Dependencies: deps})
	}
	db, err := analysis.NewDatabase(handles, langs, entries)
	require.NoError(t, err)
	return depgraph.BuildDependentsGraph(db)
}
