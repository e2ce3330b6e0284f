package executor

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/release"
	"github.com/membraneframework-labs/sebex/semver"
)

// fakeVCS is a minimal in-memory adapters.VCS good enough to drive every
// task to PROCEED without touching a real repository.
type fakeVCS struct {
	branches map[string]bool
	prs      map[string]*adapters.PullRequest
	merged   map[string]bool
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{branches: map[string]bool{}, prs: map[string]*adapters.PullRequest{}, merged: map[string]bool{}}
}

func (f *fakeVCS) IsDirty(ctx context.Context) (bool, error)                { return false, nil }
func (f *fakeVCS) IsTracked(ctx context.Context, path string) (bool, error)  { return true, nil }
func (f *fakeVCS) IsChanged(ctx context.Context, path string) (bool, error)  { return true, nil }
func (f *fakeVCS) BranchExists(ctx context.Context, branch string) (bool, error) {
	return f.branches[branch], nil
}
func (f *fakeVCS) Checkout(ctx context.Context, branch string, ensureClean, deleteExisting bool) error {
	f.branches[branch] = true
	return nil
}
func (f *fakeVCS) Commit(ctx context.Context, message string, files ...string) error { return nil }
func (f *fakeVCS) Tag(ctx context.Context, name, message string) error               { return nil }
func (f *fakeVCS) Push(ctx context.Context, ref adapters.PushRef) error              { return nil }
func (f *fakeVCS) Fetch(ctx context.Context) error                                   { return nil }
func (f *fakeVCS) Pull(ctx context.Context) error                                    { return nil }
func (f *fakeVCS) DeleteLocalBranch(ctx context.Context, branch string) error {
	delete(f.branches, branch)
	return nil
}
func (f *fakeVCS) DeleteRemoteBranch(ctx context.Context, branch string) error { return nil }
func (f *fakeVCS) FindPullRequest(ctx context.Context, branch string, filters adapters.PRFilters) (*adapters.PullRequest, error) {
	pr, ok := f.prs[branch]
	if !ok {
		return nil, nil
	}
	return pr, nil
}
func (f *fakeVCS) OpenPullRequest(ctx context.Context, title, body, branch, base string) (*adapters.PullRequest, error) {
	pr := &adapters.PullRequest{Number: len(f.prs) + 1, Mergeable: true, CombinedStatus: "success"}
	f.prs[branch] = pr
	return pr, nil
}
func (f *fakeVCS) MergePullRequest(ctx context.Context, pr *adapters.PullRequest) error {
	pr.Merged = true
	return nil
}
func (f *fakeVCS) CreateRelease(ctx context.Context, tag, message string) error { return nil }

type fakePublisher struct{}

func (fakePublisher) Publish(ctx context.Context, proj release.ProjectState) (bool, error) {
	return true, nil
}

func testProject(t *testing.T, manifestDir string) release.ProjectState {
	t.Helper()
	path := filepath.Join(manifestDir, "manifest.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`version = "1.0.0"
`), 0o644))
	return release.ProjectState{
		Project:     analysis.ProjectHandle{Repo: "acme"},
		FromVersion: semver.MustParse("1.0.0"),
		ToVersion:   semver.MustParse("1.1.0"),
		VersionSpan: analysis.Span{StartLine: 1, StartCol: 11, EndLine: 1, EndCol: 18},
		Language:    "go",
		Publish:     true,
		Stage:       release.Clean,
	}
}

func newTestEnv(t *testing.T, manifestDir string) (*Env, *fakeVCS) {
	vcs := newFakeVCS()
	env := &Env{
		VCS:           func(analysis.ProjectHandle) (adapters.VCS, error) { return vcs, nil },
		Publisher:     fakePublisher{},
		DefaultBranch: "main",
		ManifestPath: func(h analysis.ProjectHandle) string {
			return filepath.Join(manifestDir, "manifest.toml")
		},
		LockfilePath:   func(h analysis.ProjectHandle) string { return "" },
		UpdateLockfile: func(ctx context.Context, h analysis.ProjectHandle) (bool, error) { return false, nil },
		Confirm:        func(string) bool { return true },
	}
	return env, vcs
}

func TestExecutorDrivesProjectToDone(t *testing.T) {
	dir := t.TempDir()
	env, _ := newTestEnv(t, dir)

	state := &release.State{
		Sources: map[analysis.ProjectHandle]semver.Version{{Repo: "acme"}: semver.MustParse("1.1.0")},
		Phases:  []release.PhaseState{{Projects: []release.ProjectState{testProject(t, dir)}}},
	}

	ex := &Executor{Env: env}
	outcome, err := ex.Proceed(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, Finished, outcome)
	require.True(t, state.IsDone())

	data, err := ioutil.ReadFile(filepath.Join(dir, "manifest.toml"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"1.1.0"`)
}

// TestOpenReleaseBranchRefusesRemoteTrackedBranch: a release branch the remote already
// knows about must stop the executor at a BREAKPOINT instead of being
// blown away and recreated out from under whatever is riding on it.
func TestOpenReleaseBranchRefusesRemoteTrackedBranch(t *testing.T) {
	dir := t.TempDir()
	env, vcs := newTestEnv(t, dir)

	proj := testProject(t, dir)
	vcs.branches[releaseBranch(&proj)] = true

	state := &release.State{
		Sources: map[analysis.ProjectHandle]semver.Version{proj.Project: proj.ToVersion},
		Phases:  []release.PhaseState{{Projects: []release.ProjectState{proj}}},
	}

	ex := &Executor{Env: env}
	outcome, err := ex.Proceed(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, Stopped, outcome)
	require.Equal(t, release.BranchOpened, state.Phases[0].Projects[0].Stage)
}

// TestExecutorResumesFromPersistedStage: a release
// persisted with its sole project already at PULL_REQUEST_MERGED must
// resume at BRANCH_CLOSED once reloaded from disk, advance through
// PUBLISHED to DONE, and leave no release document behind.
func TestExecutorResumesFromPersistedStage(t *testing.T) {
	dir := t.TempDir()
	metaDir := filepath.Join(dir, ".sebex")
	require.NoError(t, os.MkdirAll(metaDir, 0o755))
	store := &release.Store{MetaDir: metaDir}

	proj := testProject(t, dir)
	proj.Stage = release.PullRequestMerged

	state := &release.State{
		Sources: map[analysis.ProjectHandle]semver.Version{proj.Project: proj.ToVersion},
		Phases:  []release.PhaseState{{Projects: []release.ProjectState{proj}}},
	}
	require.NoError(t, store.Save(state))

	env, vcs := newTestEnv(t, dir)
	vcs.prs[releaseBranch(&proj)] = &adapters.PullRequest{Number: 1, Merged: true}

	ex := &Executor{Store: store, Env: env}

	// Reload exactly as a restarted process would, then resume: the
	// document on disk is the only thing that tells Proceed where this
	// project actually stands.
	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, release.PullRequestMerged, loaded.Phases[0].Projects[0].Stage)

	outcome, err := ex.Proceed(context.Background(), loaded)
	require.NoError(t, err)
	require.Equal(t, Finished, outcome)
	require.True(t, loaded.IsDone())

	_, err = os.Stat(filepath.Join(metaDir, release.DocumentName))
	require.True(t, os.IsNotExist(err), "release document should be deleted once the release is DONE")
}
