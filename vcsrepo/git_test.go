package vcsrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/membraneframework-labs/sebex/adapters"
)

// runGit shells out to git directly to set up fixtures: a local bare
// "remote" and a clone of it, so the workflow tests never touch the
// network.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// newTestRepo creates a bare "remote" repo and a working clone of it, with
// one initial commit on main so Checkout/Commit/Tag/Push have something to
// operate against.
func newTestRepo(t *testing.T) (clonePath string) {
	t.Helper()
	base := t.TempDir()
	remote := filepath.Join(base, "remote.git")
	clone := filepath.Join(base, "work")

	require.NoError(t, os.MkdirAll(remote, 0o755))
	runGit(t, remote, "init", "--bare", "-b", "main")

	runGit(t, base, "clone", remote, clone)
	runGit(t, clone, "config", "user.email", "test@example.com")
	runGit(t, clone, "config", "user.name", "Test")
	require.NoError(t, os.WriteFile(filepath.Join(clone, "manifest.toml"), []byte("version = \"1.0.0\"\n"), 0o644))
	runGit(t, clone, "add", "-A")
	runGit(t, clone, "commit", "-m", "initial")
	runGit(t, clone, "push", "origin", "main")

	return clone
}

func TestGitRepoReleaseWorkflow(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()

	repo, err := New("", dir)
	require.NoError(t, err)

	dirty, err := repo.IsDirty(ctx)
	require.NoError(t, err)
	require.False(t, dirty)

	exists, err := repo.BranchExists(ctx, "release/v1.1.0")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.Checkout(ctx, "release/v1.1.0", true, true))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte("version = \"1.1.0\"\n"), 0o644))
	require.NoError(t, repo.Commit(ctx, "bump to 1.1.0", "manifest.toml"))

	// Committing again with nothing changed must be a no-op, not an error:
	// the executor relies on this for safe re-runs after a kill.
	require.NoError(t, repo.Commit(ctx, "bump to 1.1.0", "manifest.toml"))

	require.NoError(t, repo.Push(ctx, adapters.PushRef{Branch: "release/v1.1.0"}))

	exists, err = repo.BranchExists(ctx, "release/v1.1.0")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, repo.Checkout(ctx, "main", true, false))
	require.NoError(t, repo.Pull(ctx))

	require.NoError(t, repo.DeleteRemoteBranch(ctx, "release/v1.1.0"))
	require.NoError(t, repo.DeleteLocalBranch(ctx, "release/v1.1.0"))

	require.NoError(t, repo.Tag(ctx, "v1.1.0", "Release 1.1.0"))
	require.NoError(t, repo.Push(ctx, adapters.PushRef{Tag: "v1.1.0"}))

	// Re-tagging the same name must succeed (idempotent retry).
	require.NoError(t, repo.Tag(ctx, "v1.1.0", "Release 1.1.0"))
}

func TestGitRepoHostingRequiresConfiguration(t *testing.T) {
	dir := newTestRepo(t)
	repo, err := New("", dir)
	require.NoError(t, err)

	_, err = repo.FindPullRequest(context.Background(), "release/v1.1.0", adapters.PRFilters{})
	require.Error(t, err)
}
