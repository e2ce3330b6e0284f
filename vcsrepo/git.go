// Package vcsrepo is the default adapters.VCS implementation: a git driver
// built on github.com/Masterminds/vcs's GitRepo for the read-only facts
// (IsDirty, Branches, Tags, Get/Update) it already knows how to get right,
// plus direct git subprocess invocations for the release-branch workflow
// (create, commit, tag, push, delete) that a dependency-fetching library
// has no reason to expose.
package vcsrepo

import (
	"context"
	"strings"

	"github.com/Masterminds/vcs"
	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
)

// Canary: GitRepo must satisfy the full adapters.VCS contract.
var _ adapters.VCS = &GitRepo{}

// GitRepo drives one checked-out git repository through the release
// workflow: branch, commit, tag, push, pull request, release.
type GitRepo struct {
	repo       *vcs.GitRepo
	remoteName string
	hosting    *githubHosting
}

// New wraps an already-cloned repository at local, whose origin is remote.
// remote may be empty if the local checkout's existing "origin" is to be
// trusted; Masterminds/vcs only uses it for the initial Get(). The returned
// repo has no hosting API access; FindPullRequest/OpenPullRequest/
// MergePullRequest/CreateRelease all fail until WithHosting is called.
func New(remote, local string) (*GitRepo, error) {
	r, err := vcs.NewGitRepo(remote, local)
	if err != nil {
		return nil, errors.Wrapf(err, "vcsrepo: open git repo at %s", local)
	}
	return &GitRepo{repo: r, remoteName: "origin"}, nil
}

// WithHosting attaches GitHub-shaped pull-request and release hosting to
// an already-opened repo, addressing owner/repo on apiBaseURL
// (e.g. "https://api.github.com") and authenticating with token.
func (g *GitRepo) WithHosting(apiBaseURL, owner, repo, token string) *GitRepo {
	g.hosting = newGitHubHosting(apiBaseURL, owner, repo, token)
	return g
}

func (g *GitRepo) dir() string { return g.repo.LocalPath() }

func (g *GitRepo) run(ctx context.Context, args ...string) (string, error) {
	c := commandContext(ctx, g.dir(), "git", args...)
	out, err := c.CombinedOutput()
	return string(out), err
}

// IsDirty reports whether the working tree has uncommitted changes.
// Masterminds/vcs's GitRepo.IsDirty already implements exactly this via
// "git status --porcelain", so it is used directly rather than reimplemented.
func (g *GitRepo) IsDirty(ctx context.Context) (bool, error) {
	return g.repo.IsDirty(), nil
}

// IsTracked reports whether path is tracked by git at all (present in the
// index), independent of whether it currently has local modifications.
func (g *GitRepo) IsTracked(ctx context.Context, path string) (bool, error) {
	_, err := g.run(ctx, "ls-files", "--error-unmatch", "--", path)
	if err == nil {
		return true, nil
	}
	if exitCode(err) == 1 {
		return false, nil
	}
	return false, errors.Wrapf(err, "ls-files %s", path)
}

// IsChanged reports whether path differs from HEAD, staged or not.
func (g *GitRepo) IsChanged(ctx context.Context, path string) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain", "--", path)
	if err != nil {
		return false, errors.Wrapf(err, "status %s", path)
	}
	return strings.TrimSpace(out) != "", nil
}

// BranchExists reports whether branch is already present on the remote.
// This deliberately does not consult the local ref: OpenReleaseBranch
// always clears a stale local branch itself (Checkout's deleteExisting),
// so a purely local leftover from a prior, interrupted attempt must not
// trip this check. Only a branch the remote already knows about means
// someone (a previous run that got as far as pushing, or another
// operator) has real state riding on it.
func (g *GitRepo) BranchExists(ctx context.Context, branch string) (bool, error) {
	out, err := g.run(ctx, "ls-remote", "--exit-code", "--heads", g.remoteName, branch)
	if err != nil {
		if exitCode(err) == 2 {
			return false, nil
		}
		return false, errors.Wrapf(err, "ls-remote %s", branch)
	}
	return strings.TrimSpace(out) != "", nil
}

// Checkout switches to branch, creating it from the current HEAD if it
// doesn't exist yet. ensureClean refuses a dirty working tree rather than
// silently stashing or discarding changes; deleteExisting drops any stale
// local branch of the same name first, so opening a release branch is safe
// to rerun after a prior attempt was killed mid-task.
func (g *GitRepo) Checkout(ctx context.Context, branch string, ensureClean, deleteExisting bool) error {
	if ensureClean {
		dirty, err := g.IsDirty(ctx)
		if err != nil {
			return err
		}
		if dirty {
			return adapters.ErrNotClean
		}
	}

	if deleteExisting {
		// Best effort: branch may not exist locally yet, or may be the
		// branch currently checked out, in which case git refuses the
		// delete and this is harmlessly ignored. -B below then (re)creates
		// it fresh from the current HEAD.
		g.run(ctx, "checkout", g.defaultRef(ctx))
		g.run(ctx, "branch", "-D", branch)

		if _, err := g.run(ctx, "checkout", "-B", branch); err != nil {
			return errors.Wrapf(err, "checkout -B %s", branch)
		}
		return nil
	}

	// Not opening a fresh branch: switch to whatever branch already exists
	// without resetting it, falling back to creating it if it doesn't.
	if _, err := g.run(ctx, "checkout", branch); err != nil {
		if _, err := g.run(ctx, "checkout", "-b", branch); err != nil {
			return errors.Wrapf(err, "checkout %s", branch)
		}
	}
	return nil
}

// defaultRef returns the branch to land on before deleting branch, so a
// delete of the currently-checked-out branch never fails. HEAD is
// sufficient: git refuses to delete the branch it's already on, but
// checking out HEAD detached first sidesteps that without assuming which
// branch is "default".
func (g *GitRepo) defaultRef(ctx context.Context) string {
	out, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "HEAD"
	}
	return strings.TrimSpace(out)
}

// Commit stages files (or everything changed, if none are given) and
// commits them. A commit with nothing staged is treated as a no-op success:
// retrying OpenReleaseBranch after a kill between patching the manifest and
// committing it must not fail just because the prior attempt already
// committed the same change.
func (g *GitRepo) Commit(ctx context.Context, message string, files ...string) error {
	if len(files) == 0 {
		if _, err := g.run(ctx, "add", "-A"); err != nil {
			return errors.Wrap(err, "add -A")
		}
	} else {
		args := append([]string{"add", "--"}, files...)
		if _, err := g.run(ctx, args...); err != nil {
			return errors.Wrapf(err, "add %v", files)
		}
	}

	out, err := g.run(ctx, "commit", "-m", message)
	if err != nil {
		if strings.Contains(out, "nothing to commit") {
			return nil
		}
		return errors.Wrapf(err, "commit: %s", strings.TrimSpace(out))
	}
	return nil
}

// Tag creates an annotated tag, replacing any existing tag of the same
// name so a retried CloseReleaseBranch is idempotent.
func (g *GitRepo) Tag(ctx context.Context, name, message string) error {
	if _, err := g.run(ctx, "tag", "-f", "-a", name, "-m", message); err != nil {
		return errors.Wrapf(err, "tag %s", name)
	}
	return nil
}

// Push pushes exactly one of ref.Branch or ref.Tag to the remote.
func (g *GitRepo) Push(ctx context.Context, ref adapters.PushRef) error {
	args := []string{"push"}
	if ref.Force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, g.remoteName)

	switch {
	case ref.Branch != "":
		args = append(args, ref.Branch)
	case ref.Tag != "":
		args = append(args, "refs/tags/"+ref.Tag)
	default:
		return errors.New("vcsrepo: push requires a branch or tag")
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		if isPushRejected(out) {
			return adapters.ErrPushRejected
		}
		return errors.Wrapf(err, "push: %s", strings.TrimSpace(out))
	}
	return nil
}

// Fetch updates remote-tracking refs without touching the working tree.
func (g *GitRepo) Fetch(ctx context.Context) error {
	if _, err := g.run(ctx, "fetch", "--tags", "--prune", g.remoteName); err != nil {
		return errors.Wrap(err, "fetch")
	}
	return nil
}

// Pull fast-forwards the current branch from its upstream.
func (g *GitRepo) Pull(ctx context.Context) error {
	if _, err := g.run(ctx, "pull", "--ff-only", g.remoteName); err != nil {
		return errors.Wrap(err, "pull")
	}
	return nil
}

// DeleteLocalBranch removes a local branch. Absence is reported as
// adapters.ErrRemoteRefNotFound, which the BRANCH_CLOSED task ignores on a
// rerun.
func (g *GitRepo) DeleteLocalBranch(ctx context.Context, branch string) error {
	out, err := g.run(ctx, "branch", "-D", branch)
	if err != nil {
		if isRefNotFound(out) {
			return adapters.ErrRemoteRefNotFound
		}
		return errors.Wrapf(err, "branch -D %s: %s", branch, strings.TrimSpace(out))
	}
	return nil
}

// DeleteRemoteBranch removes branch from the remote.
func (g *GitRepo) DeleteRemoteBranch(ctx context.Context, branch string) error {
	out, err := g.run(ctx, "push", g.remoteName, "--delete", branch)
	if err != nil {
		if isRefNotFound(out) {
			return adapters.ErrRemoteRefNotFound
		}
		return errors.Wrapf(err, "push --delete %s: %s", branch, strings.TrimSpace(out))
	}
	return nil
}

// FindPullRequest, OpenPullRequest, MergePullRequest and CreateRelease
// delegate to the attached hosting API client; see hosting.go.

func (g *GitRepo) FindPullRequest(ctx context.Context, branch string, filters adapters.PRFilters) (*adapters.PullRequest, error) {
	if g.hosting == nil {
		return nil, errors.New("vcsrepo: no hosting API configured")
	}
	return g.hosting.findPullRequest(ctx, branch, filters)
}

func (g *GitRepo) OpenPullRequest(ctx context.Context, title, body, branch, base string) (*adapters.PullRequest, error) {
	if g.hosting == nil {
		return nil, errors.New("vcsrepo: no hosting API configured")
	}
	return g.hosting.openPullRequest(ctx, title, body, branch, base)
}

func (g *GitRepo) MergePullRequest(ctx context.Context, pr *adapters.PullRequest) error {
	if g.hosting == nil {
		return errors.New("vcsrepo: no hosting API configured")
	}
	return g.hosting.mergePullRequest(ctx, pr)
}

func (g *GitRepo) CreateRelease(ctx context.Context, tag, message string) error {
	if g.hosting == nil {
		return errors.New("vcsrepo: no hosting API configured")
	}
	return g.hosting.createRelease(ctx, tag, message)
}

func isPushRejected(out string) bool {
	return strings.Contains(out, "[rejected]") || strings.Contains(out, "non-fast-forward") || strings.Contains(out, "stale info")
}

func isRefNotFound(out string) bool {
	return strings.Contains(out, "remote ref does not exist") ||
		strings.Contains(out, "not found") ||
		strings.Contains(out, "branch not found")
}

// exitCode extracts the process exit code from an *exec.ExitError, or -1
// if err isn't one (e.g. it failed to start at all).
func exitCode(err error) int {
	type exitStatus interface{ ExitCode() int }
	if ee, ok := err.(exitStatus); ok {
		return ee.ExitCode()
	}
	return -1
}
