package executor

import (
	"context"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/log"
	"github.com/membraneframework-labs/sebex/release"
	"github.com/membraneframework-labs/sebex/semver"
)

// Env bundles everything a Task needs beyond the release document itself:
// the external adapters, the handful of workspace-layout callbacks a task
// needs to find a project's manifest/lockfile on disk, and operator
// confirmation/logging. It is constructed once in cmd/sebex and threaded
// through explicitly, never read from a package global.
type Env struct {
	// VCS resolves a project to the adapter driving its repository. A
	// release spans many independently-hosted repositories, so this is a
	// factory rather than a single shared adapter; most callers cache one
	// adapter per repository behind the closure.
	VCS       func(analysis.ProjectHandle) (adapters.VCS, error)
	Publisher adapters.Publisher

	// ManifestPath resolves a project to the absolute path of the manifest
	// file OpenReleaseBranch patches. Workspace layout belongs to the
	// caller; this callback is the seam.
	ManifestPath func(analysis.ProjectHandle) string

	// LockfilePath resolves a project to its lockfile path, or "" if the
	// project tracks no lockfile.
	LockfilePath func(analysis.ProjectHandle) string

	// UpdateLockfile invokes the external lockfile updater for a project
	// whose manifest was just patched, returning whether the lockfile
	// changed on disk.
	UpdateLockfile func(ctx context.Context, h analysis.ProjectHandle) (changed bool, err error)

	// DefaultBranch is the repository's trunk branch, checked out by
	// CloseReleaseBranch once the release branch is torn down.
	DefaultBranch string

	// Confirm asks the operator a yes/no question (force push, auto-merge
	// override) and returns their answer. A nil Confirm always answers no,
	// the safe default for unattended runs.
	Confirm func(prompt string) bool

	// Codename and Sources feed OpenPullRequest's PR body.
	Codename string
	Sources  map[analysis.ProjectHandle]semver.Version

	Log *log.Logger
}

func (e *Env) vcs(h analysis.ProjectHandle) (adapters.VCS, error) {
	return e.VCS(h)
}

func (e *Env) confirm(prompt string) bool {
	if e.Confirm == nil {
		return false
	}
	return e.Confirm(prompt)
}

func (e *Env) logf(format string, args ...interface{}) {
	if e.Log != nil {
		e.Log.Logf(format+"\n", args...)
	}
}

// releaseBranch is the branch name OpenReleaseBranch creates and every
// later stage addresses by name: "release/v<to_version>".
func releaseBranch(proj *release.ProjectState) string {
	return "release/v" + proj.ToVersion.String()
}

// releaseTag is the tag name CloseReleaseBranch creates: "v<to_version>".
func releaseTag(proj *release.ProjectState) string {
	return "v" + proj.ToVersion.String()
}
