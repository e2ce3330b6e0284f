package executor

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/release"
)

// openReleaseBranchTask refuses if the release branch is already
// remote-tracked, otherwise deletes any conflicting local branch, refuses
// on a dirty worktree, creates "release/v<to>", patches the manifest's
// version and dependency-spec spans in place, commits, and (if the project
// tracks a lockfile) runs the external lockfile updater and commits its
// output too. The manifest is edited by span rather than re-marshaled
// whole, so it works over whatever manifest format the project's language
// uses.
type openReleaseBranchTask struct{}

func (openReleaseBranchTask) TargetStage() release.Stage { return release.BranchOpened }

func (openReleaseBranchTask) Run(ctx context.Context, env *Env, rel *release.State, proj *release.ProjectState) (Result, string, error) {
	branch := releaseBranch(proj)

	vcs, err := env.vcs(proj.Project)
	if err != nil {
		return 0, "", err
	}

	// Refuse before touching anything if the branch is already known to
	// the remote: someone's release (this one resumed from a stale plan,
	// or another operator's) has real state riding on it, and blowing it
	// away out from under a possibly-open pull request would be wrong.
	// A purely local leftover from a killed prior attempt doesn't trip
	// this; Checkout's deleteExisting clears that below, same as always.
	remote, err := vcs.BranchExists(ctx, branch)
	if err != nil {
		return 0, "", errors.Wrapf(err, "check remote for %s", branch)
	}
	if remote {
		return Breakpoint, fmt.Sprintf("branch %s already exists on the remote; remove it (and any pull request on it) before retrying", branch), nil
	}

	// Checkout both creates the branch if needed and deletes any stale
	// local branch of the same name first (deleteExisting=true), the same
	// idempotent "branch creation deletes stale branches" behavior that
	// makes this task safe to re-run after a kill mid-task.
	if err := vcs.Checkout(ctx, branch, true, true); err != nil {
		return 0, "", errors.Wrapf(err, "open release branch %s", branch)
	}

	manifestPath := env.ManifestPath(proj.Project)
	if err := patchManifest(manifestPath, proj); err != nil {
		return 0, "", errors.Wrapf(err, "patch manifest for %s", proj.Project)
	}

	files := []string{manifestPath}
	if err := vcs.Commit(ctx, fmt.Sprintf("bump to %s", proj.ToVersion), files...); err != nil {
		return 0, "", errors.Wrapf(err, "commit manifest bump for %s", proj.Project)
	}

	if lockPath := env.LockfilePath(proj.Project); lockPath != "" {
		tracked, err := vcs.IsTracked(ctx, lockPath)
		if err != nil {
			return 0, "", errors.Wrapf(err, "check lockfile tracking for %s", proj.Project)
		}
		if tracked {
			changed, err := env.UpdateLockfile(ctx, proj.Project)
			if err != nil {
				return 0, "", errors.Wrapf(err, "update lockfile for %s", proj.Project)
			}
			if changed {
				if err := vcs.Commit(ctx, "update lockfile", lockPath); err != nil {
					return 0, "", errors.Wrapf(err, "commit lockfile update for %s", proj.Project)
				}
			}
		}
	}

	return Proceed, "", nil
}

// patchManifest rewrites the project's manifest file in place: the
// version_span becomes the quoted to_version, and each dependency
// update's to_spec_span becomes its rendered spec.
func patchManifest(path string, proj *release.ProjectState) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	edits := []edit{{Span: proj.VersionSpan, Replacement: quote(proj.ToVersion.String())}}
	for _, du := range proj.DependencyUpdates {
		edits = append(edits, edit{Span: du.ToSpecSpan, Replacement: quote(du.ToSpec.String())})
	}

	out, err := applyEdits(data, edits)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, out, 0o644)
}

func quote(s string) string {
	return `"` + s + `"`
}
