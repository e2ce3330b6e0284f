package executor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/release"
)

// closeReleaseBranchTask returns to the
// default branch, fast-forwards it, tears down the release branch on both
// remote and local (ignoring a ref that is already absent, so a rerun
// after a partial teardown is a no-op), then cuts and pushes the release
// tag.
type closeReleaseBranchTask struct{}

func (closeReleaseBranchTask) TargetStage() release.Stage { return release.BranchClosed }

func (closeReleaseBranchTask) Run(ctx context.Context, env *Env, rel *release.State, proj *release.ProjectState) (Result, string, error) {
	branch := releaseBranch(proj)

	vcs, err := env.vcs(proj.Project)
	if err != nil {
		return 0, "", err
	}

	if err := vcs.Checkout(ctx, env.DefaultBranch, true, false); err != nil {
		return 0, "", errors.Wrapf(err, "checkout %s", env.DefaultBranch)
	}
	if err := vcs.Fetch(ctx); err != nil {
		return 0, "", errors.Wrap(err, "fetch")
	}
	if err := vcs.Pull(ctx); err != nil {
		return 0, "", errors.Wrap(err, "pull")
	}

	if err := vcs.DeleteRemoteBranch(ctx, branch); err != nil && !errors.Is(err, adapters.ErrRemoteRefNotFound) {
		return 0, "", errors.Wrapf(err, "delete remote branch %s", branch)
	}
	if err := vcs.DeleteLocalBranch(ctx, branch); err != nil && !errors.Is(err, adapters.ErrRemoteRefNotFound) {
		return 0, "", errors.Wrapf(err, "delete local branch %s", branch)
	}

	tag := releaseTag(proj)
	if err := vcs.Tag(ctx, tag, fmt.Sprintf("Release %s %s", proj.Project, proj.ToVersion)); err != nil {
		return 0, "", errors.Wrapf(err, "tag %s", tag)
	}
	if err := vcs.Push(ctx, adapters.PushRef{Tag: tag}); err != nil {
		return 0, "", errors.Wrapf(err, "push tag %s", tag)
	}

	return Proceed, "", nil
}
