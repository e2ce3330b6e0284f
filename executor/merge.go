package executor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/release"
)

// mergePullRequestTask locates the release's PR, proceeds if it is
// already merged, breaks if it was closed unmerged,
// and otherwise only merges when the auto-merge predicate holds and the
// operator confirms (or always breaks, for unattended runs with no
// confirmation channel).
type mergePullRequestTask struct{}

func (mergePullRequestTask) TargetStage() release.Stage { return release.PullRequestMerged }

func (mergePullRequestTask) Run(ctx context.Context, env *Env, rel *release.State, proj *release.ProjectState) (Result, string, error) {
	branch := releaseBranch(proj)

	vcs, err := env.vcs(proj.Project)
	if err != nil {
		return 0, "", err
	}

	pr, err := vcs.FindPullRequest(ctx, branch, adapters.PRFilters{})
	if err != nil {
		return 0, "", errors.Wrapf(err, "find pull request for %s", branch)
	}
	if pr == nil {
		return 0, "", errors.Errorf("no pull request found for %s", branch)
	}

	if pr.Merged {
		return Proceed, "", nil
	}
	if pr.ClosedUnmerged {
		return Breakpoint, fmt.Sprintf("pull request #%d for %s was closed without merging; reopen it or abandon this release", pr.Number, branch), nil
	}

	if autoMergeable(pr) && env.confirm(fmt.Sprintf("merge pull request #%d?", pr.Number)) {
		if err := vcs.MergePullRequest(ctx, pr); err != nil {
			return 0, "", errors.Wrapf(err, "merge pull request #%d", pr.Number)
		}
		return Proceed, "", nil
	}

	return Breakpoint, fmt.Sprintf("pull request #%d for %s is not ready to merge automatically; review it manually", pr.Number, branch), nil
}

// autoMergeable is the auto-merge predicate: mergeable, with a
// combined status that is neither failing nor pending, and no outstanding
// CHANGES_REQUESTED review.
func autoMergeable(pr *adapters.PullRequest) bool {
	return pr.Mergeable &&
		pr.CombinedStatus != "failing" &&
		pr.CombinedStatus != "pending" &&
		!pr.ChangesRequested
}
