package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/release"
)

// openPullRequestTask pushes the release
// branch (retrying as a force push on operator confirmation if the remote
// rejects it), then opens a pull request if none is already open for that
// branch.
type openPullRequestTask struct{}

func (openPullRequestTask) TargetStage() release.Stage { return release.PullRequestOpened }

func (openPullRequestTask) Run(ctx context.Context, env *Env, rel *release.State, proj *release.ProjectState) (Result, string, error) {
	branch := releaseBranch(proj)

	vcs, err := env.vcs(proj.Project)
	if err != nil {
		return 0, "", err
	}

	err = vcs.Push(ctx, adapters.PushRef{Branch: branch})
	if errors.Is(err, adapters.ErrPushRejected) {
		if !env.confirm(fmt.Sprintf("remote rejected push of %s; force push?", branch)) {
			return Breakpoint, fmt.Sprintf("push of %s was rejected; rerun and confirm a force push, or resolve the remote divergence manually", branch), nil
		}
		err = vcs.Push(ctx, adapters.PushRef{Branch: branch, Force: true})
	}
	if err != nil {
		return 0, "", errors.Wrapf(err, "push %s", branch)
	}

	existing, err := vcs.FindPullRequest(ctx, branch, adapters.PRFilters{Open: true})
	if err != nil {
		return 0, "", errors.Wrapf(err, "find pull request for %s", branch)
	}
	if existing != nil {
		return Skip, "", nil
	}

	title := fmt.Sprintf("Release %s v%s", proj.Project, proj.ToVersion)
	if _, err := vcs.OpenPullRequest(ctx, title, prBody(env, proj), branch, env.DefaultBranch); err != nil {
		return 0, "", errors.Wrapf(err, "open pull request for %s", branch)
	}
	return Proceed, "", nil
}

// prBody renders the PR description: the release codename and a
// table of every source this release targets, so a reviewer can see the
// whole release a single project's PR belongs to.
func prBody(env *Env, proj *release.ProjectState) string {
	var b strings.Builder
	if env.Codename != "" {
		fmt.Fprintf(&b, "Release codename: **%s**\n\n", env.Codename)
	}
	fmt.Fprintf(&b, "%s: %s → %s\n\n", proj.Project, proj.FromVersion, proj.ToVersion)

	if len(env.Sources) > 0 {
		names := make([]string, 0, len(env.Sources))
		for h := range env.Sources {
			names = append(names, h.String())
		}
		sort.Strings(names)

		b.WriteString("| project | target version |\n|---|---|\n")
		for _, n := range names {
			for h, v := range env.Sources {
				if h.String() == n {
					fmt.Fprintf(&b, "| %s | %s |\n", n, v)
					break
				}
			}
		}
	}
	return b.String()
}
