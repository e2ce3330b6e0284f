package executor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/release"
)

// cleanupTask is the terminal DONE transition: it creates the hosting-side
// release for the tag CloseReleaseBranch already pushed.
type cleanupTask struct{}

func (cleanupTask) TargetStage() release.Stage { return release.Done }

func (cleanupTask) Run(ctx context.Context, env *Env, rel *release.State, proj *release.ProjectState) (Result, string, error) {
	vcs, err := env.vcs(proj.Project)
	if err != nil {
		return 0, "", err
	}

	tag := releaseTag(proj)
	message := fmt.Sprintf("Release %s %s", proj.Project, proj.ToVersion)
	if err := vcs.CreateRelease(ctx, tag, message); err != nil {
		return 0, "", errors.Wrapf(err, "create release for tag %s", tag)
	}
	return Proceed, "", nil
}
