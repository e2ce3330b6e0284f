package executor

import (
	"context"
	"fmt"

	"github.com/membraneframework-labs/sebex/release"
)

// publishPackageTask SKIPs projects not marked
// for publication, otherwise hands the project to the language registry
// adapter. A registry failure is a BREAKPOINT, not a fatal error: the
// operator may need to fix credentials or wait out a registry outage and
// rerun, and Publisher.Publish is required to be idempotent so the rerun
// is safe.
type publishPackageTask struct{}

func (publishPackageTask) TargetStage() release.Stage { return release.Published }

func (publishPackageTask) Run(ctx context.Context, env *Env, rel *release.State, proj *release.ProjectState) (Result, string, error) {
	if !proj.Publish {
		return Skip, "", nil
	}

	ok, err := env.Publisher.Publish(ctx, *proj)
	if err != nil {
		return Breakpoint, fmt.Sprintf("publishing %s %s failed: %s", proj.Project, proj.ToVersion, err), nil
	}
	if !ok {
		return Breakpoint, fmt.Sprintf("publishing %s %s did not succeed; check the registry and rerun", proj.Project, proj.ToVersion), nil
	}
	return Proceed, "", nil
}
