package executor

import (
	"context"

	"github.com/membraneframework-labs/sebex/release"
)

// Task is the unit of work the executor runs to advance one project to
// one target stage. Exactly one Task exists per non-CLEAN release.Stage;
// taskForStage looks it up by the stage being advanced to.
type Task interface {
	// TargetStage is the release.Stage this task advances a project to.
	TargetStage() release.Stage
	// Run performs the task's work. message is shown to the operator when
	// Result is Breakpoint; it is ignored otherwise.
	Run(ctx context.Context, env *Env, rel *release.State, proj *release.ProjectState) (result Result, message string, err error)
}

// tasks lists the fixed per-stage task table in stage order:
// BRANCH_OPENED, PR_OPENED, PR_MERGED, BRANCH_CLOSED, PUBLISHED, DONE.
var tasks = []Task{
	openReleaseBranchTask{},
	openPullRequestTask{},
	mergePullRequestTask{},
	closeReleaseBranchTask{},
	publishPackageTask{},
	cleanupTask{},
}

// taskForStage returns the Task that advances a project to stage, or
// ok=false for release.Clean (which has no task: it is the starting
// point, never a target).
func taskForStage(stage release.Stage) (Task, bool) {
	for _, t := range tasks {
		if t.TargetStage() == stage {
			return t, true
		}
	}
	return nil, false
}
