// Package release defines the persisted release document: the plan the
// planner produces and the per-project lifecycle the executor advances
// through it, saved atomically after every transition so a killed process
// can resume exactly where it left off.
package release

// Stage is a project's position within the release lifecycle, strictly
// increasing per project over the life of a release.
type Stage int

const (
	Clean Stage = iota
	BranchOpened
	PullRequestOpened
	PullRequestMerged
	BranchClosed
	Published
	Done
)

var stageNames = [...]string{
	Clean:              "CLEAN",
	BranchOpened:       "BRANCH_OPENED",
	PullRequestOpened:  "PR_OPENED",
	PullRequestMerged:  "PR_MERGED",
	BranchClosed:       "BRANCH_CLOSED",
	Published:          "PUBLISHED",
	Done:               "DONE",
}

func (s Stage) String() string {
	if int(s) < 0 || int(s) >= len(stageNames) {
		return "UNKNOWN"
	}
	return stageNames[s]
}

// ParseStage parses a stage's canonical name, as stored in the release
// document.
func ParseStage(s string) (Stage, bool) {
	for i, n := range stageNames {
		if n == s {
			return Stage(i), true
		}
	}
	return 0, false
}

// Stages lists every stage in enum order, the order the executor advances
// through them.
func Stages() []Stage {
	out := make([]Stage, len(stageNames))
	for i := range stageNames {
		out[i] = Stage(i)
	}
	return out
}
