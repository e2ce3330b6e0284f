// Package executor drives a release.State's projects stage by stage,
// invoking the external adapters (VCS, publisher) one task per target
// stage, persisting the document after every transition so a killed
// process resumes exactly where it left off.
package executor

// Result is what a single Task reports back to the executor loop.
type Result int

const (
	// Proceed means the task completed and the project may advance to the
	// next stage immediately.
	Proceed Result = iota
	// Skip means the task had nothing to do (e.g. the project is not marked
	// for publication, or its pull request is already open) but the project
	// still advances to the next stage.
	Skip
	// Breakpoint means the task needs operator attention before the
	// project can advance further; the executor stops driving this
	// project (but not necessarily others in the same phase) and the
	// stage transition that already happened is persisted.
	Breakpoint
)

func (r Result) String() string {
	switch r {
	case Proceed:
		return "PROCEED"
	case Skip:
		return "SKIP"
	case Breakpoint:
		return "BREAKPOINT"
	default:
		return "UNKNOWN"
	}
}

// Outcome is what Proceed (the top-level driver) reports for a whole
// invocation, possibly spanning several phases.
type Outcome int

const (
	// Finished means every phase reached DONE (the release document is now
	// eligible for deletion) or there was nothing to do.
	Finished Outcome = iota
	// Stopped means some project hit a BREAKPOINT; state has been saved up
	// to the last successful transition and a rerun will resume.
	Stopped
)

func (o Outcome) String() string {
	if o == Finished {
		return "FINISHED"
	}
	return "STOPPED"
}
