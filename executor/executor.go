package executor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/release"
)

// Executor drives a release.State's projects through their stages,
// persisting the document after every successful transition. Store owns
// the on-disk document; Env bundles the adapters and workspace callbacks
// every Task needs.
type Executor struct {
	Store *release.Store
	Env   *Env
}

// Proceed drives state forward from wherever it currently stands: it
// processes the current phase (the gating invariant: a later phase is
// never touched while an earlier one still has work left), and if that
// phase finishes entirely, moves on to the next one, repeating until
// either some project hits a BREAKPOINT or every phase reaches DONE.
//
// The document is saved after every single stage transition, so a process
// killed at any point resumes from exactly the last persisted stage on
// the next call to Proceed with the reloaded state.
func (e *Executor) Proceed(ctx context.Context, state *release.State) (Outcome, error) {
	for {
		_, idx, ok := state.CurrentPhase()
		if !ok {
			return Finished, nil
		}

		hitBreakpoint, err := e.runPhase(ctx, state, idx)
		if err != nil {
			return 0, err
		}
		if hitBreakpoint {
			return Stopped, nil
		}
		if state.IsDone() {
			if e.Store != nil {
				if err := e.Store.Delete(); err != nil {
					return 0, errors.Wrap(err, "executor: delete completed release document")
				}
			}
			return Finished, nil
		}
		// This phase is entirely DONE; loop to pick up the next one.
	}
}

// runPhase is the per-phase loop: for every project in the
// phase (in stored order) that is not yet DONE, advance it one stage at a
// time for as long as tasks keep returning PROCEED or SKIP, persisting
// after every transition, and moving on to the next project once one
// hits a BREAKPOINT.
func (e *Executor) runPhase(ctx context.Context, state *release.State, phaseIdx int) (hitBreakpoint bool, err error) {
	phase := &state.Phases[phaseIdx]

	for pi := range phase.Projects {
		proj := &phase.Projects[pi]
		if proj.Stage == release.Done {
			continue
		}

		for _, stage := range release.Stages() {
			if stage <= proj.Stage {
				continue
			}

			task, ok := taskForStage(stage)
			if !ok {
				continue
			}

			result, message, err := task.Run(ctx, e.Env, state, proj)
			if err != nil {
				return false, errors.Wrapf(err, "executor: %s at %s", proj.Project, stage)
			}

			proj.Stage = stage
			if e.Store != nil {
				if saveErr := e.Store.Save(state); saveErr != nil {
					return false, errors.Wrap(saveErr, "executor: persist release document")
				}
			}

			if result == Breakpoint {
				e.Env.logf("sebex: %s: %s", proj.Project, message)
				hitBreakpoint = true
				break
			}
		}
	}

	return hitBreakpoint, nil
}
