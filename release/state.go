package release

import (
	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/semver"
)

// DependencyUpdate is one patch the executor must make to a project's
// manifest: the requirement on Name changes from FromSpec to ToSpec, at the
// span ToSpecSpan (which equals the original version_spec_span of the
// dependency being updated).
type DependencyUpdate struct {
	Name        string
	FromSpec    semver.VersionSpec
	ToSpec      semver.VersionSpec
	ToSpecSpan  analysis.Span
}

// ProjectState is one project's slot in the release plan: what it's
// bumping from/to, which dependency requirements need patching, and how
// far through the lifecycle the executor has advanced it.
type ProjectState struct {
	Project            analysis.ProjectHandle
	FromVersion        semver.Version
	ToVersion          semver.Version
	VersionSpan        analysis.Span
	Language           analysis.Language
	Publish            bool
	DependencyUpdates  []DependencyUpdate
	Stage              Stage
}

// IsDone reports whether the project has reached the terminal stage.
func (p ProjectState) IsDone() bool { return p.Stage == Done }

// PhaseState is an ordered list of projects that may be released
// concurrently, because they have no release-ordering dependencies among
// themselves. A PhaseState owns its ProjectStates.
type PhaseState struct {
	Projects []ProjectState
}

// IsClean reports whether every project in the phase is still at CLEAN.
func (p PhaseState) IsClean() bool {
	for _, proj := range p.Projects {
		if proj.Stage != Clean {
			return false
		}
	}
	return true
}

// IsDone reports whether every project in the phase has reached DONE.
func (p PhaseState) IsDone() bool {
	for _, proj := range p.Projects {
		if proj.Stage != Done {
			return false
		}
	}
	return true
}

// State is the full persisted release document: which packages were
// targeted at which versions (Sources), and the ordered phases of work
// needed to get there. A State owns its phases and its Sources map.
//
// Lifecycle: created by the planner, saved atomically after each successful
// executor transition (see Store), deleted once the terminal phase is DONE.
type State struct {
	Sources map[analysis.ProjectHandle]semver.Version
	Phases  []PhaseState
}

// CurrentPhase returns the first phase that is not entirely DONE, or the
// last phase if the whole release is complete (or there are no phases at
// all, in which case the zero PhaseState is returned with ok=false).
func (s *State) CurrentPhase() (PhaseState, int, bool) {
	if len(s.Phases) == 0 {
		return PhaseState{}, -1, false
	}
	for i, p := range s.Phases {
		if !p.IsDone() {
			return p, i, true
		}
	}
	return s.Phases[len(s.Phases)-1], len(s.Phases) - 1, true
}

// IsClean reports whether every phase is entirely CLEAN (the release has
// not started executing).
func (s *State) IsClean() bool {
	for _, p := range s.Phases {
		if !p.IsClean() {
			return false
		}
	}
	return true
}

// IsDone reports whether every phase has reached DONE.
func (s *State) IsDone() bool {
	for _, p := range s.Phases {
		if !p.IsDone() {
			return false
		}
	}
	return true
}

// IsInProgress reports whether the release has started but not finished.
func (s *State) IsInProgress() bool {
	return !s.IsClean() && !s.IsDone()
}

// GetProject searches all phases for a project by handle. Project handles
// are unique across a release plan (the planner emits each project at most
// once across all phases), so the search always has at most one match.
func (s *State) GetProject(h analysis.ProjectHandle) (*ProjectState, bool) {
	for pi := range s.Phases {
		for pj := range s.Phases[pi].Projects {
			if s.Phases[pi].Projects[pj].Project == h {
				return &s.Phases[pi].Projects[pj], true
			}
		}
	}
	return nil, false
}
