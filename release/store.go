package release

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/internal/fs"
	"github.com/membraneframework-labs/sebex/semver"
)

// DocumentName is the file name the release document is persisted under,
// inside the workspace metadata directory.
const DocumentName = "release.toml"

// rawState/rawPhase/rawProject/rawDependencyUpdate/rawSpan mirror the
// persisted TOML schema. Specs round-trip through parse/String; spans are
// plain structs of ints.
type rawState struct {
	Release map[string]string `toml:"release"`
	Phases  []rawPhase        `toml:"phases"`
}

type rawPhase struct {
	Projects []rawProject `toml:"projects"`
}

type rawProject struct {
	Project           string                `toml:"project"`
	Language          string                `toml:"language"`
	Stage             string                `toml:"stage"`
	FromVersion       string                `toml:"from_version"`
	ToVersion         string                `toml:"to_version"`
	VersionSpan       rawSpan               `toml:"version_span"`
	Publish           bool                  `toml:"publish"`
	DependencyUpdates []rawDependencyUpdate `toml:"dependency_updates"`
}

type rawDependencyUpdate struct {
	Name       string  `toml:"name"`
	FromSpec   string  `toml:"from_spec"`
	ToSpec     string  `toml:"to_spec"`
	ToSpecSpan rawSpan `toml:"to_spec_span"`
}

type rawSpan struct {
	StartLine int `toml:"start_line"`
	StartCol  int `toml:"start_column"`
	EndLine   int `toml:"end_line"`
	EndCol    int `toml:"end_column"`
}

func toRawSpan(s analysis.Span) rawSpan {
	return rawSpan{StartLine: s.StartLine, StartCol: s.StartCol, EndLine: s.EndLine, EndCol: s.EndCol}
}

func fromRawSpan(s rawSpan) analysis.Span {
	return analysis.Span{StartLine: s.StartLine, StartCol: s.StartCol, EndLine: s.EndLine, EndCol: s.EndCol}
}

// Marshal serializes a release State to the TOML document format.
func Marshal(s *State) ([]byte, error) {
	raw := rawState{Release: make(map[string]string, len(s.Sources))}
	for h, v := range s.Sources {
		raw.Release[h.String()] = v.String()
	}

	for _, phase := range s.Phases {
		rp := rawPhase{Projects: make([]rawProject, 0, len(phase.Projects))}
		for _, proj := range phase.Projects {
			rproj := rawProject{
				Project:     proj.Project.String(),
				Language:    string(proj.Language),
				Stage:       proj.Stage.String(),
				FromVersion: proj.FromVersion.String(),
				ToVersion:   proj.ToVersion.String(),
				VersionSpan: toRawSpan(proj.VersionSpan),
				Publish:     proj.Publish,
			}
			for _, du := range proj.DependencyUpdates {
				rproj.DependencyUpdates = append(rproj.DependencyUpdates, rawDependencyUpdate{
					Name:       du.Name,
					FromSpec:   du.FromSpec.String(),
					ToSpec:     du.ToSpec.String(),
					ToSpecSpan: toRawSpan(du.ToSpecSpan),
				})
			}
			rp.Projects = append(rp.Projects, rproj)
		}
		raw.Phases = append(raw.Phases, rp)
	}

	return toml.Marshal(raw)
}

// Unmarshal parses a release document previously written by Marshal.
//
// DependencyUpdate.FromSpec/ToSpec round-trip only through the version
// requirement form: a persisted plan never targets a git/path dependency
// (the planner skips those edges entirely), so Unmarshal only needs to
// parse VersionRequirement strings back out.
func Unmarshal(data []byte) (*State, error) {
	var raw rawState
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "release: invalid document")
	}

	s := &State{Sources: make(map[analysis.ProjectHandle]semver.Version, len(raw.Release))}
	for handle, v := range raw.Release {
		ver, err := semver.Parse(v)
		if err != nil {
			return nil, errors.Wrapf(err, "release: source %s", handle)
		}
		s.Sources[analysis.ParseProjectHandle(handle)] = ver
	}

	for _, rp := range raw.Phases {
		phase := PhaseState{Projects: make([]ProjectState, 0, len(rp.Projects))}
		for _, rproj := range rp.Projects {
			stage, ok := ParseStage(rproj.Stage)
			if !ok {
				return nil, errors.Errorf("release: unknown stage %q for project %s", rproj.Stage, rproj.Project)
			}
			from, err := semver.Parse(rproj.FromVersion)
			if err != nil {
				return nil, errors.Wrapf(err, "release: %s from_version", rproj.Project)
			}
			to, err := semver.Parse(rproj.ToVersion)
			if err != nil {
				return nil, errors.Wrapf(err, "release: %s to_version", rproj.Project)
			}
			proj := ProjectState{
				Project:     analysis.ParseProjectHandle(rproj.Project),
				Language:    analysis.Language(rproj.Language),
				Stage:       stage,
				FromVersion: from,
				ToVersion:   to,
				VersionSpan: fromRawSpan(rproj.VersionSpan),
				Publish:     rproj.Publish,
			}
			for _, rdu := range rproj.DependencyUpdates {
				fromSpec, err := semver.ParseVersionRequirement(rdu.FromSpec)
				if err != nil {
					return nil, errors.Wrapf(err, "release: %s dependency %s from_spec", rproj.Project, rdu.Name)
				}
				toSpec, err := semver.ParseVersionRequirement(rdu.ToSpec)
				if err != nil {
					return nil, errors.Wrapf(err, "release: %s dependency %s to_spec", rproj.Project, rdu.Name)
				}
				proj.DependencyUpdates = append(proj.DependencyUpdates, DependencyUpdate{
					Name:       rdu.Name,
					FromSpec:   fromSpec,
					ToSpec:     toSpec,
					ToSpecSpan: fromRawSpan(rdu.ToSpecSpan),
				})
			}
			phase.Projects = append(phase.Projects, proj)
		}
		s.Phases = append(s.Phases, phase)
	}

	return s, nil
}

// Store persists the release document under a workspace's metadata
// directory, atomically: every Save writes to a temp file in the same
// directory then renames it into place, so a kill mid-write never leaves a
// half-written document behind.
type Store struct {
	MetaDir string
}

func (s Store) path() string {
	return filepath.Join(s.MetaDir, DocumentName)
}

// Load reads the release document, or returns (nil, nil) if none exists
// (no release currently in progress).
func (s Store) Load() (*State, error) {
	data, err := ioutil.ReadFile(s.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "release: read document")
	}
	return Unmarshal(data)
}

// Save atomically writes the release document, creating the metadata
// directory if needed.
func (s Store) Save(state *State) error {
	data, err := Marshal(state)
	if err != nil {
		return errors.Wrap(err, "release: marshal document")
	}

	if err := os.MkdirAll(s.MetaDir, 0o755); err != nil {
		return errors.Wrap(err, "release: create metadata directory")
	}

	tmp, err := ioutil.TempFile(s.MetaDir, DocumentName+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "release: create temp file")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, "release: write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "release: close temp file")
	}

	if err := fs.RenameWithFallback(tmpPath, s.path()); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "release: rename into place")
	}
	return nil
}

// Delete removes the release document, once the terminal phase is DONE.
func (s Store) Delete() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "release: delete document")
	}
	return nil
}
