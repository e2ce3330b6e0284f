// Package analyzer implements the per-language Analyzer adapter: an
// out-of-process tool invocation per project, plus the bounded worker pool
// that runs many of those invocations concurrently during the analysis
// phase.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/analysis"
)

// wireEntry mirrors the JSON document an analyzer subprocess writes to
// stdout: package, version, version_span,
// dependencies[{name,version_spec,version_spec_span}], and
// hex{published,versions[{version,retired?}]}.
type wireEntry struct {
	Package     string     `json:"package"`
	Version     string     `json:"version"`
	VersionSpan wireSpan   `json:"version_span"`
	Dependencies []wireDep `json:"dependencies"`
	Hex         wireHex   `json:"hex"`
}

type wireSpan struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_column"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_column"`
}

type wireDep struct {
	Name            string   `json:"name"`
	VersionSpec     string   `json:"version_spec"`
	VersionSpecSpan wireSpan `json:"version_spec_span"`
}

type wireHex struct {
	Published bool              `json:"published"`
	Versions  []wireHexVersion  `json:"versions"`
}

type wireHexVersion struct {
	Version string `json:"version"`
	Retired bool   `json:"retired"`
}

// Subprocess is the default Analyzer adapter: it shells out to a
// per-language binary, passing the project's checkout path as its one
// argument, and decodes its stdout as a wireEntry.
type Subprocess struct {
	// Command is the analyzer binary to invoke (e.g. "sebex-analyze-go").
	Command string
	// RepoPath resolves a project handle to the absolute checkout path the
	// subprocess should analyze.
	RepoPath func(analysis.ProjectHandle) string
}

// Analyze runs the configured subprocess for handle and parses its result.
func (s Subprocess) Analyze(ctx context.Context, handle analysis.ProjectHandle) (analysis.Entry, error) {
	path := s.RepoPath(handle)

	cmd := exec.CommandContext(ctx, s.Command, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return analysis.Entry{}, errors.Wrapf(err, "analyzer: %s on %s: %s", s.Command, handle, stderr.String())
	}

	var w wireEntry
	if err := json.Unmarshal(stdout.Bytes(), &w); err != nil {
		return analysis.Entry{}, errors.Wrapf(err, "analyzer: decode output for %s", handle)
	}
	return toEntry(w)
}

func toSpan(w wireSpan) analysis.Span {
	return analysis.Span{StartLine: w.StartLine, StartCol: w.StartCol, EndLine: w.EndLine, EndCol: w.EndCol}
}

func toEntry(w wireEntry) (analysis.Entry, error) {
	version, err := parseVersion(w.Version)
	if err != nil {
		return analysis.Entry{}, errors.Wrapf(err, "analyzer: %s version", w.Package)
	}

	entry := analysis.Entry{
		Package:     w.Package,
		Version:     version,
		VersionSpan: toSpan(w.VersionSpan),
		// IsPublished is the registry's own published flag, ORed with the
		// sebex_test name conflation (analysis.IsTestPackageName): a
		// matching package is always treated as already published,
		// regardless of what the registry actually reports.
		IsPublished: w.Hex.Published || analysis.IsTestPackageName(w.Package),
	}

	for _, d := range w.Dependencies {
		spec, err := parseVersionSpec(d.VersionSpec)
		if err != nil {
			return analysis.Entry{}, errors.Wrapf(err, "analyzer: %s dependency %s", w.Package, d.Name)
		}
		entry.Dependencies = append(entry.Dependencies, analysis.Dependency{
			Name:            d.Name,
			DefinedIn:       w.Package,
			VersionSpec:     spec,
			VersionSpecSpan: toSpan(d.VersionSpecSpan),
		})
	}

	for _, v := range w.Hex.Versions {
		ver, err := parseVersion(v.Version)
		if err != nil {
			return analysis.Entry{}, errors.Wrapf(err, "analyzer: %s release history", w.Package)
		}
		entry.Releases = append(entry.Releases, analysis.Release{Version: ver, Retired: v.Retired})
	}

	return entry, nil
}
