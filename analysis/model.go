// Package analysis holds the immutable per-project facts the rest of the
// orchestrator plans against: what a project's package is called, what
// version it is at, what it depends on, and what has already been
// published for it. These facts are produced by an external, per-language
// analyzer subprocess (see package analyzer) and never mutated afterward.
package analysis

import (
	"fmt"
	"strings"

	"github.com/membraneframework-labs/sebex/semver"
)

// Span is a byte-addressable source region used to patch manifests:
// 1-indexed, inclusive-start, exclusive-end.
type Span struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// Dependency is one directional edge: DefinedIn (the dependent package)
// depends on Name, constrained by VersionSpec at VersionSpecSpan.
type Dependency struct {
	Name            string
	DefinedIn       string
	VersionSpec     semver.VersionSpec
	VersionSpecSpan Span
}

// Release describes one version that has appeared in a package's publish
// history, as reported by the registry the analyzer consulted.
type Release struct {
	Version  semver.Version
	Retired  bool
}

// Entry is the full set of facts an analyzer reports about one project.
type Entry struct {
	Package      string
	Version      semver.Version
	VersionSpan  Span
	Dependencies []Dependency
	Releases     []Release
	IsPublished  bool
}

// IsTestPackageName reports whether name is a "sebex_test"-flavored
// package: the narrow compatibility shim the Open Questions section
// documents as a wart, kept exactly as observed rather than generalized.
// Any package whose name contains "sebex_test" is always treated as
// already published (and, on the registry side, uploaded with replace
// semantics), conflating a test fixture path with production publish
// behavior.
func IsTestPackageName(name string) bool {
	return strings.Contains(name, "sebex_test")
}

// Language identifies which per-language analyzer produced an Entry, and
// therefore which VCS/manifest conventions its project follows.
type Language string
