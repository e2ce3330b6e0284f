package analyzer

import (
	"strings"

	"github.com/membraneframework-labs/sebex/semver"
)

func parseVersion(s string) (semver.Version, error) {
	return semver.Parse(s)
}

// parseVersionSpec accepts the three wire forms an analyzer subprocess can
// report for a dependency's version_spec: a semver requirement ("~> 1.0"),
// a git pin ("git:<branch-or-revision>"), or a local path pin
// ("path:<path>"). The git/path forms are opaque to the planner (it warns
// and skips them), so they only need to round-trip through String(), not
// be interpreted further.
func parseVersionSpec(s string) (semver.VersionSpec, error) {
	switch {
	case strings.HasPrefix(s, "git:"):
		ref := strings.TrimPrefix(s, "git:")
		if len(ref) == 40 {
			return semver.GitRequirement{Revision: ref}, nil
		}
		return semver.GitRequirement{Branch: ref}, nil
	case strings.HasPrefix(s, "path:"):
		return semver.PathRequirement{Path: strings.TrimPrefix(s, "path:")}, nil
	default:
		return semver.ParseVersionRequirement(s)
	}
}
