package semver

// VersionSpec is the sum type of the three ways a dependency's acceptable
// versions can be expressed: a semver VersionRequirement, or an external
// (git/path) requirement that the planner treats as opaque.
//
// IsVersion and IsExternal are mutually exclusive by construction: exactly
// one implementation (VersionRequirement) answers IsVersion() true, and the
// other two (GitRequirement, PathRequirement) answer IsExternal() true.
type VersionSpec interface {
	// IsVersion reports whether this spec is a VersionRequirement.
	IsVersion() bool
	// IsExternal reports whether this spec pins to a VCS ref or local path
	// rather than a published version.
	IsExternal() bool
	String() string
}

// GitRequirement pins a dependency to a branch or revision rather than a
// released version. The planner warns and skips it when propagating bumps.
type GitRequirement struct {
	Branch   string
	Revision string
}

func (GitRequirement) IsVersion() bool  { return false }
func (GitRequirement) IsExternal() bool { return true }
func (r GitRequirement) String() string {
	if r.Revision != "" {
		return "git:" + r.Revision
	}
	return "git:" + r.Branch
}

// PathRequirement pins a dependency to a local filesystem path (a
// monorepo-local, unpublished sibling). Also opaque to the planner.
type PathRequirement struct {
	Path string
}

func (PathRequirement) IsVersion() bool  { return false }
func (PathRequirement) IsExternal() bool { return true }
func (r PathRequirement) String() string { return "path:" + r.Path }

// Targeting returns the canonical requirement a freshly released version
// v should be published with:
//
//   - prerelease/build version: "== v", pinned MINOR (exact match only;
//     prereleases are never ranged).
//   - stable version with major > 0 and patch == 0: "~> M.m", pinned MAJOR.
//   - otherwise: "~> M.m.p", pinned MINOR.
func Targeting(v Version) VersionRequirement {
	if v.IsPrerelease() {
		return VersionRequirement{Op: OpEQ, Base: v, Pin: PinMinor}
	}
	if v.Major() > 0 && v.Patch() == 0 {
		return VersionRequirement{Op: OpPessimistic, Base: v, Pin: PinMajor}
	}
	return VersionRequirement{Op: OpPessimistic, Base: v, Pin: PinMinor}
}
