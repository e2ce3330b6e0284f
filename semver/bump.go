package semver

// Bump is the SemVer-level delta between two versions, ordered from
// smallest to "cannot be expressed as a bump at all".
type Bump int

const (
	StayAsIs Bump = iota
	Patch
	Minor
	Major
	Unsolvable
)

func (b Bump) String() string {
	switch b {
	case StayAsIs:
		return "stay-as-is"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return "unsolvable"
	}
}

// Max returns the larger of two bumps per the StayAsIs < Patch < Minor <
// Major < Unsolvable ordering.
func Max(a, b Bump) Bump {
	if a > b {
		return a
	}
	return b
}

// Between classifies the delta from `from` to `to`:
//
//   - from > to, or either side carries prerelease/build metadata →
//     Unsolvable (this system never plans backports or prerelease bumps).
//   - from == to → StayAsIs.
//   - majors differ → Major; minors differ → Minor; else → Patch.
func Between(from, to Version) Bump {
	if from.IsPrerelease() || to.IsPrerelease() {
		return Unsolvable
	}
	if from.Compare(to) > 0 {
		return Unsolvable
	}
	if from.Equal(to) {
		return StayAsIs
	}
	if from.Major() != to.Major() {
		return Major
	}
	if from.Minor() != to.Minor() {
		return Minor
	}
	return Patch
}

// derivationTable implements the "self bump on A induces this bump on
// dependent B" rule. Indexed [dep-major-is-zero][self bump].
var derivationTable = map[bool]map[Bump]Bump{
	true: { // dependency is still pre-1.0 (major == 0): everything is tight
		Patch: Patch,
		Minor: Minor,
		Major: Major, // a major release below 1.0 has no softer derivation; kept total
	},
	false: { // dependency has graduated past 1.0
		Patch: Patch,
		Minor: Patch,
		Major: Minor,
	},
}

// Derive translates a bump applied to package A into the bump induced on a
// dependent B, given A's own current major version (depMajorIsZero). A
// StayAsIs or Unsolvable self-bump passes through unchanged: there is
// nothing to propagate, or propagation is moot because planning has
// already failed.
func (self Bump) Derive(depMajorIsZero bool) Bump {
	if self == StayAsIs || self == Unsolvable {
		return self
	}
	if derived, ok := derivationTable[depMajorIsZero][self]; ok {
		return derived
	}
	return self
}

// Apply produces the version that results from applying the bump to v.
// Applying Unsolvable or StayAsIs returns v unchanged; callers must check
// Unsolvable themselves before trusting the result (the planner treats it
// as a fatal validation error, never silently applying it).
func (b Bump) Apply(v Version) Version {
	switch b {
	case Patch:
		return New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	case Minor:
		return New(v.Major(), v.Minor()+1, 0, "", "")
	case Major:
		return New(v.Major()+1, 0, 0, "", "")
	default:
		return v
	}
}
