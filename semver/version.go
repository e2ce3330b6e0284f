// Package semver implements the version algebra the release orchestrator
// reasons over: semantic versions, pin-aware requirements, bump
// classification and requirement targeting.
//
// The numeric core (parse/compare of a major.minor.patch triple plus
// prerelease/build metadata) is delegated to Masterminds/semver; pins,
// requirement matching and bump propagation are this package's own, since
// they have no equivalent in that library.
package semver

import (
	"fmt"

	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// ErrInvalidVersion is returned when a version string cannot be parsed.
var ErrInvalidVersion = errors.New("invalid semantic version")

// Version is an immutable semantic-version triple with optional prerelease
// and build metadata, totally ordered per SemVer 2.0.0.
type Version struct {
	v *mmsemver.Version
}

// Parse parses a version string into a Version. Leading "v" is tolerated.
func Parse(s string) (Version, error) {
	v, err := mmsemver.NewVersion(s)
	if err != nil {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "%q: %s", s, err)
	}
	return Version{v: v}, nil
}

// MustParse parses s or panics. Intended for table-test fixtures.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// New constructs a Version directly from its numeric fields.
func New(major, minor, patch uint64, prerelease, build string) Version {
	v, err := mmsemver.NewVersion(fmt.Sprintf("%d.%d.%d", major, minor, patch))
	if err != nil {
		panic(err)
	}
	s := v.String()
	if prerelease != "" {
		s += "-" + prerelease
	}
	if build != "" {
		s += "+" + build
	}
	vv, err := mmsemver.NewVersion(s)
	if err != nil {
		panic(err)
	}
	return Version{v: vv}
}

// IsZero reports whether this is the zero Version (no version parsed).
func (v Version) IsZero() bool { return v.v == nil }

func (v Version) Major() uint64 { return v.v.Major() }
func (v Version) Minor() uint64 { return v.v.Minor() }
func (v Version) Patch() uint64 { return v.v.Patch() }
func (v Version) Prerelease() string { return v.v.Prerelease() }
func (v Version) Metadata() string { return v.v.Metadata() }

// IsPrerelease reports whether v carries prerelease or build metadata.
// The planner and requirement matching both treat these identically: a
// version that is not a plain release never satisfies a stable requirement
// and is never auto-bumped.
func (v Version) IsPrerelease() bool {
	return v.v.Prerelease() != "" || v.v.Metadata() != ""
}

// Compare returns -1, 0 or +1 as v is less than, equal to, or greater than
// other, per total SemVer ordering (prerelease sorts before release).
func (v Version) Compare(other Version) int {
	return v.v.Compare(other.v)
}

func (v Version) Less(other Version) bool    { return v.Compare(other) < 0 }
func (v Version) Equal(other Version) bool    { return v.Compare(other) == 0 }
func (v Version) GreaterThan(o Version) bool  { return v.Compare(o) > 0 }

// String renders the version in canonical form, e.g. "1.2.3-rc.1+build".
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// truncate returns the version with its fields zeroed below the pin's
// significant prefix, per Pin.Truncate.
func (v Version) truncate(p Pin) Version {
	switch p {
	case PinMajor:
		return New(v.Major(), v.Minor(), 0, "", "")
	default:
		return v
	}
}

// NextIncompatible returns the smallest stable version that a ~> requirement
// anchored at v (with the given pin) would no longer match: major+1.0.0 when
// pin is PinMajor, else major.(minor+1).0.
func (v Version) NextIncompatible(p Pin) Version {
	return v.nextIncompatible(p)
}

func (v Version) nextIncompatible(p Pin) Version {
	if p == PinMajor {
		return New(v.Major()+1, 0, 0, "", "")
	}
	return New(v.Major(), v.Minor()+1, 0, "", "")
}

// previousVersion decrements the rightmost non-zero segment of v, rolling
// zeros to the sentinel 9999, simulating "just before this version".
//
// Whether the sentinel should instead be the predecessor's last actually
// released version is an open question left to the domain owner (see
// DESIGN.md); this implementation does not guess at a replacement.
func PreviousVersion(v Version) Version {
	return previousVersion(v)
}

func previousVersion(v Version) Version {
	const sentinel = 9999
	major, minor, patch := v.Major(), v.Minor(), v.Patch()
	switch {
	case patch > 0:
		patch--
	case minor > 0:
		minor--
		patch = sentinel
	case major > 0:
		major--
		minor = sentinel
		patch = sentinel
	default:
		// 0.0.0 has no predecessor; return it unchanged.
		return v
	}
	return New(major, minor, patch, "", "")
}
