package semver

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// VersionRequirement is a single (operator, base, pin) constraint on a
// dependency's version, e.g. "~> 1.2" or ">= 2.0.0-rc.1".
type VersionRequirement struct {
	Op   Operator
	Base Version
	Pin  Pin
}

// ErrRequirementParse is wrapped by errors returned from
// ParseVersionRequirement.
var ErrRequirementParse = errors.New("invalid version requirement")

// ParseVersionRequirement parses a requirement string: an optional leading
// operator (two-character operators take precedence over one-character
// ones), then the base version. A "short" base of the form "M.m" is pinned
// MAJOR with an implicit zero patch; any other parseable version is pinned
// MINOR.
func ParseVersionRequirement(s string) (VersionRequirement, error) {
	rest := s
	op := OpEQ
	matched := false
	for _, cand := range operatorTokens {
		if strings.HasPrefix(rest, cand.tok) {
			op = cand.op
			rest = rest[len(cand.tok):]
			matched = true
			break
		}
	}
	_ = matched // absence of an operator means implicit "=="

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return VersionRequirement{}, errors.Wrapf(ErrRequirementParse, "%q: empty base version", s)
	}

	pin := PinMinor
	base := rest
	if isShortForm(rest) {
		pin = PinMajor
		base = rest + ".0"
	}

	v, err := Parse(base)
	if err != nil {
		return VersionRequirement{}, errors.Wrapf(ErrRequirementParse, "%q: %s", s, err)
	}

	return VersionRequirement{Op: op, Base: v, Pin: pin}, nil
}

// isShortForm reports whether s looks like "M.m" (exactly one dot, both
// sides pure digits, no prerelease/build) rather than a full M.m.p version.
func isShortForm(s string) bool {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// String renders the requirement back to its canonical textual form:
// MAJOR-pinned bases render "op M.m"; MINOR-pinned bases render the full
// "op M.m.p[-pre][+build]".
func (r VersionRequirement) String() string {
	base := r.baseString()
	if r.Op == OpEQ {
		return base
	}
	return r.Op.String() + " " + base
}

func (r VersionRequirement) baseString() string {
	if r.Pin == PinMajor {
		return fmt.Sprintf("%d.%d", r.Base.Major(), r.Base.Minor())
	}
	return r.Base.String()
}

// IsVersion reports that a VersionRequirement is the version-constrained
// branch of VersionSpec (always true; see VersionSpec).
func (r VersionRequirement) IsVersion() bool { return true }

// IsExternal reports that a VersionRequirement is not a git/path
// requirement (always false; see VersionSpec).
func (r VersionRequirement) IsExternal() bool { return false }

// Match reports whether v satisfies the requirement.
//
// A stable requirement (base has no prerelease/build) never matches a
// prerelease/build version. Otherwise ==, !=, <, <=, >, >= compare the
// pin-truncated versions; ~> is the pessimistic range described on
// OpPessimistic.
func (r VersionRequirement) Match(v Version) bool {
	if v.IsPrerelease() && !r.Base.IsPrerelease() {
		return false
	}

	if r.Op == OpPessimistic {
		lo := r.Pin.Truncate(r.Base)
		hi := r.Base.nextIncompatible(r.Pin)
		tv := r.Pin.Truncate(v)
		return !tv.Less(lo) && tv.Less(hi)
	}

	tv := r.Pin.Truncate(v)
	tb := r.Pin.Truncate(r.Base)
	c := tv.Compare(tb)
	switch r.Op {
	case OpEQ:
		return c == 0
	case OpNE:
		return c != 0
	case OpGT:
		return c > 0
	case OpLT:
		return c < 0
	case OpGE:
		return c >= 0
	case OpLE:
		return c <= 0
	default:
		return false
	}
}
