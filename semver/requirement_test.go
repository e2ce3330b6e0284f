package semver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirementOperators(t *testing.T) {
	cases := []struct {
		in   string
		op   Operator
		base string
		pin  Pin
	}{
		{"1.2.3", OpEQ, "1.2.3", PinMinor},
		{"== 1.2.3", OpEQ, "1.2.3", PinMinor},
		{"!= 1.2.3", OpNE, "1.2.3", PinMinor},
		{">= 1.2.3", OpGE, "1.2.3", PinMinor},
		{"<= 1.2.3", OpLE, "1.2.3", PinMinor},
		{"> 1.2.3", OpGT, "1.2.3", PinMinor},
		{"< 1.2.3", OpLT, "1.2.3", PinMinor},
		{"~> 1.2.3", OpPessimistic, "1.2.3", PinMinor},
		{"~> 1.2", OpPessimistic, "1.2.0", PinMajor},
		{"1.2", OpEQ, "1.2.0", PinMajor},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			req, err := ParseVersionRequirement(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.op, req.Op)
			assert.Equal(t, c.base, req.Base.String())
			assert.Equal(t, c.pin, req.Pin)
		})
	}
}

// TestRequirementRoundTrip checks that for every stable base and every
// operator, parse(print(req)) == req.
func TestRequirementRoundTrip(t *testing.T) {
	ops := []Operator{OpEQ, OpNE, OpGT, OpLT, OpGE, OpLE, OpPessimistic}
	bases := []string{"0.1.0", "1.0.0", "1.2.3", "2.0.0"}
	for _, base := range bases {
		for _, op := range ops {
			r := VersionRequirement{Op: op, Base: MustParse(base), Pin: PinMinor}
			printed := r.String()
			parsed, err := ParseVersionRequirement(printed)
			require.NoError(t, err, printed)
			assert.Equal(t, r.Op, parsed.Op, printed)
			assert.True(t, r.Base.Equal(parsed.Base), printed)
			assert.Equal(t, r.Pin, parsed.Pin, printed)
		}
	}
}

func TestPessimisticMajorPin(t *testing.T) {
	req := VersionRequirement{Op: OpPessimistic, Base: MustParse("1.2.0"), Pin: PinMajor}
	matches := []string{"1.2.0", "1.3.0", "1.99.0", "1.2.5"}
	for _, m := range matches {
		assert.True(t, req.Match(MustParse(m)), "~> 1.2 should match %s", m)
	}
	nonMatches := []string{"1.1.9", "2.0.0", "0.9.0"}
	for _, m := range nonMatches {
		assert.False(t, req.Match(MustParse(m)), "~> 1.2 should not match %s", m)
	}
}

func TestPessimisticMinorPin(t *testing.T) {
	req := VersionRequirement{Op: OpPessimistic, Base: MustParse("1.2.3"), Pin: PinMinor}
	matches := []string{"1.2.3", "1.2.4", "1.2.99"}
	for _, m := range matches {
		assert.True(t, req.Match(MustParse(m)), "~> 1.2.3 should match %s", m)
	}
	nonMatches := []string{"1.2.2", "1.3.0", "2.0.0"}
	for _, m := range nonMatches {
		assert.False(t, req.Match(MustParse(m)), "~> 1.2.3 should not match %s", m)
	}
}

func TestStableRequirementRejectsPrerelease(t *testing.T) {
	reqs := []VersionRequirement{
		{Op: OpEQ, Base: MustParse("1.0.0"), Pin: PinMinor},
		{Op: OpGE, Base: MustParse("1.0.0"), Pin: PinMinor},
		{Op: OpPessimistic, Base: MustParse("1.0.0"), Pin: PinMajor},
	}
	for _, r := range reqs {
		assert.False(t, r.Match(MustParse("1.5.0-rc.1")), r.String())
	}
}

// TestPessimisticPropertyGrid exhaustively checks the pessimistic property over a small
// integer grid, matching the spirit of a property test without pulling in
// a QuickCheck-style dependency the rest of the pack doesn't use either.
func TestPessimisticPropertyGrid(t *testing.T) {
	for maj := 0; maj < 3; maj++ {
		for min := 0; min < 4; min++ {
			base := New(uint64(maj), uint64(min), 3, "", "")
			reqMajor := VersionRequirement{Op: OpPessimistic, Base: base, Pin: PinMajor}
			reqMinor := VersionRequirement{Op: OpPessimistic, Base: base, Pin: PinMinor}
			for tmaj := 0; tmaj < 4; tmaj++ {
				for tmin := 0; tmin < 6; tmin++ {
					for tpatch := 0; tpatch < 6; tpatch++ {
						v := New(uint64(tmaj), uint64(tmin), uint64(tpatch), "", "")
						wantMajor := tmaj == maj && tmin >= min
						wantMinor := tmaj == maj && tmin == min && tpatch >= 3
						name := fmt.Sprintf("~>%d.%d vs %s", maj, min, v.String())
						assert.Equal(t, wantMajor, reqMajor.Match(v), name)
						assert.Equal(t, wantMinor, reqMinor.Match(v), name)
					}
				}
			}
		}
	}
}
