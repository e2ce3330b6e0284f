package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetween(t *testing.T) {
	cases := []struct {
		from, to string
		want     Bump
	}{
		{"1.0.0", "1.0.0", StayAsIs},
		{"1.0.0", "1.0.1", Patch},
		{"1.0.0", "1.1.0", Minor},
		{"1.0.0", "2.0.0", Major},
		{"1.0.1", "1.0.0", Unsolvable},
		{"1.0.0-rc.1", "1.1.0", Unsolvable},
		{"1.0.0", "1.1.0-rc.1", Unsolvable},
	}
	for _, c := range cases {
		got := Between(MustParse(c.from), MustParse(c.to))
		assert.Equal(t, c.want, got, "Between(%s, %s)", c.from, c.to)
	}
}

func TestBetweenApplyRoundTrip(t *testing.T) {
	// Bump.between(v, Bump.between(v,w).apply(v)) == Bump.between(v,w)
	// for stable v <= w.
	pairs := [][2]string{
		{"1.0.0", "1.0.0"},
		{"1.0.0", "1.0.5"},
		{"1.2.0", "1.9.0"},
		{"1.0.0", "5.0.0"},
	}
	for _, p := range pairs {
		v, w := MustParse(p[0]), MustParse(p[1])
		b := Between(v, w)
		applied := b.Apply(v)
		assert.Equal(t, b, Between(v, applied), "v=%s w=%s", p[0], p[1])
	}
}

func TestDerive(t *testing.T) {
	cases := []struct {
		self           Bump
		depMajorIsZero bool
		want           Bump
	}{
		{Patch, true, Patch},
		{Patch, false, Patch},
		{Minor, true, Minor},
		{Minor, false, Patch},
		{Major, false, Minor},
		{StayAsIs, false, StayAsIs},
		{Unsolvable, false, Unsolvable},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.self.Derive(c.depMajorIsZero))
	}
}

func TestMax(t *testing.T) {
	assert.Equal(t, Major, Max(Patch, Major))
	assert.Equal(t, Minor, Max(Minor, StayAsIs))
	assert.Equal(t, Unsolvable, Max(Major, Unsolvable))
}
