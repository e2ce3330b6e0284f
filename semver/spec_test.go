package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetingStableMajor(t *testing.T) {
	req := Targeting(MustParse("2.3.0"))
	assert.Equal(t, OpPessimistic, req.Op)
	assert.Equal(t, PinMajor, req.Pin)
	assert.Equal(t, "~> 2.3", req.String())
}

func TestTargetingStablePatch(t *testing.T) {
	req := Targeting(MustParse("2.3.4"))
	assert.Equal(t, OpPessimistic, req.Op)
	assert.Equal(t, PinMinor, req.Pin)
	assert.Equal(t, "~> 2.3.4", req.String())
}

func TestTargetingZeroMajor(t *testing.T) {
	// major == 0 never gets the MAJOR-pin shorthand, even at patch 0.
	req := Targeting(MustParse("0.3.0"))
	assert.Equal(t, PinMinor, req.Pin)
	assert.Equal(t, "~> 0.3.0", req.String())
}

func TestTargetingPrerelease(t *testing.T) {
	req := Targeting(MustParse("2.0.0-rc.1"))
	assert.Equal(t, OpEQ, req.Op)
	assert.Equal(t, PinMinor, req.Pin)
	assert.Equal(t, "2.0.0-rc.1", req.String())
}

// TestTargetingProperty checks that targeting(v) matches v and does
// not match v's next incompatible version.
func TestTargetingProperty(t *testing.T) {
	versions := []string{"0.1.0", "1.0.0", "1.5.0", "2.0.0", "2.3.4"}
	for _, vs := range versions {
		v := MustParse(vs)
		req := Targeting(v)
		assert.True(t, req.Match(v), "targeting(%s) should match itself", vs)
		next := v.NextIncompatible(req.Pin)
		assert.False(t, req.Match(next), "targeting(%s) should not match next-incompatible %s", vs, next)
	}
}
