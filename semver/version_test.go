package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{"1.2.3", "0.1.0", "2.0.0-rc.1", "1.0.0+build.5", "10.20.30"}
	for _, c := range cases {
		v, err := Parse(c)
		require.NoError(t, err)
		assert.Equal(t, c, v.String())
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not-a-version")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestCompareOrdering(t *testing.T) {
	assert.True(t, MustParse("1.0.0").Less(MustParse("1.0.1")))
	assert.True(t, MustParse("1.0.0").Less(MustParse("1.1.0")))
	assert.True(t, MustParse("1.0.0").Less(MustParse("2.0.0")))
	assert.True(t, MustParse("1.0.0-rc.1").Less(MustParse("1.0.0")))
	assert.True(t, MustParse("1.0.0").Equal(MustParse("1.0.0")))
}

func TestIsPrerelease(t *testing.T) {
	assert.True(t, MustParse("1.0.0-rc.1").IsPrerelease())
	assert.True(t, MustParse("1.0.0+build").IsPrerelease())
	assert.False(t, MustParse("1.0.0").IsPrerelease())
}

func TestPreviousVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.2.3", "1.2.2"},
		{"1.2.0", "1.1.9999"},
		{"1.0.0", "0.9999.9999"},
		{"0.0.0", "0.0.0"},
	}
	for _, tt := range tests {
		got := PreviousVersion(MustParse(tt.in))
		assert.Equal(t, tt.want, got.String(), "previousVersion(%s)", tt.in)
	}
}

func TestTruncate(t *testing.T) {
	v := MustParse("1.2.3")
	assert.Equal(t, "1.2.0", PinMajor.Truncate(v).String())
	assert.Equal(t, "1.2.3", PinMinor.Truncate(v).String())
}
