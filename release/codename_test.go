package release

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/semver"
)

func sampleState() *State {
	return &State{
		Sources: map[analysis.ProjectHandle]semver.Version{
			analysis.ProjectHandle{Repo: "a"}: semver.MustParse("1.1.0"),
		},
		Phases: []PhaseState{
			{Projects: []ProjectState{
				{
					Project:     analysis.ProjectHandle{Repo: "a"},
					FromVersion: semver.MustParse("1.0.0"),
					ToVersion:   semver.MustParse("1.1.0"),
				},
			}},
		},
	}
}

func TestCodenameIsDeterministic(t *testing.T) {
	a := Codename(sampleState())
	b := Codename(sampleState())
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestCodenameChangesWithShape(t *testing.T) {
	s := sampleState()
	before := Codename(s)

	s.Phases[0].Projects[0].ToVersion = semver.MustParse("2.0.0")
	after := Codename(s)

	assert.NotEqual(t, before, after)
}

func TestCodenameIsAThreeWordPhrase(t *testing.T) {
	name := Codename(sampleState())
	words := 1
	for _, r := range name {
		if r == ' ' {
			words++
		}
	}
	assert.Equal(t, 3, words)
}
