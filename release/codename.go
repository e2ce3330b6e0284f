package release

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// Codename computes a deterministic three-word human identifier
// ("adverb adjective noun") for a release plan, derived from a SHA-256
// digest of its shape: the sources sorted by project, then, phase by
// phase, each project's handle, from/to versions and the name and target
// spec of each dependency update. Stages, spans, languages, publish flags
// and from-specs are not hashed, so executor progress leaves the codename
// unchanged. The result is a value the operator can pronounce instead of
// comparing hex digests by eye.
func Codename(s *State) string {
	h := sha256.New()
	hashState(h, s)
	sum := h.Sum(nil)

	i1 := binary.BigEndian.Uint32(sum[0:4]) % uint32(len(adverbs))
	i2 := binary.BigEndian.Uint32(sum[4:8]) % uint32(len(adjectives))
	i3 := binary.BigEndian.Uint32(sum[8:12]) % uint32(len(nouns))

	return adverbs[i1] + " " + adjectives[i2] + " " + nouns[i3]
}

type hasher interface {
	Write(p []byte) (int, error)
}

func hashBytes(h hasher, b []byte) {
	h.Write(b)
	h.Write([]byte{0}) // length-separator, so "ab","c" != "a","bc"
}

func hashString(h hasher, s string) {
	hashBytes(h, []byte(s))
}

func hashState(h hasher, s *State) {
	names := make([]string, 0, len(s.Sources))
	for handle := range s.Sources {
		names = append(names, handle.String())
	}
	sort.Strings(names)
	for _, n := range names {
		hashString(h, n)
		for handle, v := range s.Sources {
			if handle.String() == n {
				hashString(h, v.String())
				break
			}
		}
	}

	for _, phase := range s.Phases {
		for _, proj := range phase.Projects {
			hashString(h, proj.Project.String())
			hashString(h, proj.FromVersion.String())
			hashString(h, proj.ToVersion.String())
			for _, du := range proj.DependencyUpdates {
				hashString(h, du.Name)
				hashString(h, du.ToSpec.String())
			}
		}
	}
}
