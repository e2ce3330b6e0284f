// Package cfg loads the workspace's profile definitions: the
// newline-delimited repository-name glob lists that select which
// checked-out repositories a sebex invocation treats as "active".
//
// A profile is a flat list of glob lines, so this loader is schema-first:
// one type, one parse function, no dynamic-tree intermediate.
package cfg

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is a parsed `profiles/<name>` file: an ordered list of glob
// patterns selecting repository names, with "!"-prefixed patterns
// excluding rather than including.
type Profile struct {
	Includes []string
	Excludes []string
}

// ReadProfile parses a profile definition from r.
func ReadProfile(r io.Reader) (*Profile, error) {
	p := &Profile{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "!") {
			pattern := strings.TrimSpace(strings.TrimPrefix(line, "!"))
			if pattern == "" {
				continue
			}
			p.Excludes = append(p.Excludes, pattern)
			continue
		}
		p.Includes = append(p.Includes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cfg: read profile")
	}
	return p, nil
}

// LoadProfile reads and parses the profile file at path. A missing file is
// treated as the profile that matches everything (a workspace need not
// define a default profile to be usable).
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Profile{Includes: []string{"*"}}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cfg: open %s", path)
	}
	defer f.Close()

	p, err := ReadProfile(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cfg: parse %s", path)
	}
	return p, nil
}

// Matches reports whether repo is selected by the profile: it must match
// at least one include pattern and no exclude pattern.
func (p *Profile) Matches(repo string) (bool, error) {
	included := false
	for _, pattern := range p.Includes {
		ok, err := filepath.Match(pattern, repo)
		if err != nil {
			return false, errors.Wrapf(err, "cfg: bad pattern %q", pattern)
		}
		if ok {
			included = true
			break
		}
	}
	if !included {
		return false, nil
	}

	for _, pattern := range p.Excludes {
		ok, err := filepath.Match(pattern, repo)
		if err != nil {
			return false, errors.Wrapf(err, "cfg: bad pattern %q", pattern)
		}
		if ok {
			return false, nil
		}
	}
	return true, nil
}

// Select filters repos to those the profile matches, preserving order.
func (p *Profile) Select(repos []string) ([]string, error) {
	var out []string
	for _, r := range repos {
		ok, err := p.Matches(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
