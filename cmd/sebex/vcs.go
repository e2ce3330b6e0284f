package main

import (
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/vcsrepo"
	"github.com/membraneframework-labs/sebex/workspace"
)

// githubAPIBase is the hosting API this CLI's VCS adapter talks to.
// Overridable for GitHub Enterprise or a test double.
func githubAPIBase() string {
	if v := os.Getenv("SEBEX_GITHUB_API"); v != "" {
		return v
	}
	return "https://api.github.com"
}

var sshRemote = regexp.MustCompile(`^(?:git@|ssh://git@)([^:/]+)[:/]([^/]+)/([^/]+?)(?:\.git)?$`)
var httpsRemote = regexp.MustCompile(`^https?://([^/]+)/([^/]+)/([^/]+?)(?:\.git)?$`)

// parseGitHubRemote extracts (owner, repo) from a git remote URL in either
// the ssh or https shape GitHub publishes.
func parseGitHubRemote(remote string) (owner, repo string, ok bool) {
	remote = strings.TrimSpace(remote)
	if m := sshRemote.FindStringSubmatch(remote); m != nil {
		return m[2], m[3], true
	}
	if m := httpsRemote.FindStringSubmatch(remote); m != nil {
		return m[2], m[3], true
	}
	return "", "", false
}

// openVCS opens the git repository checked out at dir and, if its origin
// remote is GitHub-shaped, attaches hosting so pull-request/release
// operations work too.
func openVCS(ctx *workspace.Context, dir string) (*vcsrepo.GitRepo, error) {
	repo, err := vcsrepo.New("", dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open repository at %s", dir)
	}

	out, err := exec.Command("git", "-C", dir, "remote", "get-url", "origin").Output()
	if err != nil {
		// No remote configured yet (freshly bootstrapped, never pushed):
		// hosting-dependent operations will fail later with a clear error.
		return repo, nil
	}

	owner, name, ok := parseGitHubRemote(string(out))
	if !ok {
		return repo, nil
	}
	return repo.WithHosting(githubAPIBase(), owner, name, ctx.VCSToken), nil
}
