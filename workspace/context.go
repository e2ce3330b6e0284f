// Package workspace bundles the process-wide facts a sebex invocation
// needs: where the workspace lives on disk, which profile selects its
// active projects, how many analyzer workers to run, and the credentials
// adapters authenticate with.
//
// Context is a small, explicitly-constructed struct threaded through every
// command instead of a package-level global, so tests can run concurrently
// against distinct workspaces and cmd/sebex never reaches for ambient
// state.
package workspace

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// MetaDirName is the directory inside the workspace root that holds the
// manifest, the release document, and profile definitions.
const MetaDirName = ".sebex"

// Context is the supporting context of a single sebex invocation.
type Context struct {
	// Root is the absolute path to the workspace: the directory containing
	// the checked-out repositories and the metadata directory.
	Root string

	// Profile names which `profiles/<name>` selects the active set of
	// projects; "" selects the default profile.
	Profile string

	// Jobs is the analyzer worker pool's degree of parallelism. Zero means
	// "use DefaultJobs()".
	Jobs int

	// RegistryToken and VCSToken authenticate the Publisher and VCS
	// adapters respectively; empty means "read from the environment" is
	// the adapter's own responsibility.
	RegistryToken string
	VCSToken      string
}

// DefaultJobs is the analyzer worker pool's default degree:
// max(32, NumCPU()+4).
func DefaultJobs() int {
	n := runtime.NumCPU() + 4
	if n < 32 {
		return 32
	}
	return n
}

// New resolves a Context rooted at root ("" means the current working
// directory), applying DefaultJobs() when jobs is zero.
func New(root, profile string, jobs int) (*Context, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "workspace: getwd")
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "workspace: resolve %s", root)
	}
	if jobs <= 0 {
		jobs = DefaultJobs()
	}
	return &Context{Root: abs, Profile: profile, Jobs: jobs}, nil
}

// MetaDir is the absolute path to this workspace's metadata directory.
func (c *Context) MetaDir() string {
	return filepath.Join(c.Root, MetaDirName)
}

// ProfilePath is the path to the active profile's definition file.
func (c *Context) ProfilePath() string {
	name := c.Profile
	if name == "" {
		name = "default"
	}
	return filepath.Join(c.MetaDir(), "profiles", name)
}

// RepoPath resolves a repository name to its absolute checkout path inside
// the workspace.
func (c *Context) RepoPath(repo string) string {
	return filepath.Join(c.Root, repo)
}
