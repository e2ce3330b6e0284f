// Package adapters defines the external-system contracts the executor
// drives: per-language analysis, version control hosting, and registry
// publishing. Concrete implementations live in sibling packages (analyzer,
// vcsrepo, registry); the executor only ever depends on these interfaces.
package adapters

import (
	"context"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/release"
)

// Analyzer produces the analysis facts for one project, invoking an
// out-of-process per-language tool.
type Analyzer interface {
	Analyze(ctx context.Context, handle analysis.ProjectHandle) (analysis.Entry, error)
}

// PushRef names what Push sends: a branch or a tag (set one of them).
type PushRef struct {
	Branch string
	Tag    string
	Force  bool
}

// PRFilters narrows FindPullRequest's search.
type PRFilters struct {
	// Open, when true, restricts the search to still-open pull requests.
	Open bool
}

// PullRequest is the subset of a hosted pull request's state the executor
// tasks act on.
type PullRequest struct {
	Number           int
	URL              string
	Merged           bool
	ClosedUnmerged   bool
	Mergeable        bool
	CombinedStatus   string // "success", "pending", "failing"
	ChangesRequested bool
}

// VCS is the version-control/hosting adapter a repository is driven
// through. The method set is the release-workflow-shaped superset of what
// Masterminds/vcs's Repo interface (IsDirty, Branches, Tags, Get/Update)
// offers; the extra PR/tag/release operations model the hosting API (e.g.
// GitHub) layered on top of the plain VCS.
type VCS interface {
	IsDirty(ctx context.Context) (bool, error)
	IsTracked(ctx context.Context, path string) (bool, error)
	IsChanged(ctx context.Context, path string) (bool, error)
	// BranchExists reports whether branch is already known to the remote
	// (not merely present in the local checkout). OpenReleaseBranch uses
	// this to refuse opening a release branch that is already
	// remote-tracked rather than silently blowing it away.
	BranchExists(ctx context.Context, branch string) (bool, error)
	Checkout(ctx context.Context, branch string, ensureClean, deleteExisting bool) error
	Commit(ctx context.Context, message string, files ...string) error
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context, ref PushRef) error
	Fetch(ctx context.Context) error
	Pull(ctx context.Context) error
	DeleteLocalBranch(ctx context.Context, branch string) error
	DeleteRemoteBranch(ctx context.Context, branch string) error
	FindPullRequest(ctx context.Context, branch string, filters PRFilters) (*PullRequest, error)
	OpenPullRequest(ctx context.Context, title, body, branch, base string) (*PullRequest, error)
	// MergePullRequest merges an already-open, mergeable pull request. The
	// executor's PULL_REQUEST_MERGED task only calls this once its own
	// auto-merge predicate (or an operator confirmation) has passed.
	MergePullRequest(ctx context.Context, pr *PullRequest) error
	CreateRelease(ctx context.Context, tag, message string) error
}

// Publisher pushes one project's release to its language registry.
// Publish must be idempotent relative to the registry: re-publishing an
// already-published version is either a no-op success or a failure the
// adapter itself recognizes and converts to success.
type Publisher interface {
	Publish(ctx context.Context, proj release.ProjectState) (bool, error)
}

// Failure modes a VCS adapter reports; executor tasks match these with
// errors.Is rather than switching on adapter-specific error types.
var (
	// ErrPushRejected means the remote rejected a non-force push (someone
	// else moved the branch). The operator may confirm a force push retry.
	ErrPushRejected = errors.New("adapters: push rejected")

	// ErrNotClean means a checkout was requested with ensureClean=true
	// against a dirty working tree.
	ErrNotClean = errors.New("adapters: working tree not clean")

	// ErrRemoteRefNotFound means a branch/tag delete targeted a ref that
	// does not exist on the remote; callers observe this as SKIP.
	ErrRemoteRefNotFound = errors.New("adapters: remote ref not found")
)
