package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/workspace"
)

// syncCommand brings every profile-selected repository's local checkout
// up to date: fetch and/or fast-forward pull. It does not clone: this CLI
// tracks no remote URL for a repository that isn't checked out yet (that
// belongs to the external workspace manifest), so such a repository is
// reported and skipped whether or not -clone is set; -clone only selects
// which message is logged for it.
type syncCommand struct {
	clone bool
	fetch bool
	pull  bool
}

func (c *syncCommand) Name() string { return "sync" }
func (c *syncCommand) Args() string { return "[--clone] [--fetch] [--pull]" }
func (c *syncCommand) ShortHelp() string {
	return "Fetch and update the active profile's checked-out repositories"
}

func (c *syncCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.clone, "clone", true, "report missing repositories as needing a manual clone (nothing is cloned)")
	fs.BoolVar(&c.fetch, "fetch", true, "fetch from each repository's remote")
	fs.BoolVar(&c.pull, "pull", true, "fast-forward pull each repository's current branch")
}

func (c *syncCommand) Run(wctx *workspace.Context, args []string) error {
	repos, err := activeRepos(wctx)
	if err != nil {
		return err
	}

	ctx, cancel := interruptibleContext()
	defer cancel()
	for _, repo := range repos {
		dir := wctx.RepoPath(repo)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if !c.clone {
				logger.Sebexfln("%s: not checked out, skipping", repo)
				continue
			}
			logger.Sebexfln("%s: not checked out and no remote is known; skipping (clone it manually once, sync will maintain it from there)", repo)
			continue
		}

		vcs, err := openVCS(wctx, dir)
		if err != nil {
			return err
		}

		if c.fetch {
			if err := vcs.Fetch(ctx); err != nil {
				return errors.Wrapf(err, "%s: fetch", repo)
			}
		}
		if c.pull {
			if err := vcs.Pull(ctx); err != nil {
				return errors.Wrapf(err, "%s: pull", repo)
			}
		}
		logger.Sebexfln("%s: up to date", repo)
	}
	return nil
}
