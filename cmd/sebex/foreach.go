package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/workspace"
)

// foreachCommand runs a shell command in every active repository's
// checkout, the bulk-maintenance operation the release workflow itself
// has no use for but every operator eventually needs (a lint fix, a CI
// config tweak, a dependency bump applied identically everywhere).
// It iterates the same active-repo set as sync, and with -pr follows the
// executor's branch workflow ad hoc: open a branch, run the command,
// commit whatever changed, push it, and open a pull request.
// Flags come before CMD: everything from CMD on is joined into the shell
// command. There is no --no-pr flag; leaving out -pr has that effect.
type foreachCommand struct {
	pr    bool
	title string
	body  string
}

func (c *foreachCommand) Name() string { return "foreach" }
func (c *foreachCommand) Args() string { return "[--pr] [-t TITLE] [-b BODY] CMD..." }
func (c *foreachCommand) ShortHelp() string {
	return "Run a command in every active repository, optionally opening a PR"
}

func (c *foreachCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.pr, "pr", false, "commit any changes and open a pull request")
	fs.StringVar(&c.title, "t", "", "pull request title (default: the command itself)")
	fs.StringVar(&c.body, "b", "", "pull request body")
}

func (c *foreachCommand) Run(wctx *workspace.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("foreach: expected a command")
	}
	shellCmd := strings.Join(args, " ")

	repos, err := activeRepos(wctx)
	if err != nil {
		return err
	}

	ctx, cancel := interruptibleContext()
	defer cancel()
	branch := c.branchName()

	for _, repo := range repos {
		dir := wctx.RepoPath(repo)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			logger.Sebexfln("%s: not checked out, skipping", repo)
			continue
		}

		if err := c.runOne(ctx, wctx, repo, dir, shellCmd, branch); err != nil {
			return errors.Wrapf(err, "%s", repo)
		}
	}
	return nil
}

func (c *foreachCommand) runOne(ctx context.Context, wctx *workspace.Context, repo, dir, shellCmd, branch string) error {
	vcs, err := openVCS(wctx, dir)
	if err != nil {
		return err
	}

	if c.pr {
		if err := vcs.Checkout(ctx, branch, true, true); err != nil {
			return errors.Wrapf(err, "open branch %s", branch)
		}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", shellCmd)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		logger.Logf("%s: %s\n", repo, out)
	}
	if err != nil {
		return errors.Wrapf(err, "run command")
	}

	if !c.pr {
		return nil
	}

	changed, err := vcs.IsChanged(ctx, ".")
	if err != nil {
		return errors.Wrap(err, "check for changes")
	}
	if !changed {
		logger.Sebexfln("%s: command made no changes, nothing to commit", repo)
		return nil
	}

	title := c.title
	if title == "" {
		title = shellCmd
	}
	if err := vcs.Commit(ctx, title, "."); err != nil {
		return errors.Wrap(err, "commit")
	}
	if err := vcs.Push(ctx, adapters.PushRef{Branch: branch}); err != nil {
		return errors.Wrapf(err, "push %s", branch)
	}

	if _, err := vcs.OpenPullRequest(ctx, title, c.body, branch, "main"); err != nil {
		return errors.Wrap(err, "open pull request")
	}
	logger.Sebexfln("%s: opened pull request for %s", repo, branch)
	return nil
}

// branchName derives a foreach branch name from the current time so
// repeated foreach runs never collide with each other's leftover branches.
func (c *foreachCommand) branchName() string {
	return fmt.Sprintf("sebex-foreach/%d", time.Now().Unix())
}
