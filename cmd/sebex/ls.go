package main

import (
	"flag"
	"fmt"

	"github.com/membraneframework-labs/sebex/workspace"
)

// lsCommand lists the active profile's repositories (--repos, the
// default) or the packages the analyzer reports for them (--projects).
type lsCommand struct {
	projects bool
	repos    bool
}

func (c *lsCommand) Name() string      { return "ls" }
func (c *lsCommand) Args() string      { return "[--projects] [--repos]" }
func (c *lsCommand) ShortHelp() string { return "List active repositories or their packages" }

func (c *lsCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.projects, "projects", false, "list package names instead of repositories")
	fs.BoolVar(&c.repos, "repos", false, "list repository names (default)")
}

func (c *lsCommand) Run(wctx *workspace.Context, args []string) error {
	repos, err := activeRepos(wctx)
	if err != nil {
		return err
	}

	if !c.projects {
		for _, r := range repos {
			fmt.Println(r)
		}
		return nil
	}

	ctx, cancel := interruptibleContext()
	defer cancel()
	db, err := buildDatabase(ctx, wctx, repos)
	if err != nil {
		return err
	}
	for _, h := range db.Handles() {
		entry, _ := db.Entry(h)
		fmt.Printf("%s\t%s\t%s\n", entry.Package, entry.Version, h)
	}
	return nil
}
