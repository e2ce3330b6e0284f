package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/membraneframework-labs/sebex/depgraph"
	"github.com/membraneframework-labs/sebex/workspace"
)

// graphCommand builds and prints the dependents graph (C3) over the
// active profile: --view=dependents (default) prints each package's
// direct dependents, --view=phases prints, for every package in turn, the
// upgrade-phase partition seeded from that package (a "whole graph" view
// absent an explicit source list, which `release plan` takes instead).
type graphCommand struct {
	view string
}

func (c *graphCommand) Name() string      { return "graph" }
func (c *graphCommand) Args() string      { return "[--view dependents|phases]" }
func (c *graphCommand) ShortHelp() string { return "Print the dependents graph or its upgrade phases" }

func (c *graphCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&c.view, "view", "dependents", "dependents|phases")
}

func (c *graphCommand) Run(wctx *workspace.Context, args []string) error {
	repos, err := activeRepos(wctx)
	if err != nil {
		return err
	}
	ctx, cancel := interruptibleContext()
	defer cancel()
	db, err := buildDatabase(ctx, wctx, repos)
	if err != nil {
		return err
	}
	g, err := depgraph.BuildDependentsGraph(db)
	if err != nil {
		return err
	}

	switch c.view {
	case "phases":
		for _, pkg := range g.Packages() {
			phases := g.UpgradePhases(pkg)
			fmt.Printf("%s:\n", pkg)
			for i, phase := range phases {
				fmt.Printf("  phase %d: %v\n", i, phase)
			}
		}
	default:
		for _, pkg := range g.Packages() {
			dependents := g.DependentsOf(pkg)
			names := make([]string, 0, len(dependents))
			for name := range dependents {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Printf("%s: %s\n", pkg, strings.Join(names, " "))
		}
	}
	return nil
}
