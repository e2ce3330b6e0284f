package main

import (
	"context"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/analyzer"
	"github.com/membraneframework-labs/sebex/internal/cfg"
	"github.com/membraneframework-labs/sebex/workspace"
)

// defaultLanguage is the only analyzer this CLI wires up: workspace
// discovery and manifest storage belong to an external collaborator, so
// one language keeps the profile-driven repo-as-project model honest
// without inventing a discovery mechanism of its own.
const defaultLanguage analysis.Language = "go"

// activeRepos lists the workspace's checked-out repositories, filtered by
// the active profile. Each top-level directory under the workspace root
// (other than the .sebex metadata directory) is a candidate repository;
// discovering projects *within* a repository is the external workspace
// manifest's job, so each repo is treated as exactly one project, at its
// root.
func activeRepos(ctx *workspace.Context) ([]string, error) {
	entries, err := os.ReadDir(ctx.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "read workspace root %s", ctx.Root)
	}

	var repos []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == workspace.MetaDirName {
			continue
		}
		repos = append(repos, e.Name())
	}
	sort.Strings(repos)

	profile, err := cfg.LoadProfile(ctx.ProfilePath())
	if err != nil {
		return nil, err
	}
	return profile.Select(repos)
}

// buildDatabase runs the analyzer pool over every active repo (one
// project per repo, per activeRepos) and assembles the resulting
// analysis.Database the graph and planner need.
func buildDatabase(ctx context.Context, wctx *workspace.Context, repos []string) (*analysis.Database, error) {
	handles := make([]analysis.ProjectHandle, len(repos))
	languages := make([]analysis.Language, len(repos))
	jobs := make([]analyzer.Job, len(repos))
	for i, r := range repos {
		h := analysis.ProjectHandle{Repo: r}
		handles[i] = h
		languages[i] = defaultLanguage
		jobs[i] = analyzer.Job{Handle: h, Language: defaultLanguage}
	}

	pool := analyzer.Pool{
		Degree: wctx.Jobs,
		Analyzers: map[analysis.Language]adapters.Analyzer{
			defaultLanguage: analyzer.Subprocess{
				Command: analyzerCommand(),
				RepoPath: func(h analysis.ProjectHandle) string {
					return wctx.RepoPath(h.Repo)
				},
			},
		},
	}

	entries, err := pool.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return analysis.NewDatabase(handles, languages, entries)
}

// analyzerCommand names the out-of-process per-language tool invoked for
// every project, overridable for environments that install it somewhere
// other than $PATH.
func analyzerCommand() string {
	if c := os.Getenv("SEBEX_ANALYZER"); c != "" {
		return c
	}
	return "sebex-analyze"
}
