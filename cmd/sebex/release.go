package main

import (
	"bufio"
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/depgraph"
	"github.com/membraneframework-labs/sebex/executor"
	"github.com/membraneframework-labs/sebex/planner"
	"github.com/membraneframework-labs/sebex/registry"
	"github.com/membraneframework-labs/sebex/release"
	"github.com/membraneframework-labs/sebex/semver"
	"github.com/membraneframework-labs/sebex/vcsrepo"
	"github.com/membraneframework-labs/sebex/workspace"
)

// releaseCommand groups the three release sub-operations (status, plan,
// proceed) behind one command name, the way `git remote add/remove/...`
// branches on a verb inside a single command rather than registering each
// verb as its own top-level command.
type releaseCommand struct {
	dry     bool
	sources sourceList
}

// sourceList collects repeated "-s proj:ver" flags.
type sourceList []string

func (s *sourceList) String() string { return strings.Join(*s, ",") }
func (s *sourceList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (c *releaseCommand) Name() string { return "release" }
func (c *releaseCommand) Args() string {
	return "status|plan [--dry] [-s proj:ver ...]|proceed [--dry]"
}
func (c *releaseCommand) ShortHelp() string { return "Inspect, plan or advance a release" }

func (c *releaseCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.dry, "dry", false, "describe the action without persisting or executing it")
	fs.Var(&c.sources, "s", "project:version to release (repeatable)")
}

func (c *releaseCommand) Run(wctx *workspace.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("release: expected a verb (status, plan, proceed)")
	}

	// The command's FlagSet stops at the verb, so flags written after it
	// ("release plan -s proj:ver", "release proceed --dry") are parsed here.
	dry := c.dry
	verbFlags := flag.NewFlagSet(c.Name()+" "+args[0], flag.ContinueOnError)
	c.Register(verbFlags)
	c.dry = dry
	if err := verbFlags.Parse(args[1:]); err != nil {
		return err
	}

	store := release.Store{MetaDir: wctx.MetaDir()}
	switch args[0] {
	case "status":
		return c.status(store)
	case "plan":
		return c.plan(wctx, store, args[1:])
	case "proceed":
		return c.proceed(wctx, store)
	default:
		return errors.Errorf("release: unknown verb %q", args[0])
	}
}

func (c *releaseCommand) status(store release.Store) error {
	state, err := store.Load()
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("no release in progress")
		return nil
	}

	fmt.Printf("release %s\n", release.Codename(state))
	for i, phase := range state.Phases {
		done := phase.IsDone()
		fmt.Printf("phase %d (done=%v):\n", i, done)
		for _, proj := range phase.Projects {
			fmt.Printf("  %s: %s -> %s [%s]\n", proj.Project, proj.FromVersion, proj.ToVersion, proj.Stage)
		}
	}
	return nil
}

func (c *releaseCommand) plan(wctx *workspace.Context, store release.Store, args []string) error {
	existing, err := store.Load()
	if err != nil {
		return err
	}
	if existing != nil && !existing.IsDone() {
		return errors.New("release: a release is already in progress (run `release status`); finish or abandon it before planning a new one")
	}

	sources, err := parseSources(c.sources)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return errors.New("release: plan requires at least one -s proj:version")
	}

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
	graph, err := depgraph.BuildDependentsGraph(db)
	if err != nil {
		return err
	}

	state, err := planner.Plan(sources, db, graph, planner.Options{Log: logger})
	if err != nil {
		return err
	}

	if c.dry {
		for _, phase := range state.Phases {
			for _, proj := range phase.Projects {
				fmt.Printf("%s: %s -> %s\n", proj.Project, proj.FromVersion, proj.ToVersion)
			}
		}
		return nil
	}

	if err := store.Save(state); err != nil {
		return err
	}
	logger.Sebexfln("planned release %s", release.Codename(state))
	return nil
}

func parseSources(raw sourceList) ([]planner.Source, error) {
	var out []planner.Source
	for _, s := range raw {
		i := strings.LastIndexByte(s, ':')
		// ProjectHandle itself may contain a ':' (repo:subpath), so split on
		// the *last* colon to separate off the version.
		if i < 0 {
			return nil, errors.Errorf("release: bad source %q, expected proj:version", s)
		}
		handle := analysis.ParseProjectHandle(s[:i])
		version, err := semver.Parse(s[i+1:])
		if err != nil {
			return nil, errors.Wrapf(err, "release: source %q", s)
		}
		out = append(out, planner.Source{Project: handle, Target: version})
	}
	return out, nil
}

func (c *releaseCommand) proceed(wctx *workspace.Context, store release.Store) error {
	state, err := store.Load()
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("no release in progress")
		return nil
	}

	if c.dry {
		phase, idx, ok := state.CurrentPhase()
		if !ok {
			fmt.Println("release is already done")
			return nil
		}
		fmt.Printf("phase %d would run next:\n", idx)
		for _, proj := range phase.Projects {
			if proj.Stage != release.Done {
				fmt.Printf("  %s: next stage after %s\n", proj.Project, proj.Stage)
			}
		}
		return nil
	}

	env, err := buildExecutorEnv(wctx, state)
	if err != nil {
		return err
	}

	ex := &executor.Executor{Store: &store, Env: env}
	ctx, cancel := interruptibleContext()
	defer cancel()
	outcome, err := ex.Proceed(ctx, state)
	if err != nil {
		return err
	}

	switch outcome {
	case executor.Finished:
		logger.Sebexfln("release complete")
	case executor.Stopped:
		breakpoint("a task needs operator attention; see the message above and rerun `release proceed` once resolved")
	}
	return nil
}

// buildExecutorEnv wires the concrete vcsrepo/registry adapters to every
// project this release touches, keyed by repository so each project gets
// its own checkout's VCS driver.
func buildExecutorEnv(wctx *workspace.Context, state *release.State) (*executor.Env, error) {
	vcsByRepo := map[string]*vcsrepo.GitRepo{}
	vcsFor := func(h analysis.ProjectHandle) (*vcsrepo.GitRepo, error) {
		if v, ok := vcsByRepo[h.Repo]; ok {
			return v, nil
		}
		v, err := openVCS(wctx, wctx.RepoPath(h.Repo))
		if err != nil {
			return nil, err
		}
		vcsByRepo[h.Repo] = v
		return v, nil
	}

	pub := registry.New("https://hex.example.invalid", wctx.RegistryToken, func(h analysis.ProjectHandle) string {
		return wctx.RepoPath(h.Repo)
	})

	manifestPath := func(h analysis.ProjectHandle) string { return wctx.RepoPath(h.Repo) + "/go.mod" }
	lockfilePath := func(h analysis.ProjectHandle) string { return wctx.RepoPath(h.Repo) + "/go.sum" }

	return &executor.Env{
		VCS: func(h analysis.ProjectHandle) (adapters.VCS, error) {
			return vcsFor(h)
		},
		Publisher:      pub,
		ManifestPath:   manifestPath,
		LockfilePath:   lockfilePath,
		UpdateLockfile: updateLockfile(wctx),
		DefaultBranch:  "main",
		Confirm:        confirmPrompt,
		Codename:       release.Codename(state),
		Sources:        state.Sources,
		Log:            logger,
	}, nil
}

// confirmPrompt asks the operator a yes/no question on stdin, the same
// interactive-confirmation shape the executor's force-push and auto-merge
// decisions need.
func confirmPrompt(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

// updateLockfile runs `go mod tidy` in the project's repository and
// reports whether go.sum changed.
func updateLockfile(wctx *workspace.Context) func(context.Context, analysis.ProjectHandle) (bool, error) {
	return func(ctx context.Context, h analysis.ProjectHandle) (bool, error) {
		dir := wctx.RepoPath(h.Repo)
		lockPath := dir + "/go.sum"

		before, _ := hashFile(lockPath)

		cmd := exec.CommandContext(ctx, "go", "mod", "tidy")
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			return false, errors.Wrapf(err, "go mod tidy: %s", out)
		}

		after, err := hashFile(lockPath)
		if err != nil {
			return false, err
		}
		return before != after, nil
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return string(sum[:]), nil
}
