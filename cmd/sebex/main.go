// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sebex is the CLI entry point for the release orchestrator: a
// thin dispatcher over workspace/analysis/depgraph/planner/release/executor.
// Build the command list, match os.Args[1], register subcommand flags on a
// private FlagSet, run.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/membraneframework-labs/sebex/log"
	"github.com/membraneframework-labs/sebex/workspace"
)

var (
	verbose = flag.Bool("v", false, "enable verbose logging")
	logger  = log.New(os.Stdout)
)

// command is the contract every subcommand implements.
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	Register(*flag.FlagSet)
	Run(ctx *workspace.Context, args []string) error
}

func main() {
	commands := []command{
		&bootstrapCommand{},
		&syncCommand{},
		&lsCommand{},
		&graphCommand{},
		&releaseCommand{},
		&foreachCommand{},
	}

	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage: sebex <command>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr)
		w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
		for _, c := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", c.Name(), c.ShortHelp())
		}
		w.Flush()
		fmt.Fprintln(os.Stderr)
	}

	if len(os.Args) <= 1 || strings.ToLower(os.Args[1]) == "-h" || strings.Contains(strings.ToLower(os.Args[1]), "help") {
		usage()
		os.Exit(1)
	}

	for _, c := range commands {
		if c.Name() != os.Args[1] {
			continue
		}

		fs := flag.NewFlagSet(c.Name(), flag.ExitOnError)
		fs.BoolVar(verbose, "v", false, "enable verbose logging")
		root := fs.String("root", "", "workspace root (default: current directory)")
		profile := fs.String("profile", "", "active profile name (default: \"default\")")
		jobs := fs.Int("jobs", 0, "analyzer worker pool degree (default: max(32, NumCPU+4))")
		c.Register(fs)
		resetUsage(fs, c.Name(), c.Args())

		if err := fs.Parse(os.Args[2:]); err != nil {
			fs.Usage()
			os.Exit(1)
		}

		logger.SetQuiet(!*verbose)

		ctx, err := workspace.New(*root, *profile, *jobs)
		if err != nil {
			fatal(err)
		}
		ctx.RegistryToken = os.Getenv("SEBEX_REGISTRY_TOKEN")
		ctx.VCSToken = os.Getenv("SEBEX_VCS_TOKEN")

		if err := c.Run(ctx, fs.Args()); err != nil {
			fatal(err)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "%s: no such command\n", os.Args[1])
	usage()
	os.Exit(1)
}

// interruptibleContext returns a context cancelled by the first interrupt
// signal, so ^C unwinds the analyzer worker pool and any in-flight git
// subprocess instead of orphaning them.
func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// fatal prints err in red, FATAL:-prefixed, and exits non-zero.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("FATAL: %v", err))
	os.Exit(1)
}

// breakpoint prints a yellow, non-fatal stop notice: the release is paused,
// not failed.
func breakpoint(msg string) {
	fmt.Fprintln(os.Stderr, color.YellowString("sebex: stopped: %s", msg))
}

func resetUsage(fs *flag.FlagSet, name, args string) {
	var flagBlock bytes.Buffer
	fw := tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	hasFlags := false
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		fmt.Fprintf(fw, "\t-%s\t%s\n", f.Name, f.Usage)
	})
	fw.Flush()

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sebex %s %s\n", name, args)
		if hasFlags {
			fmt.Fprintln(fs.Output(), "\nFlags:")
			fmt.Fprint(fs.Output(), flagBlock.String())
		}
	}
}
