package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/workspace"
)

// bootstrapCommand initializes a fresh workspace: the .sebex metadata
// directory and a default profile that matches every repository (or, with
// -o, scopes the default profile to one organization's repositories by
// convention, "org-*", leaving the actual clone to a later `sync`).
type bootstrapCommand struct {
	org string
}

func (c *bootstrapCommand) Name() string      { return "bootstrap" }
func (c *bootstrapCommand) Args() string      { return "[-o ORG]" }
func (c *bootstrapCommand) ShortHelp() string { return "Initialize a new sebex workspace" }

func (c *bootstrapCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&c.org, "o", "", "scope the default profile to ORG's repositories")
}

func (c *bootstrapCommand) Run(ctx *workspace.Context, args []string) error {
	profilesDir := filepath.Join(ctx.MetaDir(), "profiles")
	if err := os.MkdirAll(profilesDir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", profilesDir)
	}

	pattern := "*"
	if c.org != "" {
		pattern = c.org + "-*"
	}

	defaultProfile := filepath.Join(profilesDir, "default")
	if _, err := os.Stat(defaultProfile); err == nil {
		logger.Sebexfln("profile already exists at %s, leaving it untouched", defaultProfile)
		return nil
	}

	content := fmt.Sprintf("# generated by `sebex bootstrap`\n%s\n", pattern)
	if err := os.WriteFile(defaultProfile, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", defaultProfile)
	}

	logger.Sebexfln("workspace initialized at %s", ctx.Root)
	return nil
}
