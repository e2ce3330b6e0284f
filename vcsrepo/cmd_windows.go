// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package vcsrepo

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// cmd wraps exec.Cmd. Windows has no SIGINT equivalent exec can send, so
// cancellation just kills the process outright via CommandContext.
type cmd struct {
	Cmd *exec.Cmd
}

func commandContext(ctx context.Context, dir, name string, arg ...string) cmd {
	c := cmd{Cmd: exec.CommandContext(ctx, name, arg...)}
	c.Cmd.Dir = dir
	return c
}

func (c cmd) CombinedOutput() ([]byte, error) {
	if c.Cmd.Stdout != nil {
		return nil, errors.New("vcsrepo: Stdout already set")
	}
	if c.Cmd.Stderr != nil {
		return nil, errors.New("vcsrepo: Stderr already set")
	}
	var b bytes.Buffer
	c.Cmd.Stdout = &b
	c.Cmd.Stderr = &b
	err := c.Cmd.Run()
	return b.Bytes(), err
}
