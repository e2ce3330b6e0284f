// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

package vcsrepo

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// cmd wraps exec.Cmd with context-aware graceful shutdown: a cancelled ctx
// sends SIGINT first and only escalates to Kill if the subprocess is still
// alive a minute later.
type cmd struct {
	ctx    context.Context
	cancel context.CancelFunc
	Cmd    *exec.Cmd
}

func commandContext(ctx context.Context, dir, name string, arg ...string) cmd {
	ctx2, cancel := context.WithCancel(context.Background())

	c := cmd{
		Cmd:    exec.CommandContext(ctx2, name, arg...),
		cancel: cancel,
		ctx:    ctx,
	}
	c.Cmd.Dir = dir
	c.Cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}

	return c
}

// CombinedOutput behaves like (*os/exec.Cmd).CombinedOutput, but terminates
// the subprocess with os.Interrupt on ctx cancellation instead of leaving it
// running.
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

	if err := c.Cmd.Start(); err != nil {
		return nil, err
	}

	waitDone := make(chan struct{})
	defer close(waitDone)
	go func() {
		select {
		case <-c.ctx.Done():
			if err := c.Cmd.Process.Signal(os.Interrupt); err != nil {
				c.cancel()
			} else {
				stopCancel := time.AfterFunc(time.Minute, c.cancel).Stop
				<-waitDone
				stopCancel()
			}
		case <-waitDone:
		}
	}()

	err := c.Cmd.Wait()
	return b.Bytes(), err
}
