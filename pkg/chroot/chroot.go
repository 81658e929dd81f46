// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package chroot runs commands inside the staged root. The target system's
//own tools (emerge, eselect, systemctl, ...) do the heavy lifting; this
//package only gets them invoked in the right root.
package chroot

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/deskprov/deskprov/pkg/log"
)

// Runner executes commands inside a root. Implemented over log.Cmd so tests
// can hijack every invocation.
type Runner struct {
	Root string
}

func New(root string) *Runner { return &Runner{Root: root} }

// Run executes prog with args inside the root. Output is captured and logged
// on failure.
func (r *Runner) Run(prog string, args ...string) error {
	_, err := r.Output(prog, args...)
	return err
}

// Output is Run, but returns the combined output for callers that parse it.
func (r *Runner) Output(prog string, args ...string) (string, error) {
	cmd := exec.Command("chroot", append([]string{r.Root, prog}, args...)...)
	out, success := log.Cmd(cmd)
	if !success {
		return out, fmt.Errorf("chroot %s %s failed", r.Root, prog)
	}
	return out, nil
}

// RunInput is Run with data piped to the command's stdin (chpasswd etc).
// Stdin does not survive log.Cmd hijacking, so tests see only the argv.
func (r *Runner) RunInput(stdin io.Reader, prog string, args ...string) error {
	cmd := exec.Command("chroot", append([]string{r.Root, prog}, args...)...)
	cmd.Stdin = stdin
	_, success := log.Cmd(cmd)
	if !success {
		return fmt.Errorf("chroot %s %s failed", r.Root, prog)
	}
	return nil
}
