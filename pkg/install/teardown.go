// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"fmt"
	"os/exec"
	fp "path/filepath"

	"github.com/deskprov/deskprov/pkg/log"

	"golang.org/x/sys/unix"
)

//seam for tests
var syncFs = unix.Sync

// Teardown releases everything the run mounted under the staging root, then
// syncs. Every action is attempted regardless of earlier failures; all
// errors come back together. A half-torn-down tree with one wedged mount
// still gets the other eight actions.
func (ins *Install) Teardown() (errs []error) {
	sr := ins.cfg.StagingRoot
	actions := []struct {
		desc string
		run  func() error
	}{
		{"unmount proc", func() error { return umountRec(fp.Join(sr, "proc")) }},
		{"unmount sys", func() error { return umountRec(fp.Join(sr, "sys")) }},
		{"unmount dev", func() error { return umountRec(fp.Join(sr, "dev")) }},
		{"unmount run", func() error { return umountRec(fp.Join(sr, "run")) }},
		{"unmount home", func() error { return umount(fp.Join(sr, "home")) }},
		{"unmount var", func() error { return umount(fp.Join(sr, "var")) }},
		{"unmount boot", func() error { return umount(fp.Join(sr, "boot")) }},
		{"unmount staging root", func() error { return umountRec(sr) }},
		{"sync", func() error { syncFs(); return nil }},
	}
	for _, a := range actions {
		log.Logf("teardown: %s", a.desc)
		if err := a.run(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.desc, err))
		}
	}
	return
}

//recursive unmount - bind trees and anything mounted beneath
func umountRec(path string) error {
	if _, success := log.Cmd(exec.Command("umount", "-R", path)); !success {
		return fmt.Errorf("umount -R %s failed", path)
	}
	return nil
}

func umount(path string) error {
	if _, success := log.Cmd(exec.Command("umount", path)); !success {
		return fmt.Errorf("umount %s failed", path)
	}
	return nil
}
