// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package stage

import (
	"fmt"
	"os"
	fp "path/filepath"

	futil "github.com/deskprov/deskprov/pkg/fileutil"
	"github.com/deskprov/deskprov/pkg/log"

	"github.com/u-root/u-root/pkg/mount"
	"golang.org/x/sys/unix"
)

// PrepChroot makes a stage3 tree usable as a chroot: host dns config, then
// the kernel filesystems. sys/dev/run are recursively bound with slave
// propagation so nothing the chroot does leaks mounts back onto the host.
func PrepChroot(root string) error {
	//dereferences symlinks - hosts running resolved point resolv.conf into /run
	if err := futil.CopyFile("/etc/resolv.conf", fp.Join(root, "etc", "resolv.conf"), 0); err != nil {
		return fmt.Errorf("copying resolv.conf: %s", err)
	}
	if _, err := mount.Mount("proc", fp.Join(root, "proc"), "proc", "", 0); err != nil {
		return fmt.Errorf("mounting proc: %s", err)
	}
	for _, dir := range []string{"sys", "dev", "run"} {
		if err := rbindSlave("/"+dir, fp.Join(root, dir)); err != nil {
			return err
		}
	}
	return nil
}

func rbindSlave(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	if err := unix.Mount(src, dst, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("rbind %s: %s", dst, err)
	}
	if err := unix.Mount("", dst, "", unix.MS_SLAVE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("making %s rslave: %s", dst, err)
	}
	log.Logf("rbind %s -> %s (rslave)", src, dst)
	return nil
}
