// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package disk

import (
	"os"

	"github.com/deskprov/deskprov/pkg/log"

	"golang.org/x/sys/unix"
)

// fsImmutableFl is FS_IMMUTABLE_FL from linux/fs.h; x/sys/unix does not
// export it.
const fsImmutableFl = 0x10

// PrepMountpoint creates dir, strips write bits, and sets the immutable
// attribute on the directory itself. If the later mount were to silently
// fail or disappear, writes would land on the parent fs; immutable makes
// that an error instead.
func PrepMountpoint(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := os.Chmod(dir, 0555); err != nil {
		return err
	}
	if err := setImmutable(dir); err != nil {
		//tmpfs and friends lack attr support; the mount still works
		log.Logf("cannot set +i on %s: %s", dir, err)
	}
	return nil
}

func setImmutable(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	fd := int(f.Fd())
	attrs, err := unix.IoctlGetInt(fd, unix.FS_IOC_GETFLAGS)
	if err != nil {
		return err
	}
	return unix.IoctlSetPointerInt(fd, unix.FS_IOC_SETFLAGS, attrs|fsImmutableFl)
}
