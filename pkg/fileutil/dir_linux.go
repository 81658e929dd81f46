// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package fileutil

import (
	"io/ioutil"
	"os"
	fp "path/filepath"
	"strings"

	"github.com/deskprov/deskprov/pkg/id"
	"github.com/deskprov/deskprov/pkg/log"

	"golang.org/x/sys/unix"
)

// Return free space for FS containing dir, or -1 in the event of an error
func FreeSpace(dir string) int64 {
	var fs unix.Statfs_t
	err := unix.Statfs(dir, &fs)
	if err != nil {
		log.Logf("Error %s finding device free space\n", err)
		return -1
	}
	return int64(fs.Bavail) * fs.Bsize
}

//IsMountpoint searchs for given dir in /proc/self/mountinfo, returns true if found
func IsMountpoint(dir string) bool {
	mi, err := ioutil.ReadFile("/proc/self/mountinfo")
	if err != nil {
		log.Logf("error %s", err)
		return false
	}
	for _, line := range strings.Split(string(mi), "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		mp := mpFromLine(line)
		if mp == dir {
			return true
		}
	}
	return false
}

//used by IsMountpoint
func mpFromLine(line string) string {
	elements := strings.Split(line, " ")
	if len(elements) < 6 {
		//elements towards end of line can vary, but those towards beginning
		//seem to stay the same
		log.Logf("failed to parse mountinfo line, skipping: %s", line)
		return ""
	}
	return elements[4]
}

// Create dir in root with given owner, group, and mode. Owner/group are names
// resolved against the passwd/group files under root, not the host's.
func MkdirOwned(root, dir, owner, group string, mode os.FileMode) bool {
	absDir := fp.Join(root, dir)
	err := os.MkdirAll(absDir, mode)
	if err != nil {
		log.Logf("failed to create %s: %s", dir, err)
		return false
	}
	uid, err := id.GetUID(root, owner)
	if err != nil {
		log.Logln(err)
	}
	gid, err := id.GetGID(root, group)
	if err != nil {
		log.Logln(err)
	}
	if uid < 0 || gid < 0 {
		//leave the dir, in case we can limp along with incorrect perms
		log.Logf("MkdirOwned(%s, %s, %s, %d): failed to set owner %d/group %d", dir, owner, group, mode, uid, gid)
		return false
	}
	err = os.Chown(absDir, uid, gid)
	if err == nil {
		err = os.Chmod(absDir, mode) //mode must be set last; changing uid/gid will unset special bits
	}
	if err != nil {
		log.Logf("MkdirOwned(%s, %s, %s, %s, %d): err %s", root, dir, owner, group, mode, err)
		return false
	}
	return true
}

// ChownTree recursively chowns everything under root/dir to owner:group,
// resolved against the staged passwd/group files.
func ChownTree(root, dir, owner, group string) error {
	uid, err := id.GetUID(root, owner)
	if err != nil {
		return err
	}
	gid, err := id.GetGID(root, group)
	if err != nil {
		return err
	}
	return fp.Walk(fp.Join(root, dir), func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		return os.Lchown(path, uid, gid)
	})
}
