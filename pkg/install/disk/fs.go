// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package disk formats and mounts the five freshly-created partitions.
package disk

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	fp "path/filepath"
	"time"

	futil "github.com/deskprov/deskprov/pkg/fileutil"
	"github.com/deskprov/deskprov/pkg/log"

	"github.com/u-root/u-root/pkg/mount"
)

//how long to wait for a partition device node to appear after sgdisk
var devWait = 5 * time.Second

type Filesystem struct {
	blkdev     string //absolute path, such as /dev/sda1
	mountType  string //ext4, vfat, swap
	mountOpts  string
	mountPoint string
	label      string
	formatted  bool
	mounted    bool
	fsid       string //filesystem uuid, for fstab
}

//Ext4Fs describes an ext4 fs to be created on device.
func Ext4Fs(device, label, mountPoint string) *Filesystem {
	return &Filesystem{
		blkdev:     device,
		mountType:  "ext4",
		mountOpts:  "relatime",
		mountPoint: mountPoint,
		label:      label,
	}
}

//VfatFs describes a fat32 fs to be created on device (the ESP).
func VfatFs(device, label, mountPoint string) *Filesystem {
	return &Filesystem{
		blkdev:     device,
		mountType:  "vfat",
		mountOpts:  "umask=0077",
		mountPoint: mountPoint,
		label:      label,
	}
}

//SwapFs describes a swap signature to be written to device. Never mounted;
//swapon is left to the installed system.
func SwapFs(device, label string) *Filesystem {
	return &Filesystem{
		blkdev:    device,
		mountType: "swap",
		label:     label,
	}
}

func (fs Filesystem) Device() string     { return fs.blkdev }
func (fs Filesystem) Label() string      { return fs.label }
func (fs Filesystem) Fsid() string       { return fs.fsid }
func (fs Filesystem) Mountpoint() string { return fs.mountPoint }
func (fs Filesystem) IsMounted() bool    { return fs.mounted }

func (fs *Filesystem) Format() (err error) {
	if fs.formatted {
		log.Logf("WARNING: we have already formatted %s (label %s), will not reformat", fs.blkdev, fs.label)
		return nil
	}
	//wait for the block device to appear, apparently it isn't instantaneous
	if !futil.WaitFor(fs.blkdev, devWait) {
		log.Logf("warning - device %s has not appeared", fs.blkdev)
	}
	log.Logf("formatting %s as %s, label %s", fs.blkdev, fs.mountType, fs.label)
	var cmd *exec.Cmd
	var expectUuid bool
	switch fs.mountType {
	case "vfat":
		cmd = exec.Command("mkfs.vfat", "-F32", "-n", fs.label, fs.blkdev)
	case "swap":
		cmd = exec.Command("mkswap", "-L", fs.label, fs.blkdev)
	default:
		cmd = exec.Command("mke2fs", "-t", fs.mountType, "-L", fs.label, "-m", "1", fs.blkdev)
		expectUuid = true
	}
	out, success := log.Cmd(cmd)
	if !success {
		return fmt.Errorf("formatting %s (%s) failed", fs.blkdev, fs.label)
	}
	if expectUuid {
		fs.fsid = parseMkfsUuid([]byte(out))
		if fs.fsid == "" {
			log.Logf("mke2fs %s: no uuid in output\n%s", fs.blkdev, out)
		}
	}
	fs.formatted = true
	return nil
}

func parseMkfsUuid(out []byte) string {
	uu := bytes.Index(out, []byte("UUID: "))
	if uu < 0 {
		return ""
	}
	nl := bytes.Index(out[uu:], []byte("\n"))
	if nl < 0 {
		return ""
	}
	return string(out[uu+6 : uu+nl])
}

// MountErr mounts the fs at its mount point, creating it first. Uses
// u-root's mount, falling back to the mount binary.
func (fs *Filesystem) MountErr() (path string, err error) {
	path = fs.mountPoint
	if len(path) < 1 {
		return "", fmt.Errorf("no mount point for %s", fs.blkdev)
	}
	if fs.mounted {
		return
	}
	if err = os.MkdirAll(fs.mountPoint, 0755); err != nil {
		return "", err
	}
	_, err = mount.Mount(fs.blkdev, fs.mountPoint, fs.mountType, fs.mountOpts, 0)
	if err == nil {
		log.Logf("mount %s on %s", fs.blkdev, fs.mountPoint)
		fs.mounted = true
		return
	}
	log.Logf("u-root mount failed with %s, trying binary...", err)
	mnt := exec.Command("mount", fs.blkdev, fs.mountPoint, "-t", fs.mountType)
	if fs.mountOpts != "" {
		mnt.Args = append(mnt.Args, "-o", fs.mountOpts)
	}
	if _, success := log.Cmd(mnt); !success {
		return "", fmt.Errorf("mounting %s on %s failed", fs.blkdev, fs.mountPoint)
	}
	fs.mounted = true
	return path, nil
}

func (fs *Filesystem) Umount() {
	if err := fs.UmountErr(); err != nil {
		log.Logf("%s", err)
	}
}

// UmountErr unmounts the fs. Uses u-root's unmount, falling back to the
// umount binary.
func (fs *Filesystem) UmountErr() error {
	if !fs.mounted {
		log.Logf("umount: %s not mounted", fs.blkdev)
		return nil
	}
	err := mount.Unmount(fs.mountPoint, false, false)
	if err != nil {
		log.Logf("u-root unmount failed with %s, trying binary...", err)
		if _, success := log.Cmd(exec.Command("umount", fs.mountPoint)); !success {
			return fmt.Errorf("unmounting %s from %s failed", fs.blkdev, fs.mountPoint)
		}
	}
	log.Logf("umount %s", fs.mountPoint)
	fs.mounted = false
	return nil
}

// FstabEntry renders the fs for the installed system's fstab, by label.
// relMount is the mount point as the installed system sees it.
func (fs Filesystem) FstabEntry(relMount string) string {
	pass := 2
	if relMount == "/" {
		pass = 1
	}
	if fs.mountType == "swap" {
		return fmt.Sprintf("LABEL=%s\tnone\tswap\tsw\t0 0\n", fs.label)
	}
	return fmt.Sprintf("LABEL=%s\t%s\t%s\t%s\t0 %d\n", fs.label, relMount, fs.mountType, fs.mountOpts, pass)
}

// WriteFstab writes an fstab under root covering all given filesystems.
// Mount points are rewritten relative to root ("/mnt/gentoo/var" -> "/var").
func WriteFstab(root string, all []*Filesystem) error {
	f, err := os.Create(fp.Join(root, "etc", "fstab"))
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err = io.WriteString(f, "# generated during install\n"); err != nil {
		return err
	}
	for _, fs := range all {
		rel := "none"
		if fs.mountPoint != "" {
			rel = "/" + relPath(root, fs.mountPoint)
			if rel == "/." {
				rel = "/"
			}
		}
		if _, err = io.WriteString(f, fs.FstabEntry(rel)); err != nil {
			return err
		}
	}
	return nil
}

func relPath(root, path string) string {
	r, err := fp.Rel(root, path)
	if err != nil {
		return path
	}
	return r
}
