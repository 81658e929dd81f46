// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package disk

import (
	"io/ioutil"
	"os"
	fp "path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deskprov/deskprov/pkg/log/testlog"
)

const mke2fsOut = `mke2fs 1.47.0 (5-Feb-2023)
Creating filesystem with 5242880 4k blocks and 1310720 inodes
Filesystem UUID: 9f5786e5-21e4-4e1f-b76b-18b078e0a629
Superblock backups stored on blocks:
	32768, 98304, 163840, 229376, 294912, 819200, 884736, 1605632, 2654208,
	4096000

Allocating group tables: done
Writing inode tables: done
Creating journal (32768 blocks): done
Writing superblocks and filesystem accounting information: done
`

//func (fs *Filesystem) Format() (err error)
func TestFormat(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	devWait = 10 * time.Millisecond
	defer func() { devWait = 5 * time.Second }()
	m := testlog.CmdMap{
		testlog.CmdKey([]string{"mke2fs", "-t", "ext4", "-L", "ROOT", "-m", "1", "/dev/sdz2"}): {
			NoRun:  true,
			Result: testlog.Result{Res: mke2fsOut, Success: true},
		},
		testlog.CmdKey([]string{"mkfs.vfat", "-F32", "-n", "ESP", "/dev/sdz1"}): {
			NoRun:  true,
			Result: testlog.Result{Success: true},
		},
		testlog.CmdKey([]string{"mkswap", "-L", "SWAP", "/dev/sdz4"}): {
			NoRun:  true,
			Result: testlog.Result{Success: true},
		},
	}
	tlog.UseMappedCmdHijacker(m)
	root := Ext4Fs("/dev/sdz2", "ROOT", "/mnt/gentoo")
	if err := root.Format(); err != nil {
		t.Fatal(err)
	}
	if root.Fsid() != "9f5786e5-21e4-4e1f-b76b-18b078e0a629" {
		t.Errorf("fsid %q", root.Fsid())
	}
	esp := VfatFs("/dev/sdz1", "ESP", "/mnt/gentoo/boot")
	if err := esp.Format(); err != nil {
		t.Fatal(err)
	}
	swap := SwapFs("/dev/sdz4", "SWAP")
	if err := swap.Format(); err != nil {
		t.Fatal(err)
	}
	for k, d := range m {
		if d.RunCount != 1 {
			t.Errorf("%s: run %d times", k, d.RunCount)
		}
	}
	//second Format must be a no-op
	if err := root.Format(); err != nil {
		t.Fatal(err)
	}
	if m[testlog.CmdKey([]string{"mke2fs", "-t", "ext4", "-L", "ROOT", "-m", "1", "/dev/sdz2"})].RunCount != 1 {
		t.Error("reformat ran mke2fs again")
	}
}

//func (fs *Filesystem) Format() (err error)
func TestFormatFailure(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	devWait = 10 * time.Millisecond
	defer func() { devWait = 5 * time.Second }()
	failKey := testlog.CmdKey([]string{"mke2fs", "-t", "ext4", "-L", "VAR", "-m", "1", "/dev/sdz3"})
	tlog.RecordingCmdHijacker(failKey)
	vr := Ext4Fs("/dev/sdz3", "VAR", "/mnt/gentoo/var")
	if err := vr.Format(); err == nil {
		t.Error("expected format failure")
	}
}

//func WriteFstab(root string, all []*Filesystem) error
func TestWriteFstab(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	root, err := ioutil.TempDir("", "deskprov-disk")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(root)
	if err := os.Mkdir(fp.Join(root, "etc"), 0755); err != nil {
		t.Fatal(err)
	}
	all := []*Filesystem{
		Ext4Fs("/dev/sdz2", "ROOT", root),
		VfatFs("/dev/sdz1", "ESP", fp.Join(root, "boot")),
		Ext4Fs("/dev/sdz3", "VAR", fp.Join(root, "var")),
		SwapFs("/dev/sdz4", "SWAP"),
		Ext4Fs("/dev/sdz5", "HOME", fp.Join(root, "home")),
	}
	if err := WriteFstab(root, all); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(fp.Join(root, "etc", "fstab"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"LABEL=ROOT\t/\text4\trelatime\t0 1\n",
		"LABEL=ESP\t/boot\tvfat\tumask=0077\t0 2\n",
		"LABEL=VAR\t/var\text4\trelatime\t0 2\n",
		"LABEL=SWAP\tnone\tswap\tsw\t0 0\n",
		"LABEL=HOME\t/home\text4\trelatime\t0 2\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("fstab missing %q:\n%s", want, content)
		}
	}
}
