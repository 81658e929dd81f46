// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package fileutil

import (
	"fmt"
	"io/ioutil"
	"os"
	fp "path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deskprov/deskprov/pkg/log/testlog"

	"golang.org/x/sys/unix"
)

//func WaitFor(path string, timeout time.Duration) (found bool)
func TestWaitFor(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	tmp, err := ioutil.TempDir("", "deskprov-fu")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)
	missing := fp.Join(tmp, "never")
	if WaitFor(missing, 300*time.Millisecond) {
		t.Error("found nonexistent file")
	}
	appears := fp.Join(tmp, "late")
	go func() {
		time.Sleep(200 * time.Millisecond)
		f, _ := os.Create(appears)
		f.Close()
	}()
	if !WaitFor(appears, 2*time.Second) {
		t.Error("file not found")
	}
}

//func mpFromLine(line string) string
func TestMpFromLine(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	for _, td := range []struct {
		line string
		want string
	}{
		{"24 98 0:22 / /proc rw,nosuid,nodev,noexec,relatime shared:13 - proc proc rw", "/proc"},
		{"291 98 8:3 / /mnt/gentoo rw,relatime shared:155 - ext4 /dev/sda3 rw", "/mnt/gentoo"},
		{"short line", ""},
	} {
		got := mpFromLine(td.line)
		if got != td.want {
			t.Errorf("line %q: got %q want %q", td.line, got, td.want)
		}
	}
}

//func AppendLines(path string, lines []string) error
func TestAppendLines(t *testing.T) {
	tmp, err := ioutil.TempDir("", "deskprov-fu")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)
	conf := fp.Join(tmp, "make.conf")
	if err := ioutil.WriteFile(conf, []byte("USE=\"pipewire\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := AppendLines(conf, []string{"A=1", "B=2"}); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(conf)
	if err != nil {
		t.Fatal(err)
	}
	want := "USE=\"pipewire\"\nA=1\nB=2\n"
	if string(data) != want {
		t.Errorf("got %q want %q", string(data), want)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("missing trailing newline")
	}
}

//func IsMountpoint(dir string) bool
func TestIsMountpoint(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	if !IsMountpoint("/") {
		t.Error("/ not seen as a mountpoint")
	}
	tmp, err := ioutil.TempDir("", "deskprov-fu")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)
	if IsMountpoint(tmp) {
		t.Errorf("%s seen as a mountpoint", tmp)
	}
}

//func MkdirOwned(root, dir, owner, group string, mode os.FileMode) bool
func TestMkdirOwned(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	root, err := ioutil.TempDir("", "deskprov-fu")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(root)
	if err := os.MkdirAll(fp.Join(root, "etc"), 0755); err != nil {
		t.Fatal(err)
	}
	//map the user to our own ids so chown succeeds unprivileged
	uid, gid := os.Getuid(), os.Getgid()
	passwd := fmt.Sprintf("root:x:0:0:root:/root:/bin/bash\nstudio:x:%d:%d::/home/studio:/bin/bash\n", uid, gid)
	group := fmt.Sprintf("root:x:0:\nstudio:x:%d:\n", gid)
	if err := ioutil.WriteFile(fp.Join(root, "etc", "passwd"), []byte(passwd), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(fp.Join(root, "etc", "group"), []byte(group), 0644); err != nil {
		t.Fatal(err)
	}
	if !MkdirOwned(root, "home/studio/.config", "studio", "studio", 0755) {
		t.Fatal("MkdirOwned failed")
	}
	var st unix.Stat_t
	if err := unix.Stat(fp.Join(root, "home", "studio", ".config"), &st); err != nil {
		t.Fatal(err)
	}
	if st.Uid != uint32(uid) || st.Gid != uint32(gid) {
		t.Errorf("owner %d:%d, want %d:%d", st.Uid, st.Gid, uid, gid)
	}
	if st.Mode&0777 != 0755 {
		t.Errorf("mode %o, want 0755", st.Mode&0777)
	}
	//unknown owner leaves the dir but reports failure
	if MkdirOwned(root, "home/ghost", "ghost", "ghost", 0755) {
		t.Error("MkdirOwned succeeded for a user not in passwd")
	}
}

//func CopyFile(src, dest string, destFlags int) error
func TestCopyFileSymlink(t *testing.T) {
	tmp, err := ioutil.TempDir("", "deskprov-fu")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)
	real := fp.Join(tmp, "resolv.real")
	if err := ioutil.WriteFile(real, []byte("nameserver 192.0.2.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	link := fp.Join(tmp, "resolv.conf")
	if err := os.Symlink(real, link); err != nil {
		t.Fatal(err)
	}
	dest := fp.Join(tmp, "out")
	if err := CopyFile(link, dest, 0); err != nil {
		t.Fatal(err)
	}
	//dest must be a regular file, not a symlink
	fi, err := os.Lstat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		t.Error("dest is a symlink")
	}
	data, _ := ioutil.ReadFile(dest)
	if string(data) != "nameserver 192.0.2.1\n" {
		t.Errorf("content mismatch: %q", string(data))
	}
}
