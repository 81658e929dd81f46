// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"io/ioutil"
	"os"
	fp "path/filepath"
	"strings"
	"testing"

	"github.com/deskprov/deskprov/pkg/install/disk"
	"github.com/deskprov/deskprov/pkg/log/testlog"

	"github.com/google/uuid"
)

// tune2fs refuses uuid changes on a mounted filesystem, so the stamp must
// land between an unmount of var and its remount.
func TestStampVarUuidUnmountsFirst(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	seen := tlog.RecordingCmdHijacker("")

	tmp := t.TempDir()
	if err := os.MkdirAll(fp.Join(tmp, "etc"), 0755); err != nil {
		t.Fatal(err)
	}
	mid := "835c1c5ffcae4a869b0028fcc1f660d8"
	if err := ioutil.WriteFile(fp.Join(tmp, "etc", "machine-id"), []byte(mid+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig("/dev/sda")
	cfg.StagingRoot = tmp
	ins := New(cfg)
	ins.fss[pVar] = disk.Ext4Fs("/dev/null", "VAR", fp.Join(tmp, "var"))
	//the in-process mount of a non-device fails, so this lands on the mount
	//binary - which the hijacker records
	if _, err := ins.fss[pVar].MountErr(); err != nil {
		t.Fatal(err)
	}
	if err := ins.stampVarUuid(); err != nil {
		t.Fatal(err)
	}
	tlog.Freeze()

	if len(*seen) != 4 {
		t.Fatalf("ran %d commands, want mount/umount/tune2fs/mount:\n%v", len(*seen), *seen)
	}
	for i, pfx := range []string{"mount|", "umount|", "tune2fs|-U|", "mount|"} {
		if !strings.HasPrefix(string((*seen)[i]), pfx) {
			t.Errorf("command %d = %s, want prefix %s", i, (*seen)[i], pfx)
		}
	}
	fields := strings.Split(string((*seen)[2]), "|")
	if len(fields) < 4 || fields[3] != "/dev/null" {
		t.Errorf("tune2fs ran against %v, want the var device", fields)
	}
	u, err := uuid.Parse(fields[2])
	if err != nil {
		t.Fatalf("tune2fs uuid %q: %s", fields[2], err)
	}
	if u.Version() != 5 {
		t.Errorf("uuid version %s, want name-derived (5)", u.Version())
	}
	if !ins.fss[pVar].IsMounted() {
		t.Error("var not remounted after the stamp")
	}
}
