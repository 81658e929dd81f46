// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package block

import (
	"errors"
	"os"
	fp "path/filepath"
	"testing"

	"github.com/deskprov/deskprov/pkg/log/testlog"
)

type blkTestData struct {
	line      string
	want      BlkInfo
	expectErr bool
}

//func parseBlkidOut(out []byte) (bi BlkInfo, err error)
func TestBlkIdParse(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	testData := []blkTestData{
		{`/dev/sda2: LABEL="ROOT" UUID="8532944c-0c9a-4c47-82fa-0eabbceb6c8e" TYPE="ext4" PARTUUID="81635ccd-1b4f-4d3f-b7b7-f78a5b029f35"`,
			//     FsType,            UUID,           Partition,   PartUUID,     Label, Device
			BlkInfo{FsExt4, "8532944c-0c9a-4c47-82fa-0eabbceb6c8e", true, "81635ccd-1b4f-4d3f-b7b7-f78a5b029f35", "ROOT", ""}, false},
		{`/dev/nvme0n1p1: SEC_TYPE="msdos" LABEL_FATBOOT="ESP" LABEL="ESP" UUID="3AB2-ADD3" TYPE="vfat" PARTLABEL="ESP" PARTUUID="9b5c32ef-7c66-48f7-ba10-a4f0a0b1a8f4"`,
			BlkInfo{FsFat, "3AB2-ADD3", true, "9b5c32ef-7c66-48f7-ba10-a4f0a0b1a8f4", "ESP", ""}, false},
		{`/dev/sda4: LABEL="SWAP" UUID="61d87d6b-a51d-4baa-ab7f-c44e2ffcbf05" TYPE="swap" PARTUUID="b3c23f2d-05"`,
			BlkInfo{FsSwap, "61d87d6b-a51d-4baa-ab7f-c44e2ffcbf05", true, "b3c23f2d-05", "SWAP", ""}, false},
		{`/dev/sdb3: PARTUUID="b3c23f2d-03"`,
			BlkInfo{FsUnknown, "", true, "b3c23f2d-03", "", ""}, false},
		{``, BlkInfo{}, true},
	}
	for i, o := range testData {
		binfo, err := parseBlkidOut([]byte(o.line))
		if (err != nil) != o.expectErr {
			t.Errorf("%d %s\nexpectErr=%t, err=%s", i, o.line, o.expectErr, err)
		}
		if binfo != o.want {
			t.Errorf("%d %s\ngot  %#v\nwant %#v", i, o.line, binfo, o.want)
		}
	}
}

//recorded `parted -sm <dev> unit GiB print free` output
const emptyDisk = `BYT;
/dev/sda:80.0GiB:scsi:512:512:gpt:QEMU HARDDISK:;
1:0.00GiB:80.0GiB:80.0GiB:free;
`
const halfTiBDisk = `BYT;
/dev/nvme0n1:0.50TiB:nvme:512:512:gpt:Samsung SSD 980:;
1:0.00GiB:0.50TiB:0.50TiB:free;
`
const partitionedDisk = `BYT;
/dev/sda:50.0GiB:scsi:512:512:gpt:QEMU HARDDISK:;
1:0.00GiB:0.00GiB:0.00GiB:free;
1:0.00GiB:0.29GiB:0.29GiB:fat32:EFI system partition:boot, esp;
2:0.29GiB:50.0GiB:49.7GiB:ext4::;
`
const badUnitDisk = `BYT;
/dev/sda:85899MB:scsi:512:512:gpt:QEMU HARDDISK:;
`

//factory-blank, no table: parted exits 1 and prints no free rows
const blankDisk = `Error: /dev/sdb: unrecognised disk label
BYT;
/dev/sdb:120GiB:scsi:512:512:unknown:QEMU HARDDISK:;
`

//func parsePartedOut(dev string, out []byte) (r Report, err error)
func TestPartedParse(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	r, err := parsePartedOut("/dev/sda", []byte(emptyDisk))
	if err != nil {
		t.Fatal(err)
	}
	if r.SizeGiB != 80.0 || r.FreeGiB != 80.0 || r.Partitions != 0 || r.Table != "gpt" {
		t.Errorf("unexpected report %#v", r)
	}
	r, err = parsePartedOut("/dev/nvme0n1", []byte(halfTiBDisk))
	if err != nil {
		t.Fatal(err)
	}
	//TiB normalizes x1024
	if r.SizeGiB != 512.0 {
		t.Errorf("0.50TiB: got %.2f GiB", r.SizeGiB)
	}
	r, err = parsePartedOut("/dev/sda", []byte(partitionedDisk))
	if err != nil {
		t.Fatal(err)
	}
	if r.Partitions != 2 {
		t.Errorf("want 2 partitions, got %d", r.Partitions)
	}
	_, err = parsePartedOut("/dev/sda", []byte(badUnitDisk))
	if !errors.Is(err, EBadUnit) {
		t.Errorf("want EBadUnit, got %v", err)
	}
	//a disk with no table at all is fully free, not partitioned
	r, err = parsePartedOut("/dev/sdb", []byte(blankDisk))
	if err != nil {
		t.Fatal(err)
	}
	if r.Table != "unknown" || r.FreeGiB != 120.0 || r.Partitions != 0 {
		t.Errorf("unexpected report %#v", r)
	}
}

//func (r Report) Validate() (capacity float64, err error)
func TestValidate(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	r, err := parsePartedOut("/dev/sda", []byte(emptyDisk))
	if err != nil {
		t.Fatal(err)
	}
	c, err := r.Validate()
	if err != nil || c != 80.0 {
		t.Errorf("empty 80G disk: c=%.1f err=%v", c, err)
	}
	r, err = parsePartedOut("/dev/nvme0n1", []byte(halfTiBDisk))
	if err != nil {
		t.Fatal(err)
	}
	c, err = r.Validate()
	if err != nil || c != 512.0 {
		t.Errorf("0.5TiB disk: c=%.1f err=%v", c, err)
	}
	//partitioned 50G disk must report EPartitioned, not ETooSmall
	r, err = parsePartedOut("/dev/sda", []byte(partitionedDisk))
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Validate()
	if !errors.Is(err, EPartitioned) {
		t.Errorf("want EPartitioned, got %v", err)
	}
	//empty but undersized
	_, err = (Report{Device: "/dev/sdz", SizeGiB: 79.9, FreeGiB: 79.9}).Validate()
	if !errors.Is(err, ETooSmall) {
		t.Errorf("want ETooSmall, got %v", err)
	}
	//factory-blank disk validates at full capacity
	r, err = parsePartedOut("/dev/sdb", []byte(blankDisk))
	if err != nil {
		t.Fatal(err)
	}
	c, err = r.Validate()
	if err != nil || c != 120.0 {
		t.Errorf("blank 120G disk: c=%.1f err=%v", c, err)
	}
}

//func devices(sysdir string) (devs []string)
func TestDevicesSkipsVirtual(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	tmp := t.TempDir()
	//mimic /sys/block: symlinks into the device tree
	links := map[string]string{
		"sda":   "../devices/pci0000:00/0000:00:1f.2/ata1/host0/target0:0:0/0:0:0:0/block/sda",
		"loop0": "../devices/virtual/block/loop0",
		"dm-0":  "../devices/virtual/block/dm-0",
	}
	for name, target := range links {
		if err := os.Symlink(target, fp.Join(tmp, name)); err != nil {
			t.Fatal(err)
		}
	}
	devs := devices(tmp)
	if len(devs) != 1 || devs[0] != "/dev/sda" {
		t.Errorf("got %v, want just /dev/sda", devs)
	}
}

//func PartDev(dev string, n int) string
func TestPartDev(t *testing.T) {
	for _, td := range []struct {
		dev  string
		n    int
		want string
	}{
		{"/dev/sda", 1, "/dev/sda1"},
		{"/dev/nvme0n1", 2, "/dev/nvme0n1p2"},
		{"/dev/mmcblk0", 5, "/dev/mmcblk0p5"},
		{"/dev/vdb", 3, "/dev/vdb3"},
	} {
		got := PartDev(td.dev, td.n)
		if got != td.want {
			t.Errorf("PartDev(%s,%d)=%s want %s", td.dev, td.n, got, td.want)
		}
	}
}
