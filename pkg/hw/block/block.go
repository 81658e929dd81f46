// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package block

import (
	"fmt"
	"io/ioutil"
	"os"
	fp "path/filepath"
	"strconv"
	"strings"

	"github.com/deskprov/deskprov/pkg/log"

	"golang.org/x/sys/unix"
)

type BlockDev struct {
	Name  string
	Size  uint64
	Model string
}

func (b BlockDev) String() string {
	return fmt.Sprintf("Device %s: Model=%s, Size=%d", b.Name, b.Model, b.Size)
}

//return name, size of storage devices
func Devices() (devs []BlockDev) {
	// sys/class/block is a superset of sys/block; it also contains partitions
	names := devices("/sys/block")
	for _, name := range names {
		s, err := ReadSize(fp.Base(name))
		if err != nil {
			log.Logf("error %s for %s", err, name)
			continue
		}
		m, err := ReadModel(fp.Base(name))
		if err != nil {
			m = "(unknown)"
		}
		devs = append(devs, BlockDev{name, s, m})
	}
	return
}

func devices(sysdir string) (devs []string) {
	dir, err := ioutil.ReadDir(sysdir)
	if err != nil {
		return
	}
	for _, entry := range dir {
		link, err := os.Readlink(fp.Join(sysdir, entry.Name()))
		if err != nil || strings.Contains(link, "devices/virtual/block") {
			continue
		}
		devs = append(devs, "/dev/"+entry.Name())
	}
	return devs
}

//IsBlockDev returns true if path exists and is a block device node.
func IsBlockDev(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFBLK
}

//size in bytes, from sysfs. dev is a bare name like sda.
func ReadSize(dev string) (devSize uint64, err error) {
	data, err := ioutil.ReadFile(fp.Join("/sys/class/block", dev, "size"))
	if err != nil {
		return
	}
	sectors, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return
	}
	//sysfs size is always in 512-byte sectors
	return sectors * 512, nil
}

//given a dev like 'sda', find device model string
func ReadModel(dev string) (m string, err error) {
	mfile := fp.Join("/sys/block", dev, "device", "model")
	f, err := ioutil.ReadFile(mfile)
	if err != nil {
		return
	}
	m = strings.TrimSpace(string(f))
	return
}

//IsPart returns true if given dev is a partition
func IsPart(dev string) bool {
	_, err := os.Stat(fp.Join("/sys/class/block", dev, "partition"))
	return err == nil
}

// PartDev returns the device node of partition n on dev. Devices whose name
// ends in a digit (nvme0n1, mmcblk0) get a 'p' separator; sdX does not.
func PartDev(dev string, n int) string {
	if len(dev) > 0 && dev[len(dev)-1] >= '0' && dev[len(dev)-1] <= '9' {
		return fmt.Sprintf("%sp%d", dev, n)
	}
	return fmt.Sprintf("%s%d", dev, n)
}
