// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package partitioning allows creation of GPT partition tables and
// partitions, DESTROYING ANY EXISTING DATA.
//
// Note that it does *not* support:
//   * conversion between MBR & GPT,
//   * resizing existing partitions,
//   * adding partitions to an existing table,
//   * specifying gaps,
//   * etc.
package partitioning

import (
	"fmt"
	"os/exec"

	"github.com/deskprov/deskprov/pkg/log"
)

type Partitioner interface {
	//add a partition
	Add(sizeMiB uint64, ptype PartType, boot bool, name string)
	//write the nth added partition (0-based) to disk; n==0 also writes a
	//fresh table, destroying whatever was there
	Commit(n int) error
	//number of partitions added
	Count() int
}

type PartType int

const (
	Unused PartType = iota
	FAT32
	Linux
	LinuxRoot
	LinuxVar
	LinuxSwap
	ESP
)

func (t PartType) String() string {
	switch t {
	case Unused:
		return "unused partition"
	case FAT32:
		return "fat32 partition"
	case Linux:
		return "linux partition"
	case LinuxRoot:
		return "linux x86-64 root partition"
	case LinuxVar:
		return "linux /var partition"
	case LinuxSwap:
		return "linux swap partition"
	case ESP:
		return "EFI system (boot) partition"
	}
	return "partition type out of range"
}

type Partition struct {
	sizeMiB uint64 //a size of 0 indicates "use all available space"
	boot    bool
	ptype   PartType
	name    string
}

func (p Partition) String() string {
	size := "unlimited"
	if p.sizeMiB != 0 {
		size = fmt.Sprintf("%dMiB", p.sizeMiB)
	}
	return fmt.Sprintf("Partition: name='%s' size=%s boot=%t type=%s", p.name, size, p.boot, p.ptype)
}

func List(dev string) string {
	out, success := log.Cmd(exec.Command("fdisk", "-l", dev))
	if !success {
		return ""
	}
	return out
}
