// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package partitioning

import (
	"fmt"
	"os/exec"

	"github.com/deskprov/deskprov/pkg/log"
)

type gpt struct {
	device     string
	partitions []*Partition
	committed  int //number of partitions written to disk so far
}

var _ Partitioner = &gpt{}

var gptTypes map[PartType]uint16

func init() {
	gptTypes = make(map[PartType]uint16)
	gptTypes[Unused] = 0x00      //"00000000-0000-0000-0000-000000000000"
	gptTypes[FAT32] = 0x0c00     //"EBD0A0A2-B9E5-4433-87C0-68B6B72699C7"
	gptTypes[Linux] = 0x8300     //"0FC63DAF-8483-4772-8E79-3D69D8477DE4"
	gptTypes[LinuxRoot] = 0x8304 //"4F68BCE3-E8CD-4DB1-96E7-FBCAF984B709"
	gptTypes[LinuxVar] = 0x8310  //"4D21B016-B534-45C2-A9FB-5C16E091FD2D"
	gptTypes[LinuxSwap] = 0x8200 //"0657FD6D-A4AB-43C4-84E5-0933C84B4F4F"
	gptTypes[ESP] = 0xef00       //"C12A7328-F81F-11D2-BA4B-00A0C93EC93B"
}

func NewGpt(dev string) Partitioner {
	return &gpt{device: dev}
}

func (g *gpt) Count() int { return len(g.partitions) }

func (g *gpt) Add(sizeMiB uint64, ptype PartType, boot bool, name string) {
	if g.committed > 0 {
		log.Fatalf("cannot add partition after partitions are written to disk")
	}
	p := &Partition{sizeMiB: sizeMiB, boot: boot, ptype: ptype, name: name}
	g.partitions = append(g.partitions, p)
}

// Commit writes partition n to disk. Partitions must be committed in order;
// the first commit also replaces any existing table. One sgdisk invocation
// per partition, so a failure identifies the partition it struck.
func (g *gpt) Commit(n int) error {
	if n >= len(g.partitions) || n < 0 {
		return fmt.Errorf("no partition %d to commit", n)
	}
	if n != g.committed {
		return fmt.Errorf("commit out of order: %d next, %d requested", g.committed, n)
	}
	log.Logf("Committing to %s: %s", g.device, g.partitions[n])
	sgdisk := exec.Command("sgdisk")
	if n == 0 {
		//to erase existing gpt and mbr records, must use both --clear and --mbrtogpt
		sgdisk.Args = append(sgdisk.Args, "--clear", "--mbrtogpt")
	}
	sgdisk.Args = append(sgdisk.Args, g.assembleArgs(n)...)
	sgdisk.Args = append(sgdisk.Args, g.device)
	_, success := log.Cmd(sgdisk)
	if !success {
		return fmt.Errorf("sgdisk failed writing partition %d to %s", n+1, g.device)
	}
	g.committed++
	return nil
}

func (g *gpt) assembleArgs(i int) (args []string) {
	p := g.partitions[i]
	if p.boot != (p.ptype == ESP) {
		log.Logf("WARNING: UEFI always only boots ESP partitions; mismatch between boot flag and ptype")
	}
	var size string
	if p.sizeMiB > 0 {
		size = fmt.Sprintf("+%dM", p.sizeMiB)
	}
	args = append(args, fmt.Sprintf("--new=%d::%s", i+1, size))
	args = append(args, fmt.Sprintf("--typecode=%d:%04x", i+1, gptTypes[p.ptype]))
	if p.name != "" {
		args = append(args, fmt.Sprintf("--change-name=%d:%s", i+1, p.name))
	}
	return
}
