// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package block contains functions dealing with linux block devices and the underlying hardware.
package block

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/deskprov/deskprov/pkg/log"

	"github.com/google/shlex"
)

var Verbose bool

func parseBlkidOut(out []byte) (binfo BlkInfo, err error) {
	split := strings.Split(string(out), ":")
	if len(split) != 2 {
		err = fmt.Errorf("can't parse %s", string(out))
		return
	}
	elements, err := shlex.Split(split[1])
	if err != nil {
		return
	}
	for _, e := range elements {
		kv := strings.Split(e, "=")
		if len(kv) != 2 {
			log.Logf("blkid %s: can't parse %s, skipping", split[0], e)
			continue
		}
		//shlex removes spaces and quotes - we don't need to
		k, v := kv[0], kv[1]

		switch strings.ToUpper(k) {
		case "UUID":
			binfo.UUID = v
		case "TYPE":
			binfo.FsType = FsFromStr(v)
		case "LABEL":
			binfo.Label = v
		case "PARTUUID":
			binfo.Partition = true
			binfo.PartUUID = v
		default:
			if Verbose {
				log.Logf("blkid %s: ignoring %s", split[0], e)
			}
		}
	}
	return
}

type FsType int

const (
	FsUnknown FsType = iota
	FsExt4
	FsFat
	FsSwap
)

func FsFromStr(s string) FsType {
	switch strings.ToLower(s) {
	case "ext2", "ext3", "ext4":
		return FsExt4
	case "fat", "vfat":
		return FsFat
	case "swap":
		return FsSwap
	}
	return FsUnknown
}

func (f FsType) String() (t string) {
	switch f {
	case FsUnknown:
		t = "unknown"
	case FsExt4:
		t = "ext4"
	case FsFat:
		t = "vfat"
	case FsSwap:
		t = "swap"
	default:
		t = "fsType VALUE OUT OF RANGE"
	}
	return
}

type BlkInfo struct {
	FsType    FsType
	UUID      string
	Partition bool
	PartUUID  string
	Label     string
	Device    string
}

func GetInfo(device string) (bi BlkInfo, err error) {
	out, success := log.Cmd(exec.Command("blkid", device))
	if !success {
		err = fmt.Errorf("blkid %s failed", device)
		return
	}
	bi, err = parseBlkidOut([]byte(out))
	bi.Device = device
	return
}

// PartUUID returns the partition uuid of a partition device node, as needed
// for root=PARTUUID= on the kernel cmdline.
func PartUUID(device string) (string, error) {
	bi, err := GetInfo(device)
	if err != nil {
		return "", err
	}
	if bi.PartUUID == "" {
		return "", fmt.Errorf("no PARTUUID reported for %s", device)
	}
	return bi.PartUUID, nil
}
