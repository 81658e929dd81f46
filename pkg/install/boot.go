// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"fmt"
	"io/ioutil"
	"os"
	fp "path/filepath"

	"github.com/deskprov/deskprov/pkg/hw/block"
)

const loaderConf = `timeout 3
console-mode max
editor no
`

//appended after root=; tuned for a low-latency audio desktop
const cmdlineExtra = "rootfstype=ext4 quiet threadirqs mitigations=off preempt=full"

// installBoot sets up systemd-boot on the ESP, writes the loader config and
// kernel cmdline, and installs the distribution kernel. The kernel package's
// install hooks produce the loader entry using the cmdline written here.
func installBoot(ins *Install) error {
	root := ins.cfg.StagingRoot
	for _, d := range []string{"boot/EFI", "boot/loader"} {
		if err := os.MkdirAll(fp.Join(root, d), 0755); err != nil {
			return err
		}
	}
	if err := ins.cr.Run("bootctl", "install"); err != nil {
		return err
	}
	if err := ioutil.WriteFile(fp.Join(root, "boot", "loader", "loader.conf"), []byte(loaderConf), 0644); err != nil {
		return err
	}
	//the partuuid is read back from the disk, not derived from the plan
	partuuid, err := block.PartUUID(ins.fss[pRoot].Device())
	if err != nil {
		return err
	}
	cmdline := fmt.Sprintf("root=PARTUUID=%s %s\n", partuuid, cmdlineExtra)
	kdir := fp.Join(root, "etc", "kernel")
	if err := os.MkdirAll(kdir, 0755); err != nil {
		return err
	}
	if err := ioutil.WriteFile(fp.Join(kdir, "cmdline"), []byte(cmdline), 0644); err != nil {
		return err
	}
	return ins.cr.Run("emerge", "--quiet", "sys-kernel/gentoo-kernel-bin")
}
