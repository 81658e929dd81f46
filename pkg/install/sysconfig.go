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
	"strings"

	"github.com/deskprov/deskprov/pkg/chroot"
	futil "github.com/deskprov/deskprov/pkg/fileutil"
	"github.com/deskprov/deskprov/pkg/log"
)

//always enabled; the target is a network-attached desktop with remote access
var enabledServices = []string{"NetworkManager", "sddm", "sshd", "bluetooth"}

//font families enabled across every variant fontconfig offers
var fontFamilies = []string{"dejavu", "noto"}

//user units the audio user cannot enable itself before first login
var audioUserUnits = []struct{ unit, wants string }{
	{"pipewire.socket", "sockets.target.wants"},
	{"pipewire-pulse.socket", "sockets.target.wants"},
	{"wireplumber.service", "default.target.wants"},
}

const latencyRule = `KERNEL=="cpu_dma_latency", GROUP="audio", MODE="0660"` + "\n"

func configureSystem(ins *Install) error {
	if err := ins.setTimezone(); err != nil {
		return err
	}
	cr := ins.cr
	for _, svc := range enabledServices {
		if err := cr.Run("systemctl", "enable", svc); err != nil {
			return err
		}
	}
	if err := cr.Run("systemctl", "set-default", "graphical.target"); err != nil {
		return err
	}
	if err := cr.Run("locale-gen"); err != nil {
		return err
	}
	if err := enableFonts(cr); err != nil {
		return err
	}
	if err := ins.setupAudioUser(); err != nil {
		return err
	}
	return ins.writeLatencyRule()
}

func (ins *Install) setTimezone() error {
	lt := fp.Join(ins.cfg.StagingRoot, "etc", "localtime")
	if err := os.Remove(lt); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink("../usr/share/zoneinfo/"+ins.cfg.Timezone, lt)
}

// enableFonts enables every variant of the wanted families. The variant
// list is queried, not fixed - names shift with fontconfig versions.
func enableFonts(cr *chroot.Runner) error {
	out, err := cr.Output("eselect", "fontconfig", "list")
	if err != nil {
		return err
	}
	var any bool
	for _, name := range matchAllEselect(out, fontFamilies) {
		if err := cr.Run("eselect", "fontconfig", "enable", name); err != nil {
			return err
		}
		any = true
	}
	if !any {
		log.Warnf("no fontconfig variants matched %v", fontFamilies)
	}
	return nil
}

//all entries in `eselect ... list` output matching any of the substrings
func matchAllEselect(out string, substrs []string) (names []string) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "[") {
			continue
		}
		for _, s := range substrs {
			if strings.Contains(strings.ToLower(fields[1]), s) {
				names = append(names, fields[1])
				break
			}
		}
	}
	return
}

// setupAudioUser hands the audio user its home dir and pre-enables its
// pipewire units. The user can't log in yet (password expired), so the
// symlinks systemctl --user enable would create are made by hand.
func (ins *Install) setupAudioUser() error {
	root := ins.cfg.StagingRoot
	user := ins.cfg.AudioUser
	home := fp.Join("home", user)
	wantsBase := fp.Join(home, ".config", "systemd", "user")
	for _, u := range audioUserUnits {
		if !futil.MkdirOwned(root, fp.Join(wantsBase, u.wants), user, user, 0755) {
			return fmt.Errorf("creating %s for %s failed", u.wants, user)
		}
		target := fp.Join("/usr/lib/systemd/user", u.unit)
		link := fp.Join(root, wantsBase, u.wants, u.unit)
		if err := os.Symlink(target, link); err != nil && !os.IsExist(err) {
			return err
		}
	}
	//chown the whole tree last so the symlink dirs are covered too
	if err := futil.ChownTree(root, home, user, user); err != nil {
		return fmt.Errorf("chown %s: %s", home, err)
	}
	return nil
}

// writeLatencyRule grants the audio group the latency-control device, so
// realtime audio tools can hold cpu wakeup latency down without root.
func (ins *Install) writeLatencyRule() error {
	rules := fp.Join(ins.cfg.StagingRoot, "etc", "udev", "rules.d")
	if err := os.MkdirAll(rules, 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(fp.Join(rules, "40-cpu-dma-latency.rules"), []byte(latencyRule), 0644)
}
