// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"fmt"
	fp "path/filepath"
	"strings"

	"github.com/deskprov/deskprov/pkg/chroot"
	futil "github.com/deskprov/deskprov/pkg/fileutil"
	"github.com/deskprov/deskprov/pkg/hw/cpu"
	"github.com/deskprov/deskprov/pkg/log"
)

//written verbatim to the target's locale.gen
var localeGenEntries = []string{
	"en_US.UTF-8 UTF-8",
	"en_US ISO-8859-1",
	"C.UTF-8 UTF-8",
}

// configurePackages takes the bare stage3 to a fully-updated system on the
// desktop profile with the role meta-package installed. Everything runs in
// the chroot.
func configurePackages(ins *Install) error {
	cr := ins.cr
	if err := cr.Run("systemd-machine-id-setup"); err != nil {
		return err
	}
	if err := cr.Run("emerge-webrsync"); err != nil {
		return err
	}
	if err := selectProfile(cr, ins.cfg.BaseProfile); err != nil {
		return err
	}
	//bootstrap set: vcs client for the overlay, repo management, binpkg
	//trust anchor
	if err := cr.Run("emerge", "--quiet", "dev-vcs/git", "app-eselect/eselect-repository", "app-crypt/getuto"); err != nil {
		return err
	}
	if err := cr.Run("getuto"); err != nil {
		return err
	}
	if err := cr.Run("eselect", "repository", "add", ins.cfg.OverlayName, "git", ins.cfg.OverlayUrl); err != nil {
		return err
	}
	if err := cr.Run("emerge", "--sync", ins.cfg.OverlayName); err != nil {
		return err
	}
	if err := selectProfile(cr, ins.cfg.DesktopProfile); err != nil {
		return err
	}
	if err := cr.Run("emerge", "--quiet", ins.cfg.RolePkg); err != nil {
		return err
	}
	if err := ins.writeMakeConf(); err != nil {
		return err
	}
	if err := futil.AppendLines(fp.Join(ins.cfg.StagingRoot, "etc", "locale.gen"), localeGenEntries); err != nil {
		return err
	}
	return worldUpgrade(cr)
}

//the four make.conf additions enabling binary packages and sizing builds to
//the host
func (ins *Install) writeMakeConf() error {
	lines := []string{
		`FEATURES="${FEATURES} getbinpkg binpkg-respect-use"`,
		fmt.Sprintf(`PORTAGE_BINHOST="%s"`, ins.cfg.Binhost),
		fmt.Sprintf(`GENTOO_MIRRORS="%s"`, ins.cfg.Mirrors),
		fmt.Sprintf(`MAKEOPTS="-j%d"`, cpu.Count()),
	}
	mc := fp.Join(ins.cfg.StagingRoot, "etc", "portage", "make.conf")
	return futil.AppendLines(mc, lines)
}

// selectProfile picks the profile whose name contains substr. Profiles are
// matched dynamically; their numbering shifts between snapshots.
func selectProfile(cr *chroot.Runner, substr string) error {
	out, err := cr.Output("eselect", "profile", "list")
	if err != nil {
		return err
	}
	name, err := matchEselect(out, substr)
	if err != nil {
		return fmt.Errorf("profile %q: %w", substr, err)
	}
	return cr.Run("eselect", "profile", "set", name)
}

// matchEselect finds the first entry in `eselect ... list` output matching
// substr, returning its name. Lines look like
//   [12]  default/linux/amd64/23.0/desktop/systemd (stable)
func matchEselect(out, substr string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "[") {
			continue
		}
		if strings.Contains(fields[1], substr) {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("no match in eselect output")
}

// worldUpgrade brings @world current. portage and libxcrypt go first,
// alone and without dep checks - upgrading them mid-world is a known
// ordering hazard that can wedge the rest of the upgrade.
func worldUpgrade(cr *chroot.Runner) error {
	if err := cr.Run("emerge", "--oneshot", "--nodeps", "sys-apps/portage", "sys-libs/libxcrypt"); err != nil {
		return err
	}
	if err := cr.Run("emerge", "--quiet", "--update", "--deep", "--newuse", "@world"); err != nil {
		return err
	}
	if err := cr.Run("emerge", "--depclean"); err != nil {
		return err
	}
	if err := cr.Run("emerge", "--metadata"); err != nil {
		return err
	}
	log.Logf("world upgrade complete")
	return nil
}
