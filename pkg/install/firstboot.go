// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"crypto/rand"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	fp "path/filepath"
	"strings"

	"github.com/deskprov/deskprov/pkg/log"

	"github.com/google/uuid"
)

// namespace for deriving the var partition's fs uuid from the machine id.
// Reinstalling on the same machine yields the same uuid; different machines
// never collide.
var varUuidNs = uuid.MustParse("f4b5722b-5c46-46a9-a1f5-49bd10bcb27d")

// prepareFirstBoot finishes work that depends on the installed system's
// identity: the expiring temporary passwords, then the var partition uuid.
// Passwords go first - the uuid stamp unmounts var, and the chroot steps
// want the full tree.
func prepareFirstBoot(ins *Install) error {
	if err := ins.setTempPasswords(); err != nil {
		return err
	}
	return ins.stampVarUuid()
}

// stampVarUuid derives var's fs uuid from the machine id and applies it.
// tune2fs refuses uuid changes on a mounted filesystem, so var is unmounted
// for the stamp and remounted after.
func (ins *Install) stampVarUuid() error {
	mid, err := ioutil.ReadFile(fp.Join(ins.cfg.StagingRoot, "etc", "machine-id"))
	if err != nil {
		return fmt.Errorf("reading machine-id: %s", err)
	}
	u := uuid.NewSHA1(varUuidNs, []byte(strings.TrimSpace(string(mid))))
	fs := ins.fss[pVar]
	if err = fs.UmountErr(); err != nil {
		return err
	}
	if _, success := log.Cmd(exec.Command("tune2fs", "-U", u.String(), fs.Device())); !success {
		return fmt.Errorf("tune2fs -U %s %s failed", u, fs.Device())
	}
	log.Logf("var uuid %s (derived from machine id)", u)
	_, err = fs.MountErr()
	return err
}

// setTempPasswords sets random throwaway passwords for root and the audio
// user and expires both, forcing a change at first login. pwquality would
// veto anything this generates, so its config is moved aside for the
// duration.
func (ins *Install) setTempPasswords() error {
	pwq := fp.Join(ins.cfg.StagingRoot, "etc", "security", "pwquality.conf")
	moved := false
	if err := os.Rename(pwq, pwq+".orig"); err == nil {
		moved = true
	} else if !os.IsNotExist(err) {
		return err
	}
	defer func() {
		if moved {
			if err := os.Rename(pwq+".orig", pwq); err != nil {
				log.Warnf("restoring pwquality.conf: %s", err)
			}
		}
	}()
	for _, user := range []string{"root", ins.cfg.AudioUser} {
		pw, err := tempPassword()
		if err != nil {
			return err
		}
		in := strings.NewReader(fmt.Sprintf("%s:%s\n", user, pw))
		if err := ins.cr.RunInput(in, "chpasswd"); err != nil {
			return err
		}
		if err := ins.cr.Run("passwd", "-e", user); err != nil {
			return err
		}
		log.Msgf("temporary password for %s: %s (expired, change at first login)", user, pw)
	}
	return nil
}

func tempPassword() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", b), nil
}
