// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package stage installs the base system: resolve the newest stage3 from the
//autobuild index, download, unpack onto the target root, prepare the chroot.
package stage

import (
	"fmt"
	"os"
	"os/exec"
	fp "path/filepath"
	"strings"

	futil "github.com/deskprov/deskprov/pkg/fileutil"
	"github.com/deskprov/deskprov/pkg/log"
	"github.com/deskprov/deskprov/pkg/net/xfer"

	"github.com/ulikunitz/xz"
)

// Latest fetches the autobuild index and returns the url of the newest
// stage3 tarball.
func Latest(indexUrl string) (string, error) {
	data, err := xfer.GetFile(indexUrl)
	if err != nil {
		return "", err
	}
	rel, err := parseIndex(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", indexUrl, err)
	}
	base := indexUrl[:strings.LastIndex(indexUrl, "/")+1]
	return base + rel, nil
}

// parseIndex finds the tarball path in a latest-stage3 index. The index is a
// pgp-signed text file; tarball lines are 'path size', everything else is
// comments or signature armor.
func parseIndex(data []byte) (string, error) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-----") {
			continue
		}
		fields := strings.Fields(line)
		if strings.Contains(fields[0], ".tar.") {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("no stage3 tarball in index")
}

//room for the tarball plus its extracted tree
const minStagingBytes = 8 << 30

// Fetch downloads the tarball next to the staging root. Returns the local
// path.
func Fetch(url, stagingRoot string) (string, error) {
	if free := futil.FreeSpace(stagingRoot); free >= 0 && free < minStagingBytes {
		return "", fmt.Errorf("%d MiB free under %s, need %d", free>>20, stagingRoot, minStagingBytes>>20)
	}
	dest := fp.Join(stagingRoot, fp.Base(url))
	if _, err := xfer.DownloadTo(url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Unpack extracts the stage3 tarball onto root, preserving permissions,
// xattrs, and numeric ownership - the archive's uids must never be remapped
// through the host's passwd. The archive is deleted on success.
func Unpack(tarball, root string) error {
	var err error
	if _, lperr := exec.LookPath("xz"); lperr == nil || !futil.IsXZ(tarball) {
		err = extractTar(tarball, root)
	} else {
		log.Logf("no xz binary; decompressing %s natively", tarball)
		err = extractTarNativeXz(tarball, root)
	}
	if err != nil {
		return err
	}
	return os.Remove(tarball)
}

func extractTar(tarball, root string) error {
	tar := exec.Command("tar", "xpf", tarball,
		"--xattrs-include=*.*", "--numeric-owner", "-C", root)
	if _, success := log.Cmd(tar); !success {
		return fmt.Errorf("extracting %s failed", tarball)
	}
	return nil
}

//feed tar from a native xz reader; tar itself would shell out to xz
func extractTarNativeXz(tarball, root string) error {
	f, err := os.Open(tarball)
	if err != nil {
		return err
	}
	defer f.Close()
	xzr, err := xz.NewReader(f)
	if err != nil {
		return err
	}
	tar := exec.Command("tar", "xp",
		"--xattrs-include=*.*", "--numeric-owner", "-C", root, "-f", "-")
	tar.Stdin = xzr
	if _, success := log.Cmd(tar); !success {
		return fmt.Errorf("extracting %s failed", tarball)
	}
	return nil
}
