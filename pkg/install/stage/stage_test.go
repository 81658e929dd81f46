// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package stage

import (
	"io/ioutil"
	"testing"
)

//recorded latest-stage3-amd64-desktop-systemd.txt
const index = `-----BEGIN PGP SIGNED MESSAGE-----
Hash: SHA512

# Latest as of Sun, 24 Aug 2025 17:00:31 +0000
# ts=1756054831
20250824T165023Z/stage3-amd64-desktop-systemd-20250824T165023Z.tar.xz 1515639832
-----BEGIN PGP SIGNATURE-----

iQEzBAEBCgAdFiEEXQ1KM2D0MHbX8M1UGh9wrAC5lsgFAmirVa8ACgkQGh9wrAC5
-----END PGP SIGNATURE-----
`

//func parseIndex(data []byte) (string, error)
func TestParseIndex(t *testing.T) {
	rel, err := parseIndex([]byte(index))
	if err != nil {
		t.Fatal(err)
	}
	want := "20250824T165023Z/stage3-amd64-desktop-systemd-20250824T165023Z.tar.xz"
	if rel != want {
		t.Errorf("got %q want %q", rel, want)
	}
	if _, err = parseIndex([]byte("# only comments\n")); err == nil {
		t.Error("empty index accepted")
	}
}

//func Latest(indexUrl string) (string, error)
func TestLatestUrl(t *testing.T) {
	//Latest joins the index dir with the relative path; exercise the join
	//logic through a local file
	dir := t.TempDir()
	idx := dir + "/latest.txt"
	if err := ioutil.WriteFile(idx, []byte(index), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Latest(idx)
	if err != nil {
		t.Fatal(err)
	}
	want := dir + "/20250824T165023Z/stage3-amd64-desktop-systemd-20250824T165023Z.tar.xz"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
