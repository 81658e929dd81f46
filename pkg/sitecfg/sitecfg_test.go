// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package sitecfg

import (
	"testing"

	"github.com/deskprov/deskprov/pkg/common/strs"
	"github.com/deskprov/deskprov/pkg/log/testlog"
)

//func parse(data []byte) (*Config, error)
func TestParse(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	defer strs.SetStringer(nil)
	c, err := parse([]byte(`{
		"staging_root": "/mnt/target",
		"mirrors": ["https://mirror.example.com/gentoo"],
		"audio_user": "daw"
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.StagingRoot != "/mnt/target" {
		t.Errorf("staging_root: %s", c.StagingRoot)
	}
	//unset fields must keep defaults
	if c.Timezone != "Etc/UTC" {
		t.Errorf("timezone default lost: %s", c.Timezone)
	}
	//and the overrides must be live through strs
	if strs.StagingRoot() != "/mnt/target" {
		t.Errorf("strs.StagingRoot()=%s", strs.StagingRoot())
	}
	if strs.AudioUser() != "daw" {
		t.Errorf("strs.AudioUser()=%s", strs.AudioUser())
	}
	if strs.Mirrors() != "https://mirror.example.com/gentoo" {
		t.Errorf("strs.Mirrors()=%s", strs.Mirrors())
	}
	if strs.EspLabel() != "ESP" {
		t.Errorf("label default lost: %s", strs.EspLabel())
	}
}

//func parse(data []byte) (*Config, error)
func TestParseRejects(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	for _, bad := range []string{
		`{"staging_root": "relative/path"}`,
		`{"binhost": "ftp://old.example.com"}`,
		`{"audio_user": "Bad User"}`,
		`{"unknown_key": true}`,
		`not json`,
	} {
		if _, err := parse([]byte(bad)); err == nil {
			t.Errorf("accepted %s", bad)
		}
	}
}
