// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package plan

import (
	"testing"

	"github.com/deskprov/deskprov/pkg/hw/block/partitioning"

	"github.com/google/go-cmp/cmp"
)

//func Layout(capacityGiB float64) []Part
func TestLayout80(t *testing.T) {
	got := Layout(80.0)
	want := []Part{
		{1, 300, partitioning.ESP, true, "ESP"},
		{2, 20480, partitioning.LinuxRoot, false, "ROOT"},
		{3, 8192, partitioning.LinuxVar, false, "VAR"},
		{4, 8192, partitioning.LinuxSwap, false, "SWAP"},
		{5, 0, partitioning.Linux, false, "HOME"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	//~43.4G left for home on an 80G disk
	home := HomeMiB(80.0)
	if home < 43000 || home > 45000 {
		t.Errorf("home space %dMiB, want ~43.4G", home)
	}
}

//func rootVar(capacityGiB float64) (rootMiB, varMiB uint64)
func TestTierBoundaries(t *testing.T) {
	for _, td := range []struct {
		capacity float64
		rootMiB  uint64
		varMiB   uint64
	}{
		{80.0, 20480, 8192},
		{99.9, 20480, 8192}, //strictly less than 100
		{100.0, 30720, 12288},
		{127.9, 30720, 12288},
		{128.0, 40960, 18432},
		{255.9, 40960, 18432},
		{256.0, 61440, 26624},
		{511.9, 61440, 26624},
		{512.0, 81920, 40960},
		{4096.0, 81920, 40960},
	} {
		r, v := rootVar(td.capacity)
		if r != td.rootMiB || v != td.varMiB {
			t.Errorf("%.1fGiB: root=%d var=%d, want %d/%d", td.capacity, r, v, td.rootMiB, td.varMiB)
		}
	}
}

//sizes never shrink as capacity grows, and home space stays positive
func TestMonotonic(t *testing.T) {
	var lastRoot, lastVar uint64
	for c := 80.0; c <= 2048.0; c += 0.5 {
		r, v := rootVar(c)
		if r < lastRoot || v < lastVar {
			t.Fatalf("%.1fGiB: sizes shrank (root %d->%d, var %d->%d)", c, lastRoot, r, lastVar, v)
		}
		lastRoot, lastVar = r, v
		if home := HomeMiB(c); home <= 0 {
			t.Fatalf("%.1fGiB: home space %dMiB", c, home)
		}
	}
}
