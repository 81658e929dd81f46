// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package plan sizes the fixed five-partition layout for a given disk. Pure
//computation, no side effects.
package plan

import (
	"fmt"

	"github.com/deskprov/deskprov/pkg/common/strs"
	"github.com/deskprov/deskprov/pkg/hw/block/partitioning"
)

// Part describes one planned partition. SizeMiB 0 means all remaining space.
type Part struct {
	Index   int //1-based, also the on-disk partition number
	SizeMiB uint64
	Type    partitioning.PartType
	Boot    bool
	Label   string
}

func (p Part) String() string {
	size := "remaining"
	if p.SizeMiB != 0 {
		size = fmt.Sprintf("%dMiB", p.SizeMiB)
	}
	return fmt.Sprintf("%d %s %s %s", p.Index, p.Label, size, p.Type)
}

const (
	EspMiB  = 300
	SwapMiB = 8 * 1024
)

// tier maps a capacity ceiling (strict less-than, in GiB) to root/var sizes.
// Tiers are checked in order; the last entry catches everything >= 512.
var tiers = []struct {
	belowGiB float64
	rootMiB  uint64
	varMiB   uint64
}{
	{100, 20 * 1024, 8 * 1024},
	{128, 30 * 1024, 12 * 1024},
	{256, 40 * 1024, 18 * 1024},
	{512, 60 * 1024, 26 * 1024},
	{0, 80 * 1024, 40 * 1024},
}

// Layout returns the five-partition plan for a disk of the given capacity.
// ESP and swap are fixed; root and var come from the capacity tier; home
// takes whatever is left.
func Layout(capacityGiB float64) []Part {
	rootMiB, varMiB := rootVar(capacityGiB)
	return []Part{
		{1, EspMiB, partitioning.ESP, true, strs.EspLabel()},
		{2, rootMiB, partitioning.LinuxRoot, false, strs.RootLabel()},
		{3, varMiB, partitioning.LinuxVar, false, strs.VarLabel()},
		{4, SwapMiB, partitioning.LinuxSwap, false, strs.SwapLabel()},
		{5, 0, partitioning.Linux, false, strs.HomeLabel()},
	}
}

func rootVar(capacityGiB float64) (rootMiB, varMiB uint64) {
	for _, t := range tiers {
		if t.belowGiB == 0 || capacityGiB < t.belowGiB {
			return t.rootMiB, t.varMiB
		}
	}
	panic("unreachable")
}

// HomeMiB returns the approximate space left over for home, given total
// capacity. Ignores gpt overhead. Positive for any disk at or above the
// 80 GiB minimum.
func HomeMiB(capacityGiB float64) int64 {
	rootMiB, varMiB := rootVar(capacityGiB)
	return int64(capacityGiB*1024) - int64(EspMiB+SwapMiB+rootMiB+varMiB)
}
