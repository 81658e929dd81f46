// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"fmt"
)

// Phase identifies where in the run a step belongs. The cli maps phases to
// exit codes; nothing in this package knows about exit codes.
type Phase int

const (
	PhasePrecondition Phase = iota
	PhasePartitionEsp
	PhasePartitionRoot
	PhasePartitionVar
	PhasePartitionSwap
	PhasePartitionHome
	PhaseFormatEsp
	PhaseFormatRoot
	PhaseFormatVar
	PhaseFormatSwap
	PhaseFormatHome
	PhaseMountRoot
	PhaseMountBoot
	PhaseMountVar
	PhaseMountHome
	PhaseBaseSystem
	PhaseConfigure
	PhaseSysConfig
	PhaseBootloader
	PhaseFirstBoot
)

func (p Phase) String() string {
	switch p {
	case PhasePrecondition:
		return "precondition"
	case PhasePartitionEsp, PhasePartitionRoot, PhasePartitionVar, PhasePartitionSwap, PhasePartitionHome:
		return fmt.Sprintf("partition %d", p-PhasePartitionEsp+1)
	case PhaseFormatEsp, PhaseFormatRoot, PhaseFormatVar, PhaseFormatSwap, PhaseFormatHome:
		return fmt.Sprintf("format %d", p-PhaseFormatEsp+1)
	case PhaseMountRoot:
		return "mount root"
	case PhaseMountBoot:
		return "mount boot"
	case PhaseMountVar:
		return "mount var"
	case PhaseMountHome:
		return "mount home"
	case PhaseBaseSystem:
		return "base system"
	case PhaseConfigure:
		return "package config"
	case PhaseSysConfig:
		return "system config"
	case PhaseBootloader:
		return "bootloader"
	case PhaseFirstBoot:
		return "first boot prep"
	}
	return "unknown phase"
}

// Failure tags a step error with where it happened. Index is the position in
// the step sequence.
type Failure struct {
	Index int
	Phase Phase
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("step %d (%s): %s", f.Index, f.Phase, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }
