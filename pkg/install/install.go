// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package install sequences a complete disk-to-desktop installation: validate
//the target disk, partition, format, mount, unpack a stage3, configure
//packages and services, install the bootloader, prepare the first boot.
//
//The sequence is linear and destructive. There is no rollback; a failure
//after partitioning leaves the disk in whatever state the failing step
//produced.
package install

import (
	"fmt"
	fp "path/filepath"
	"time"

	"github.com/deskprov/deskprov/pkg/chroot"
	"github.com/deskprov/deskprov/pkg/common/strs"
	futil "github.com/deskprov/deskprov/pkg/fileutil"
	"github.com/deskprov/deskprov/pkg/hw/block"
	"github.com/deskprov/deskprov/pkg/hw/block/partitioning"
	"github.com/deskprov/deskprov/pkg/hw/uefi"
	"github.com/deskprov/deskprov/pkg/install/disk"
	"github.com/deskprov/deskprov/pkg/install/stage"
	"github.com/deskprov/deskprov/pkg/log"
	"github.com/deskprov/deskprov/pkg/net"
	"github.com/deskprov/deskprov/pkg/plan"
)

//seams for tests; production never reassigns these
var (
	stageLatest     = stage.Latest
	stageFetch      = stage.Fetch
	stageUnpack     = stage.Unpack
	stagePrepChroot = stage.PrepChroot
	linkWait        = net.WaitForLink
)

// Config carries everything site-dependent, so nothing below reaches for
// ambient state. Defaults come from strs; a site config file can override
// them before DefaultConfig is called.
type Config struct {
	Device         string
	StagingRoot    string
	Stage3Index    string
	Mirrors        string
	Binhost        string
	OverlayName    string
	OverlayUrl     string
	BaseProfile    string
	DesktopProfile string
	RolePkg        string
	AudioUser      string
	Timezone       string
}

func DefaultConfig(device string) Config {
	return Config{
		Device:         device,
		StagingRoot:    strs.StagingRoot(),
		Stage3Index:    strs.Stage3Index(),
		Mirrors:        strs.Mirrors(),
		Binhost:        strs.Binhost(),
		OverlayName:    strs.OverlayName(),
		OverlayUrl:     strs.OverlayUrl(),
		BaseProfile:    strs.BaseProfile(),
		DesktopProfile: strs.DesktopProfile(),
		RolePkg:        strs.RolePkg(),
		AudioUser:      strs.AudioUser(),
		Timezone:       strs.Timezone(),
	}
}

//partition indices into Install.fss, matching on-disk order
const (
	pEsp = iota
	pRoot
	pVar
	pSwap
	pHome
)

type Install struct {
	cfg      Config
	capacity float64 //GiB, set by the precondition step
	parts    []plan.Part
	ptn      partitioning.Partitioner
	fss      [5]*disk.Filesystem
	cr       *chroot.Runner
}

func New(cfg Config) *Install {
	return &Install{
		cfg: cfg,
		cr:  chroot.New(cfg.StagingRoot),
	}
}

// Run executes the whole sequence, then best-effort teardown. Teardown only
// happens on success; after a failure the mounts are left for inspection.
func (ins *Install) Run() *Failure {
	if f := runSteps(ins, ins.Steps()); f != nil {
		return f
	}
	for _, err := range ins.Teardown() {
		log.Warnf("teardown: %s", err)
	}
	return nil
}

// Steps returns the full installation sequence in execution order.
func (ins *Install) Steps() []Step {
	steps := []Step{
		{"validate target disk", PhasePrecondition, validate},
	}
	names := []string{"ESP", "root", "var", "swap", "home"}
	for i := 0; i < 5; i++ {
		i := i
		steps = append(steps, Step{
			Name:  "create " + names[i] + " partition",
			Phase: PhasePartitionEsp + Phase(i),
			Run:   func(ins *Install) error { return ins.partition(i) },
		})
	}
	for i := 0; i < 5; i++ {
		i := i
		steps = append(steps, Step{
			Name:  "format " + names[i] + " partition",
			Phase: PhaseFormatEsp + Phase(i),
			Run:   func(ins *Install) error { return ins.fss[i].Format() },
		})
	}
	steps = append(steps,
		Step{"mount root", PhaseMountRoot, func(ins *Install) error { return ins.mount(pRoot, false) }},
		Step{"mount boot", PhaseMountBoot, func(ins *Install) error { return ins.mount(pEsp, true) }},
		Step{"mount var", PhaseMountVar, func(ins *Install) error { return ins.mount(pVar, true) }},
		Step{"mount home", PhaseMountHome, func(ins *Install) error { return ins.mount(pHome, true) }},
		Step{"install base system", PhaseBaseSystem, baseSystem},
		Step{"configure packages", PhaseConfigure, configurePackages},
		Step{"configure system", PhaseSysConfig, configureSystem},
		Step{"install bootloader and kernel", PhaseBootloader, installBoot},
		Step{"prepare first boot", PhaseFirstBoot, prepareFirstBoot},
	)
	return steps
}

func validate(ins *Install) error {
	if !uefi.BootedUEFI() {
		log.Warnf("not booted via UEFI; the installed system requires it")
	}
	//leftovers from an earlier run would silently absorb the install
	if futil.IsMountpoint(ins.cfg.StagingRoot) {
		return fmt.Errorf("%s is already a mountpoint; unmount it first", ins.cfg.StagingRoot)
	}
	capacity, err := block.Validate(ins.cfg.Device)
	if err != nil {
		return err
	}
	ins.capacity = capacity
	log.Logf("%s: %.1f GiB, empty", ins.cfg.Device, capacity)
	ins.plan()
	return nil
}

//sizes the layout and wires up the partitioner and filesystems
func (ins *Install) plan() {
	ins.parts = plan.Layout(ins.capacity)
	ins.ptn = partitioning.NewGpt(ins.cfg.Device)
	for _, p := range ins.parts {
		ins.ptn.Add(p.SizeMiB, p.Type, p.Boot, p.Label)
		log.Logf("planned: %s", p)
	}
	sr := ins.cfg.StagingRoot
	ins.fss[pEsp] = disk.VfatFs(ins.partDev(1), strs.EspLabel(), fp.Join(sr, "boot"))
	ins.fss[pRoot] = disk.Ext4Fs(ins.partDev(2), strs.RootLabel(), sr)
	ins.fss[pVar] = disk.Ext4Fs(ins.partDev(3), strs.VarLabel(), fp.Join(sr, "var"))
	ins.fss[pSwap] = disk.SwapFs(ins.partDev(4), strs.SwapLabel())
	ins.fss[pHome] = disk.Ext4Fs(ins.partDev(5), strs.HomeLabel(), fp.Join(sr, "home"))
}

func (ins *Install) partDev(n int) string {
	return block.PartDev(ins.cfg.Device, n)
}

func (ins *Install) partition(i int) error {
	if err := ins.ptn.Commit(i); err != nil {
		return err
	}
	if i == pHome {
		log.Logf("final partition table:\n%s", partitioning.List(ins.cfg.Device))
	}
	return nil
}

func (ins *Install) mount(i int, immutable bool) error {
	fs := ins.fss[i]
	if immutable {
		if err := disk.PrepMountpoint(fs.Mountpoint()); err != nil {
			return err
		}
	}
	_, err := fs.MountErr()
	return err
}

func baseSystem(ins *Install) error {
	if err := linkWait(2 * time.Minute); err != nil {
		return err
	}
	url, err := stageLatest(ins.cfg.Stage3Index)
	if err != nil {
		return err
	}
	tarball, err := stageFetch(url, ins.cfg.StagingRoot)
	if err != nil {
		return err
	}
	if err = stageUnpack(tarball, ins.cfg.StagingRoot); err != nil {
		return err
	}
	if err = disk.WriteFstab(ins.cfg.StagingRoot, ins.fss[:]); err != nil {
		return fmt.Errorf("writing fstab: %s", err)
	}
	return stagePrepChroot(ins.cfg.StagingRoot)
}

// Followups the operator must do by hand after a successful run.
func (ins *Install) Followups() []string {
	return []string{
		"log in as root and " + ins.cfg.AudioUser + " to replace the expired temporary passwords",
		"run the desktop first-boot wizard as " + ins.cfg.AudioUser,
		"verify time sync: timedatectl timesync-status",
	}
}
