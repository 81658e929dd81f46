// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Installs a complete desktop system onto a single blank disk. Destructive
// and linear: the target disk must be an empty block device of at least
// 80 GiB, and a failed run leaves the disk partially provisioned.
//
// Usage:
//
//	deskprov /dev/sdX
//
// An optional site config file, pointed to by DESKPROV_CONFIG, overrides
// the built-in mirror urls, profiles, labels and user names.
//
// Exit codes identify the failing step so wrapper tooling can tell a disk
// that was never touched (codes 2-4) from one left half-provisioned.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/deskprov/deskprov/pkg/common/strs"
	"github.com/deskprov/deskprov/pkg/hw/block"
	"github.com/deskprov/deskprov/pkg/install"
	"github.com/deskprov/deskprov/pkg/log"
	"github.com/deskprov/deskprov/pkg/log/flags"
	"github.com/deskprov/deskprov/pkg/sitecfg"
)

const (
	exitUsage        = 1
	exitNotEmptyDisk = 2
	exitBadUnit      = 3
	exitTooSmall     = 4
	exitPartition    = 5  //5-9, one per partition
	exitFormat       = 10 //10-14, one per partition
	exitMount        = 15 //15-18: root, boot, var, home
	exitOther        = 19
)

func usage() {
	fmt.Printf("usage: %s <block device>\n", os.Args[0])
	fmt.Printf("\nwipes the given disk and installs a desktop system on it.\n")
	fmt.Printf("set %s to override site defaults.\n", strs.ConfigEnv())
	if devs := block.Devices(); len(devs) > 0 {
		fmt.Printf("\ndisks on this machine:\n")
		for _, d := range devs {
			fmt.Printf("  %s\n", d)
		}
	}
}

func main() {
	if len(os.Args) != 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		usage()
		os.Exit(exitUsage)
	}
	if cfgFile := os.Getenv(strs.ConfigEnv()); cfgFile != "" {
		if _, err := sitecfg.Load(cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", cfgFile, err)
			os.Exit(exitUsage)
		}
	}
	log.SetPrefix(strs.LogPrefix())
	//the file log gets everything; console chatter is opt-in
	consoleFlags := flags.EndUser
	if os.Getenv(strs.VerboseEnv()) != "" {
		consoleFlags = flags.NA
	}
	log.AddConsoleLog(consoleFlags)
	if _, err := log.AddFileLog(strs.LogDir()); err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file: %s\n", err)
	}
	defer log.Finalize()

	ins := install.New(install.DefaultConfig(os.Args[1]))
	if f := ins.Run(); f != nil {
		code := exitCode(f)
		log.Msgf("install failed with exit code %d", code)
		if fname, ok := log.GetAttr("Filename"); ok {
			log.Msgf("full log: %s", fname)
		} else {
			//no file log survives this process; dump the whole transcript
			log.DumpStderr()
		}
		log.Finalize()
		os.Exit(code)
	}
	log.Msgf("install complete. next steps:")
	for _, s := range ins.Followups() {
		log.Msgf("  - %s", s)
	}
}

// exitCode maps a tagged step failure to this program's exit code scheme.
// Precondition failures get per-cause codes since those mean the disk was
// never written.
func exitCode(f *install.Failure) int {
	switch {
	case f.Phase == install.PhasePrecondition:
		switch {
		case errors.Is(f.Err, block.ENotBlockDev), errors.Is(f.Err, block.EPartitioned):
			return exitNotEmptyDisk
		case errors.Is(f.Err, block.EBadUnit):
			return exitBadUnit
		case errors.Is(f.Err, block.ETooSmall):
			return exitTooSmall
		}
	case f.Phase >= install.PhasePartitionEsp && f.Phase <= install.PhasePartitionHome:
		return exitPartition + int(f.Phase-install.PhasePartitionEsp)
	case f.Phase >= install.PhaseFormatEsp && f.Phase <= install.PhaseFormatHome:
		return exitFormat + int(f.Phase-install.PhaseFormatEsp)
	case f.Phase >= install.PhaseMountRoot && f.Phase <= install.PhaseMountHome:
		return exitMount + int(f.Phase-install.PhaseMountRoot)
	}
	return exitOther
}
