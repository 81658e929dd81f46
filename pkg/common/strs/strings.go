// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Abstraction for strings that implementors will likely wish to change.
package strs

import (
	"github.com/deskprov/deskprov/pkg/log"
)

//Abstraction for strings that implementors will likely wish to change.
type Stringer interface {
	//Prefix used for env vars.
	EnvPrefix() string
	//Prefix used for the log file name.
	LogPrefix() string
	//Dir the log file is written to.
	LogDir() string
	//Dir the target root fs is mounted at during install.
	StagingRoot() string
	//Volume labels, by partition. ESP label is also the FAT volume id.
	EspLabel() string
	RootLabel() string
	VarLabel() string
	SwapLabel() string
	HomeLabel() string
	//Url of the stage3 autobuild index file.
	Stage3Index() string
	//Source mirror list for make.conf, space-separated.
	Mirrors() string
	//Binary package host url for make.conf.
	Binhost() string
	//Name of the extra package repository.
	OverlayName() string
	//Git url of the extra package repository.
	OverlayUrl() string
	//Substring identifying the initial build profile.
	BaseProfile() string
	//Substring identifying the final build profile.
	DesktopProfile() string
	//Meta-package pulling in the target role's package set.
	RolePkg() string
	//Login of the audio user. Created by the role meta-package.
	AudioUser() string
	//Timezone symlink target, relative to /usr/share/zoneinfo.
	Timezone() string
}

var stringImpl Stringer

//Override defaults.
func SetStringer(b Stringer) {
	if stringImpl != nil {
		log.Log("strs: overriding non-nil impl")
	}
	stringImpl = b
}

//Prefix used for env vars.
func EnvPrefix() string {
	if stringImpl != nil {
		return stringImpl.EnvPrefix()
	}
	return "DESKPROV_"
}

//Prefix used for the log file name.
func LogPrefix() string {
	if stringImpl != nil {
		return stringImpl.LogPrefix()
	}
	return "deskprov"
}

//Dir the log file is written to.
func LogDir() string {
	if stringImpl != nil {
		return stringImpl.LogDir()
	}
	return "/tmp"
}

//Dir the target root fs is mounted at during install.
func StagingRoot() string {
	if stringImpl != nil {
		return stringImpl.StagingRoot()
	}
	return "/mnt/gentoo"
}

func EspLabel() string {
	if stringImpl != nil {
		return stringImpl.EspLabel()
	}
	return "ESP"
}

func RootLabel() string {
	if stringImpl != nil {
		return stringImpl.RootLabel()
	}
	return "ROOT"
}

func VarLabel() string {
	if stringImpl != nil {
		return stringImpl.VarLabel()
	}
	return "VAR"
}

func SwapLabel() string {
	if stringImpl != nil {
		return stringImpl.SwapLabel()
	}
	return "SWAP"
}

func HomeLabel() string {
	if stringImpl != nil {
		return stringImpl.HomeLabel()
	}
	return "HOME"
}

//Url of the stage3 autobuild index file.
func Stage3Index() string {
	if stringImpl != nil {
		return stringImpl.Stage3Index()
	}
	return "https://distfiles.gentoo.org/releases/amd64/autobuilds/latest-stage3-amd64-desktop-systemd.txt"
}

//Source mirror list for make.conf, space-separated.
func Mirrors() string {
	if stringImpl != nil {
		return stringImpl.Mirrors()
	}
	return "https://distfiles.gentoo.org https://mirrors.mit.edu/gentoo-distfiles"
}

//Binary package host url for make.conf.
func Binhost() string {
	if stringImpl != nil {
		return stringImpl.Binhost()
	}
	return "https://distfiles.gentoo.org/releases/amd64/binpackages/23.0/x86-64"
}

//Name of the extra package repository.
func OverlayName() string {
	if stringImpl != nil {
		return stringImpl.OverlayName()
	}
	return "deskprov"
}

//Git url of the extra package repository.
func OverlayUrl() string {
	if stringImpl != nil {
		return stringImpl.OverlayUrl()
	}
	return "https://github.com/deskprov/portage-overlay.git"
}

//Substring identifying the initial build profile.
func BaseProfile() string {
	if stringImpl != nil {
		return stringImpl.BaseProfile()
	}
	return "/23.0/systemd"
}

//Substring identifying the final build profile.
func DesktopProfile() string {
	if stringImpl != nil {
		return stringImpl.DesktopProfile()
	}
	return "/23.0/desktop/systemd"
}

//Meta-package pulling in the target role's package set.
func RolePkg() string {
	if stringImpl != nil {
		return stringImpl.RolePkg()
	}
	return "app-misc/deskprov-workstation"
}

//Login of the audio user. Created by the role meta-package.
func AudioUser() string {
	if stringImpl != nil {
		return stringImpl.AudioUser()
	}
	return "studio"
}

//Timezone symlink target, relative to /usr/share/zoneinfo.
func Timezone() string {
	if stringImpl != nil {
		return stringImpl.Timezone()
	}
	return "Etc/UTC"
}
