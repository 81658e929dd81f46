// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package uefi determines whether the system booted in UEFI mode or legacy.
package uefi

import (
	"os"
)

//return true if the system booted via UEFI (as opposed to legacy)
func BootedUEFI() bool {
	_, err := os.Stat("/sys/firmware/efi")
	return (err == nil)
}
