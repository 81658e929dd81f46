// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Deskprov turns one blank disk into a bootable desktop workstation in a
// single unattended run: partition, format, mount, stage3 unpack, package
// and service configuration, systemd-boot, first-boot preparation.
//
// The tool is intentionally linear and destructive. It refuses to start on
// a disk that is too small or not empty, but once partitioning begins there
// is no rollback; a failed run exits with a code identifying the failing
// step and leaves the staging mounts in place for inspection.
//
// Entry point is cmd/deskprov. The sequence itself lives in pkg/install;
// everything under pkg/hw is read-or-run plumbing around blkid, parted,
// sgdisk and sysfs.
package deskprov
