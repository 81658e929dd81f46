// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package block

import (
	"fmt"
	"os/exec"
	fp "path/filepath"
	"strconv"
	"strings"

	"github.com/deskprov/deskprov/pkg/log"
)

// Report summarizes a device as seen by parted's machine output. Sizes are in
// decimal GiB as printed by parted, TiB normalized x1024.
type Report struct {
	Device     string
	SizeGiB    float64
	FreeGiB    float64
	Table      string
	Partitions int
}

var (
	ENotBlockDev = fmt.Errorf("not a block device")
	EPartitioned = fmt.Errorf("device is already partitioned")
	EBadUnit     = fmt.Errorf("unparseable device size unit")
	ETooSmall    = fmt.Errorf("device below 80 GiB minimum")
)

// MinCapacityGiB is the smallest device the fixed partition layout fits on
// with a usable home partition.
const MinCapacityGiB = 80.0

// DeviceReport runs parted against dev and parses the result. Requires dev to
// be a block device node.
func DeviceReport(dev string) (r Report, err error) {
	if !IsBlockDev(dev) {
		return r, fmt.Errorf("%s: %w", dev, ENotBlockDev)
	}
	if IsPart(fp.Base(dev)) {
		return r, fmt.Errorf("%s is a partition, not a whole disk: %w", dev, ENotBlockDev)
	}
	out, success := log.Cmd(exec.Command("parted", "-sm", dev, "unit", "GiB", "print", "free"))
	//parted exits nonzero on a factory-blank disk with no table at all, but
	//still prints the device line (table "unknown"); that case is valid input
	if !success && !strings.Contains(out, "unrecognised disk label") {
		return r, fmt.Errorf("parted failed on %s", dev)
	}
	return parsePartedOut(dev, []byte(out))
}

// parsePartedOut parses `parted -sm <dev> unit GiB print free` output. Lines:
//   BYT;
//   /dev/sda:80.0GiB:scsi:512:512:gpt:QEMU HARDDISK:;
//   1:0.00GiB:80.0GiB:80.0GiB:free;
// Numbered lines are partitions; 'free' lines are unallocated gaps.
func parsePartedOut(dev string, out []byte) (r Report, err error) {
	r.Device = dev
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ";")
		if len(line) == 0 || line == "BYT" {
			continue
		}
		fields := strings.Split(line, ":")
		if fields[0] == dev {
			if len(fields) < 6 {
				return r, fmt.Errorf("can't parse parted device line %q", line)
			}
			r.SizeGiB, err = parseSize(fields[1])
			if err != nil {
				return
			}
			r.Table = fields[5]
			continue
		}
		if len(fields) < 5 {
			continue
		}
		if fields[4] == "free" {
			sz, err := parseSize(fields[3])
			if err != nil {
				return r, err
			}
			r.FreeGiB += sz
			continue
		}
		if _, aerr := strconv.Atoi(fields[0]); aerr == nil {
			r.Partitions++
		}
	}
	if r.SizeGiB == 0 {
		err = fmt.Errorf("no device line in parted output for %s", dev)
		return
	}
	//no table means no free rows either; the whole device is unallocated
	if r.Table == "unknown" && r.Partitions == 0 {
		r.FreeGiB = r.SizeGiB
	}
	return
}

// parseSize converts parted's size strings to GiB. Only GiB and TiB are
// accepted; any other suffix means parted ignored our unit request.
func parseSize(s string) (float64, error) {
	mul := 1.0
	var num string
	switch {
	case strings.HasSuffix(s, "GiB"):
		num = strings.TrimSuffix(s, "GiB")
	case strings.HasSuffix(s, "TiB"):
		num = strings.TrimSuffix(s, "TiB")
		mul = 1024.0
	default:
		return 0, fmt.Errorf("%q: %w", s, EBadUnit)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, EBadUnit)
	}
	return v * mul, nil
}

// Validate checks that dev is safe to provision and returns its capacity in
// GiB.
func Validate(dev string) (capacity float64, err error) {
	r, err := DeviceReport(dev)
	if err != nil {
		return 0, err
	}
	return r.Validate()
}

// Validate checks the report for an empty, large-enough device. Order
// matters: the partitioned check fires before the capacity check, so an
// undersized in-use disk reports the more alarming condition first.
func (r Report) Validate() (capacity float64, err error) {
	if err = r.CheckEmpty(); err != nil {
		return 0, err
	}
	if r.SizeGiB < MinCapacityGiB {
		return 0, fmt.Errorf("%s is %.1f GiB: %w", r.Device, r.SizeGiB, ETooSmall)
	}
	return r.SizeGiB, nil
}

// CheckEmpty returns EPartitioned unless the device carries no partitions and
// its free space spans the whole device. Parted rounds, so allow 0.1 GiB
// slack on the span comparison.
func (r Report) CheckEmpty() error {
	if r.Partitions > 0 {
		return fmt.Errorf("%s has %d partition(s): %w", r.Device, r.Partitions, EPartitioned)
	}
	if r.SizeGiB-r.FreeGiB > 0.1 {
		return fmt.Errorf("%s: %.1f of %.1f GiB unallocated: %w", r.Device, r.FreeGiB, r.SizeGiB, EPartitioned)
	}
	return nil
}
