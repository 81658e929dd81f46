// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package cpu counts the host's cpus, generally for use in sizing build
//concurrency.
package cpu

import (
	"io/ioutil"
	"strings"

	"github.com/deskprov/deskprov/pkg/log"
)

var numCpus uint16

func Count() uint16 {
	if numCpus == 0 {
		numCpus = countSysfs("/sys/devices/system/cpu/")
	}
	if numCpus == 0 {
		//sysfs unreadable; a host with 1 cpu can still install
		numCpus = 1
	}
	return numCpus
}

/* runtime.NumCPU() won't always show what we want - the cpu list could
 * be sparse due to disabled/banned cpus, possibly other reasons.
 * this uses /sys/devices/system/cpu/ to figure out what cpus exist, under
 * the assumption that it could be more complete than the info returned by the
 * function underlying NumCPU, sched_getaffinity.
 */
func countSysfs(dir string) (count uint16) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		log.Logf("err %s reading dir for cpu count\n", err)
		return
	}
	for _, fi := range files {
		name := fi.Name()
		if strings.HasPrefix(name, "cpu") && len(name) > 3 && isDigit(name[3]) {
			count++
		}
	}
	return
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
