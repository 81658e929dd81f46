// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package id returns UID, GID for given user from given filesystem
//(not necessarily mounted at /)
package id

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

//return numeric group id of 'group', using data in fs at 'root'
// or -1 if error
func GetGID(root, group string) (rv int, err error) {
	gfile := filepath.Join(root, "etc", "group")
	rv, err = lookup(gfile, group)
	if err != nil {
		err = fmt.Errorf("getGID: %s", err)
	}
	return
}

//return numeric user id of 'user', using data in fs at 'root'
// or -1 if error
func GetUID(root, user string) (rv int, err error) {
	ufile := filepath.Join(root, "etc", "passwd")
	rv, err = lookup(ufile, user)
	if err != nil {
		err = fmt.Errorf("getUID: %s", err)
	}
	return
}

//passwd and group share the name:x:id:... layout for the first 3 fields
func lookup(file, name string) (rv int, err error) {
	rv = -1
	f, err := os.Open(file)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := splitEnt(scanner.Text())
		if len(fields) < 3 || fields[0] != name {
			continue
		}
		rv, err = strconv.Atoi(fields[2])
		if err != nil {
			err = fmt.Errorf("err %s finding %s in %s", err, name, file)
			rv = -1
		}
		return
	}
	err = fmt.Errorf("can't find %s in %s", name, file)
	return
}

func splitEnt(line string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ':' {
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	return append(fields, line[start:])
}
