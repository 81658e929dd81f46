// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package net implements the network sanity checks run before anything is
//fetched over the wire.
package net

import (
	"fmt"
	stdnet "net"
	"time"

	"github.com/deskprov/deskprov/pkg/log"

	"github.com/vishvananda/netlink"
)

// AnyLinkUp returns true if at least one non-loopback link is up.
func AnyLinkUp() bool {
	links, err := netlink.LinkList()
	if err != nil {
		log.Logf("listing links: %s", err)
		return false
	}
	for _, l := range links {
		attrs := l.Attrs()
		if attrs.Flags&stdnet.FlagLoopback != 0 {
			continue
		}
		if attrs.OperState == netlink.OperUp {
			log.Logf("link %s is up", attrs.Name)
			return true
		}
	}
	return false
}

// WaitForLink polls until a non-loopback link comes up or the timeout
// elapses. Downloads are pointless without one.
func WaitForLink(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if AnyLinkUp() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no network link after %s", timeout)
		}
		time.Sleep(time.Second)
	}
}
