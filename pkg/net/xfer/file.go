// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package xfer handles robust file transfers - small metadata files into
//memory, large archives onto disk.
package xfer

import (
	"fmt"
	"io"
	"io/ioutil"
	stdlog "log"
	"os"
	"strings"

	"github.com/deskprov/deskprov/pkg/log"
	"github.com/deskprov/deskprov/pkg/log/flags"

	"github.com/hashicorp/go-retryablehttp"
)

// Client retries transient failures with backoff; stage3 mirrors flake.
var Client = NewClient()

func NewClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 4
	//retryablehttp logs through a standard logger; route it into our stack
	sl := stdlog.New(os.Stderr, "", 0)
	log.AdaptStdlog(sl, flags.NA, true)
	c.Logger = sl
	return c
}

//retrieves file, either on local fs or via http/https
func GetFile(url string) (content []byte, err error) {
	if !isRemote(url) {
		return ioutil.ReadFile(url)
	}
	log.Logf("downloading %s", url)
	res, err := Client.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("GET %s: %s", url, res.Status)
	}
	return ioutil.ReadAll(res.Body)
}

// DownloadTo streams url to dest on disk, for files too large to hold in
// memory. Partial downloads are removed.
func DownloadTo(url, dest string) (written int64, err error) {
	if !isRemote(url) {
		return 0, fmt.Errorf("not a url: %s", url)
	}
	log.Logf("downloading %s -> %s", url, dest)
	res, err := Client.Get(url)
	if err != nil {
		return
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return 0, fmt.Errorf("GET %s: %s", url, res.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return
	}
	written, err = io.Copy(f, res.Body)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return 0, err
	}
	if res.ContentLength > 0 && written != res.ContentLength {
		os.Remove(dest)
		return 0, fmt.Errorf("GET %s: wrote %d of %d bytes", url, written, res.ContentLength)
	}
	return
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
