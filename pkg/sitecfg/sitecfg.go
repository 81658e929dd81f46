// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package sitecfg loads an optional site config file overriding the built-in
//mirror urls, labels, user names, etc. Absence of the file is not an error;
//a file that fails schema validation is.
package sitecfg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/deskprov/deskprov/pkg/common/strs"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Config struct {
	StagingRoot    string   `json:"staging_root,omitempty"`
	LogDir         string   `json:"log_dir,omitempty"`
	Stage3Index    string   `json:"stage3_index,omitempty"`
	Mirrors        []string `json:"mirrors,omitempty"`
	Binhost        string   `json:"binhost,omitempty"`
	OverlayName    string   `json:"overlay_name,omitempty"`
	OverlayUrl     string   `json:"overlay_url,omitempty"`
	BaseProfile    string   `json:"base_profile,omitempty"`
	DesktopProfile string   `json:"desktop_profile,omitempty"`
	RolePkg        string   `json:"role_pkg,omitempty"`
	AudioUser      string   `json:"audio_user,omitempty"`
	Timezone       string   `json:"timezone,omitempty"`
}

const schemaJson = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "staging_root":    {"type": "string", "pattern": "^/"},
    "log_dir":         {"type": "string", "pattern": "^/"},
    "stage3_index":    {"type": "string", "pattern": "^https?://"},
    "mirrors":         {"type": "array", "items": {"type": "string", "pattern": "^https?://"}},
    "binhost":         {"type": "string", "pattern": "^https?://"},
    "overlay_name":    {"type": "string", "minLength": 1},
    "overlay_url":     {"type": "string", "pattern": "^https?://"},
    "base_profile":    {"type": "string", "minLength": 1},
    "desktop_profile": {"type": "string", "minLength": 1},
    "role_pkg":        {"type": "string", "minLength": 1},
    "audio_user":      {"type": "string", "pattern": "^[a-z_][a-z0-9_-]*$"},
    "timezone":        {"type": "string", "minLength": 1}
  }
}`

var schema = jsonschema.MustCompileString("sitecfg.schema.json", schemaJson)

// Load reads, validates, and applies a site config file. Unset fields keep
// the built-in defaults.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("site config is not json: %s", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("site config rejected: %s", err)
	}
	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	c.fillDefaults()
	//labels and prefixes aren't site-configurable; capture their defaults
	//before this Config becomes the active Stringer
	strs.SetStringer(siteStrings{
		c:         c,
		envPrefix: strs.EnvPrefix(),
		logPrefix: strs.LogPrefix(),
		esp:       strs.EspLabel(),
		root:      strs.RootLabel(),
		vr:        strs.VarLabel(),
		swap:      strs.SwapLabel(),
		home:      strs.HomeLabel(),
	})
	return c, nil
}

//resolve unset fields to the built-in defaults
func (c *Config) fillDefaults() {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&c.StagingRoot, strs.StagingRoot())
	def(&c.LogDir, strs.LogDir())
	def(&c.Stage3Index, strs.Stage3Index())
	if len(c.Mirrors) == 0 {
		c.Mirrors = strings.Fields(strs.Mirrors())
	}
	def(&c.Binhost, strs.Binhost())
	def(&c.OverlayName, strs.OverlayName())
	def(&c.OverlayUrl, strs.OverlayUrl())
	def(&c.BaseProfile, strs.BaseProfile())
	def(&c.DesktopProfile, strs.DesktopProfile())
	def(&c.RolePkg, strs.RolePkg())
	def(&c.AudioUser, strs.AudioUser())
	def(&c.Timezone, strs.Timezone())
}

//adapts a Config to strs.Stringer
type siteStrings struct {
	c                    *Config
	envPrefix, logPrefix string
	esp, root, vr        string
	swap, home           string
}

var _ strs.Stringer = siteStrings{}

func (s siteStrings) EnvPrefix() string      { return s.envPrefix }
func (s siteStrings) LogPrefix() string      { return s.logPrefix }
func (s siteStrings) LogDir() string         { return s.c.LogDir }
func (s siteStrings) StagingRoot() string    { return s.c.StagingRoot }
func (s siteStrings) EspLabel() string       { return s.esp }
func (s siteStrings) RootLabel() string      { return s.root }
func (s siteStrings) VarLabel() string       { return s.vr }
func (s siteStrings) SwapLabel() string      { return s.swap }
func (s siteStrings) HomeLabel() string      { return s.home }
func (s siteStrings) Stage3Index() string    { return s.c.Stage3Index }
func (s siteStrings) Mirrors() string        { return strings.Join(s.c.Mirrors, " ") }
func (s siteStrings) Binhost() string        { return s.c.Binhost }
func (s siteStrings) OverlayName() string    { return s.c.OverlayName }
func (s siteStrings) OverlayUrl() string     { return s.c.OverlayUrl }
func (s siteStrings) BaseProfile() string    { return s.c.BaseProfile }
func (s siteStrings) DesktopProfile() string { return s.c.DesktopProfile }
func (s siteStrings) RolePkg() string        { return s.c.RolePkg }
func (s siteStrings) AudioUser() string      { return s.c.AudioUser }
func (s siteStrings) Timezone() string       { return s.c.Timezone }
