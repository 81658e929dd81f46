// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package strs

func VerboseEnv() string { return EnvPrefix() + "VERBOSE" }
func ConfigEnv() string  { return EnvPrefix() + "CONFIG" }
