// Copyright (C) 2021-2026 the Deskprov Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"github.com/deskprov/deskprov/pkg/log"
)

// Step is one unit of the installation sequence. Steps run strictly in
// order; the first error stops the run. Destructive steps are not undone.
type Step struct {
	Name  string
	Phase Phase
	Run   func(*Install) error
}

// runSteps executes steps in order, returning a tagged Failure for the first
// error.
func runSteps(ins *Install, steps []Step) *Failure {
	for i, s := range steps {
		log.Msgf("[%d/%d] %s", i+1, len(steps), s.Name)
		if err := s.Run(ins); err != nil {
			log.Warnf("%s failed: %s", s.Name, err)
			return &Failure{Index: i, Phase: s.Phase, Err: err}
		}
	}
	return nil
}
