/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package opts

import (
	"github.com/cloudwego/regionopt/ir"
)

type Options struct {
	MaxIterations int
	MergeBlocks   bool
	DebugTrace    bool
	Effects       ir.EffectOracle
	Removal       ir.RemovalOracle
	Branches      ir.BranchOracle
	Listener      ir.Listener
}

// CanIterate reports whether round n of a fixed-point loop may run.
func (self *Options) CanIterate(n int) bool {
	return self.MaxIterations > n || self.MaxIterations == 0
}

// RemovalOracle returns the removability oracle, derived from the effect
// oracle unless one was given explicitly.
func (self *Options) RemovalOracle() ir.RemovalOracle {
	if self.Removal != nil {
		return self.Removal
	} else {
		return ir.EffectRemoval{Effects: self.EffectOracle()}
	}
}

func (self *Options) EffectOracle() ir.EffectOracle {
	if self.Effects != nil {
		return self.Effects
	} else {
		return ir.Traits
	}
}

func (self *Options) BranchOracle() ir.BranchOracle {
	if self.Branches != nil {
		return self.Branches
	} else {
		return ir.Traits
	}
}

func GetDefaultOptions() Options {
	return Options {
		MaxIterations: MaxIterations,
		MergeBlocks:   MergeBlocks,
		DebugTrace:    DebugTrace,
	}
}
