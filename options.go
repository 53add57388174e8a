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


package regionopt

import (
	"fmt"

	"github.com/cloudwego/regionopt/internal/opts"
	"github.com/cloudwego/regionopt/ir"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithMergeBlocks enables or disables identical-block merging and redundant
// argument elimination in SimplifyRegions.
//
// The default value of this option is "true", it can also be configured with
// the `REGIONOPT_MERGE_BLOCKS` environment variable.
func WithMergeBlocks(v bool) Option {
	return func(o *opts.Options) { o.MergeBlocks = v }
}

// WithMaxIterations sets the maximum number of rounds SimplifyToFixedPoint
// performs before giving up.
//
// Set this option to "0" disables this limit.
//
// The default value of this option is "16".
func WithMaxIterations(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("regionopt: invalid iteration limit: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxIterations = n }
	}
}

// WithTrace prints one line per pass to stderr while simplifying.
func WithTrace(v bool) Option {
	return func(o *opts.Options) { o.DebugTrace = v }
}

// WithEffects overrides the side-effect classification of instructions,
// which by default is read from the ir.Pure trait.
func WithEffects(eff ir.EffectOracle) Option {
	if eff == nil {
		panic("regionopt: nil effect oracle")
	} else {
		return func(o *opts.Options) { o.Effects = eff }
	}
}

// WithRemoval overrides the decision whether an unused instruction may be
// erased. By default it is derived from the effect oracle.
func WithRemoval(rm ir.RemovalOracle) Option {
	if rm == nil {
		panic("regionopt: nil removal oracle")
	} else {
		return func(o *opts.Options) { o.Removal = rm }
	}
}

// WithBranches overrides which terminators have editable forwarded
// operands, which by default is read from the ir.Branch trait.
func WithBranches(br ir.BranchOracle) Option {
	if br == nil {
		panic("regionopt: nil branch oracle")
	} else {
		return func(o *opts.Options) { o.Branches = br }
	}
}

// WithListener installs a listener on the rewriter created when nil is
// passed as the rewriter.
func WithListener(l ir.Listener) Option {
	return func(o *opts.Options) { o.Listener = l }
}

// SetMaxIterations sets the default iteration limit from now on.
//
// Returns the old opts.MaxIterations value.
func SetMaxIterations(n int) int {
	n, opts.MaxIterations = opts.MaxIterations, n
	return n
}

func buildOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return o
}
