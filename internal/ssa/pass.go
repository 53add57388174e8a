/*
 * Copyright 2022 ByteDance Inc.
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


package ssa

import (
    `github.com/cloudwego/regionopt/internal/opts`
    `github.com/cloudwego/regionopt/ir`
)

// Pass is a structural transformation over a list of regions. It reports
// whether anything changed.
type Pass interface {
    Apply(rw *ir.Rewriter, regions []*ir.Region, opts *opts.Options) bool
}

type _PassDescriptor struct {
    pass  Pass
    desc  string
    merge bool
}

var _passes = [...]_PassDescriptor {
    { desc: "Unreachable Block Elimination"  , pass: new(UnreachableElim) },
    { desc: "Dead Code Elimination"          , pass: new(DCE) },
    { desc: "Identical Block Merging"        , pass: new(BlockMerge) , merge: true },
    { desc: "Redundant Argument Elimination" , pass: new(ArgElim)    , merge: true },
}

// Simplify runs every pass once over regions, in order.
func Simplify(rw *ir.Rewriter, regions []*ir.Region, opts *opts.Options) bool {
    ret := false
    for _, p := range _passes {
        if !p.merge || opts.MergeBlocks {
            ok := p.pass.Apply(rw, regions, opts)
            ret = ret || ok

            /* trace the pass if needed */
            if opts.DebugTrace {
                trace(p.desc, ok)
            }
        }
    }
    return ret
}

// SimplifyToFixedPoint repeats Simplify until nothing changes or the
// iteration limit is hit.
func SimplifyToFixedPoint(rw *ir.Rewriter, regions []*ir.Region, opts *opts.Options) bool {
    ret := false
    for n := 0; opts.CanIterate(n); n++ {
        if !Simplify(rw, regions, opts) {
            break
        }
        ret = true
    }
    return ret
}

func trace(desc string, changed bool) {
    if changed {
        println("regionopt: [pass]", desc + ": changed")
    } else {
        println("regionopt: [pass]", desc + ": unchanged")
    }
}
