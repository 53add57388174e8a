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

// ArgElim drops block arguments that receive the same value along every
// incoming edge, using that value directly instead.
type ArgElim struct{}

func (ArgElim) Apply(rw *ir.Rewriter, regions []*ir.Region, opts *opts.Options) bool {
    return DropRedundantArguments(rw, regions, opts.BranchOracle())
}

// commonArgument returns the value forwarded to argument i of bb by every
// predecessor, or nil if they disagree or can not be edited.
func commonArgument(bb *ir.Block, i int, br ir.BranchOracle) *ir.Value {
    var ret *ir.Value
    for _, s := range bb.Predecessors() {
        if !br.IsBranch(s.Owner()) {
            return nil
        } else if v := s.Forwarded()[i]; ret == nil {
            ret = v
        } else if v != ret {
            return nil
        }
    }
    return ret
}

func dropBlockArguments(rw *ir.Rewriter, bb *ir.Block, br ir.BranchOracle) bool {
    var drop []int
    for i, arg := range bb.Arguments() {
        if v := commonArgument(bb, i, br); v != nil && v != arg {
            drop = append(drop, i)
            rw.ReplaceAllUsesWith(arg, v)
        }
    }

    /* remove the arguments in descending order */
    for i := len(drop) - 1; i >= 0; i-- {
        for _, s := range bb.Predecessors() {
            rw.EraseForwarded(s, drop[i])
        }
        eraseArgument(rw, bb, drop[i])
    }
    return len(drop) != 0
}

// DropRedundantArguments removes redundant arguments of every block in
// regions and in every region nested in them.
func DropRedundantArguments(rw *ir.Rewriter, regions []*ir.Region, br ir.BranchOracle) bool {
    ret := false
    wl := regionstack(regions)

    /* process every region */
    for !wl.Empty() {
        r := wl.Pop().(*ir.Region)
        for _, bb := range r.Blocks() {
            if dropBlockArguments(rw, bb, br) {
                ret = true
            }
            for _, nr := range nestedregions(bb) {
                wl.Push(nr)
            }
        }
    }
    return ret
}
