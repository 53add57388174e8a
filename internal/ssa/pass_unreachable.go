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

// UnreachableElim erases the blocks that can not be reached from the entry
// block of their region.
type UnreachableElim struct{}

func (UnreachableElim) Apply(rw *ir.Rewriter, regions []*ir.Region, _ *opts.Options) bool {
    return EraseUnreachableBlocks(rw, regions)
}

// EraseUnreachableBlocks erases unreachable blocks in regions and every
// region nested in a surviving block.
func EraseUnreachableBlocks(rw *ir.Rewriter, regions []*ir.Region) bool {
    ret := false
    wl := regionstack(regions)

    /* process every region */
    for !wl.Empty() {
        r := wl.Pop().(*ir.Region)

        /* nothing to do for empty regions */
        if r.Empty() {
            continue
        }

        /* single-block regions have no unreachable blocks, but their nested regions might */
        if r.HasOneBlock() {
            for _, nr := range nestedregions(r.Entry()) {
                wl.Push(nr)
            }
            continue
        }

        /* find all the reachable blocks */
        live := Reachable(r)

        /* erase the others, enqueue the nested regions of the survivors */
        for _, bb := range r.Blocks() {
            if _, ok := live[bb]; ok {
                for _, nr := range nestedregions(bb) {
                    wl.Push(nr)
                }
            } else {
                ret = true
                bb.DropAllDefinedValueUses()
                eraseBlock(rw, bb)
            }
        }
    }

    /* check if anything was erased */
    return ret
}
