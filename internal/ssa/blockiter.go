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
    `github.com/oleiade/lane`

    `github.com/cloudwego/regionopt/ir`
)

// BlockIter walks the blocks reachable from an entry block in post order.
type BlockIter struct {
    b *ir.Block
    s *lane.Stack
    v map[*ir.Block]struct{}
}

func newBlockIter(entry *ir.Block) *BlockIter {
    return &BlockIter {
        s: stacknew(entry),
        v: map[*ir.Block]struct{}{ entry: {} },
    }
}

func (self *BlockIter) Next() bool {
    var tail bool
    var this *ir.Block

    /* scan until the stack is empty */
    for !self.s.Empty() {
        tail = true
        this = self.s.Head().(*ir.Block)

        /* add the first unvisited successor */
        for _, p := range this.Successors() {
            if _, ok := self.v[p]; p != nil && !ok {
                tail = false
                self.v[p] = struct{}{}
                self.s.Push(p)
                break
            }
        }

        /* all the successors are visited, pop the current node */
        if tail {
            self.b = self.s.Pop().(*ir.Block)
            return true
        }
    }

    /* clear the block pointer to indicate no more blocks */
    self.b = nil
    return false
}

func (self *BlockIter) Block() *ir.Block {
    return self.b
}

func (self *BlockIter) ForEach(action func(bb *ir.Block)) {
    for self.Next() {
        action(self.b)
    }
}

// PostOrder returns the blocks of r reachable from its entry, in post order.
func PostOrder(r *ir.Region) (ret []*ir.Block) {
    if !r.Empty() {
        newBlockIter(r.Entry()).ForEach(func(bb *ir.Block) { ret = append(ret, bb) })
    }
    return
}

// Reachable returns the set of blocks of r reachable from its entry.
func Reachable(r *ir.Region) map[*ir.Block]struct{} {
    ret := make(map[*ir.Block]struct{}, r.NumBlocks())
    for _, bb := range PostOrder(r) {
        ret[bb] = struct{}{}
    }
    return ret
}

// blockorder returns every block of r: the reachable ones in post order,
// followed by the unreachable ones in region order.
func blockorder(r *ir.Region) []*ir.Block {
    ret := PostOrder(r)
    if len(ret) == r.NumBlocks() {
        return ret
    }

    /* mark the reachable blocks */
    vis := make(map[*ir.Block]struct{}, len(ret))
    for _, bb := range ret {
        vis[bb] = struct{}{}
    }

    /* append the rest */
    for _, bb := range r.Blocks() {
        if _, ok := vis[bb]; !ok {
            ret = append(ret, bb)
        }
    }
    return ret
}
