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

// _LiveMap records the instructions and block arguments proven live. Facts
// only ever move from dead to live.
type _LiveMap struct {
    args    map[*ir.Value]struct{}
    instrs  map[*ir.Instr]struct{}
    changed bool
}

func newLiveMap() *_LiveMap {
    return &_LiveMap {
        args   : make(map[*ir.Value]struct{}),
        instrs : make(map[*ir.Instr]struct{}),
    }
}

func (self *_LiveMap) isLive(ins *ir.Instr) bool {
    _, ok := self.instrs[ins]
    return ok
}

// isValueLive tracks results through their defining instruction.
func (self *_LiveMap) isValueLive(v *ir.Value) bool {
    if ins := v.Def(); ins != nil {
        return self.isLive(ins)
    } else {
        _, ok := self.args[v]
        return ok
    }
}

func (self *_LiveMap) markLive(ins *ir.Instr) {
    if _, ok := self.instrs[ins]; !ok {
        self.changed = true
        self.instrs[ins] = struct{}{}
    }
}

func (self *_LiveMap) markValueLive(v *ir.Value) {
    if ins := v.Def(); ins != nil {
        self.markLive(ins)
    } else if _, ok := self.args[v]; !ok {
        self.changed = true
        self.args[v] = struct{}{}
    }
}

// DCE removes dead instructions, dead forwarded operands and dead block
// arguments, using a fixed-point liveness analysis.
type DCE struct{}

func (DCE) Apply(rw *ir.Rewriter, regions []*ir.Region, opts *opts.Options) bool {
    return RunRegionDCE(rw, regions, opts.RemovalOracle(), opts.BranchOracle())
}

type _Liveness struct {
    lm  *_LiveMap
    rm  ir.RemovalOracle
    br  ir.BranchOracle
    bbs map[*ir.Region][]*ir.Block
}

// RunRegionDCE computes liveness over regions until it stabilizes, then
// deletes everything that was not proven live.
func RunRegionDCE(rw *ir.Rewriter, regions []*ir.Region, rm ir.RemovalOracle, br ir.BranchOracle) bool {
    lv := &_Liveness {
        lm  : newLiveMap(),
        rm  : rm,
        br  : br,
        bbs : make(map[*ir.Region][]*ir.Block),
    }

    /* Phase 1: propagate liveness until nothing changes */
    for lv.lm.changed = true; lv.lm.changed; {
        lv.lm.changed = false
        for _, r := range regions {
            lv.region(r)
        }
    }

    /* Phase 2: delete everything not proven live */
    return lv.delete(rw, regions)
}

func (self *_Liveness) blocks(r *ir.Region) []*ir.Block {
    if bbs, ok := self.bbs[r]; ok {
        return bbs
    } else {
        bbs = blockorder(r)
        self.bbs[r] = bbs
        return bbs
    }
}

// isKnownDeadUse reports whether a forwarded operand of a branch targets a
// block argument that is not live. Such a use does not keep its value alive.
func (self *_Liveness) isKnownDeadUse(u *ir.Operand) bool {
    if owner := u.Owner(); !owner.IsTerminator() || !self.br.IsBranch(owner) {
        return false
    } else if arg, ok := forwarded(u); !ok {
        return false
    } else {
        return !self.lm.isValueLive(arg)
    }
}

func (self *_Liveness) value(v *ir.Value) {
    for _, u := range v.Uses() {
        if !self.isKnownDeadUse(u) && self.lm.isLive(u.Owner()) {
            self.lm.markValueLive(v)
            return
        }
    }
}

func (self *_Liveness) terminator(ins *ir.Instr) {
    self.lm.markLive(ins)

    /* forwarded operands of opaque terminators can not be pruned */
    if !self.br.IsBranch(ins) {
        for _, bb := range ins.SuccessorBlocks() {
            for _, v := range bb.Arguments() {
                self.lm.markValueLive(v)
            }
        }
    }
}

func (self *_Liveness) instr(ins *ir.Instr) {
    for _, r := range ins.Regions() {
        self.region(r)
    }

    /* terminators are always live */
    if ins.IsTerminator() {
        self.terminator(ins)
        return
    }

    /* don't reprocess live instructions */
    if self.lm.isLive(ins) {
        return
    }

    /* instructions with effects are intrinsically live */
    if !self.rm.IsTriviallyRemovable(ins) {
        self.lm.markLive(ins)
        return
    }

    /* otherwise check the results */
    for _, v := range ins.Results() {
        self.value(v)
    }
}

func (self *_Liveness) region(r *ir.Region) {
    for _, bb := range self.blocks(r) {
        ins := bb.Instrs()

        /* instructions in reverse, arguments afterwards */
        for i := len(ins) - 1; i >= 0; i-- {
            self.instr(ins[i])
        }

        /* entry block arguments are never removed */
        if bb.IsEntry() {
            continue
        }

        /* check every argument */
        for _, v := range bb.Arguments() {
            if !self.lm.isValueLive(v) {
                self.value(v)
            }
        }
    }
}

func (self *_Liveness) eraseDeadForwarded(term *ir.Instr) {
    if term == nil || !self.br.IsBranch(term) {
        return
    }

    /* edges and positions in descending order */
    for i := term.NumSuccessors() - 1; i >= 0; i-- {
        s := term.Successor(i)
        for j := s.NumOperands() - 1; j >= 0; j-- {
            if !self.lm.isValueLive(s.Target().Argument(j)) {
                s.Erase(j)
            }
        }
    }
}

func (self *_Liveness) delete(rw *ir.Rewriter, regions []*ir.Region) bool {
    ret := false
    for _, r := range regions {
        if r.Empty() {
            continue
        }

        /* erase dead instructions, users before definitions */
        for _, bb := range self.blocks(r) {
            if !r.HasOneBlock() {
                self.eraseDeadForwarded(bb.Terminator())
            }

            /* graph regions may have cyclic uses, drop them before erasing */
            ins := bb.Instrs()
            for i := len(ins) - 1; i >= 0; i-- {
                if !self.lm.isLive(ins[i]) {
                    ret = true
                    ins[i].DropAllUses()
                    eraseOp(rw, ins[i])
                } else if self.delete(rw, ins[i].Regions()) {
                    ret = true
                }
            }
        }

        /* erase dead arguments of every block but the entry */
        for _, bb := range r.Blocks()[1:] {
            for i := bb.NumArguments() - 1; i >= 0; i-- {
                if !self.lm.isValueLive(bb.Argument(i)) {
                    ret = true
                    eraseArgument(rw, bb, i)
                }
            }
        }
    }
    return ret
}
