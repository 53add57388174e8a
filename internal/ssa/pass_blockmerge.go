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
    `sort`
    `strconv`
    `sync/atomic`

    `github.com/bytedance/gopkg/util/xxhash3`

    `github.com/cloudwego/regionopt/internal/opts`
    `github.com/cloudwego/regionopt/ir`
)

// BlockMerge merges structurally identical blocks that share the same
// successors, turning the operands in which they differ into new arguments
// of the surviving block.
type BlockMerge struct{}

func (BlockMerge) Apply(rw *ir.Rewriter, regions []*ir.Region, opts *opts.Options) bool {
    return MergeIdenticalBlocks(rw, regions, opts.BranchOracle())
}

// _OperandSlot addresses an operand as (instruction index, operand number).
type _OperandSlot struct {
    ins int
    opr int
}

type _MergeCluster struct {
    leader  *_BlockEquivalence
    members []*ir.Block
    slots   map[_OperandSlot]struct{}
}

func newMergeCluster(leader *_BlockEquivalence) *_MergeCluster {
    return &_MergeCluster {
        leader : leader,
        slots  : make(map[_OperandSlot]struct{}),
    }
}

// isValidSuccessorArg reports whether v may be forwarded to bb by its
// predecessors, which is not the case for a value produced by the terminator
// of one of those predecessors.
func isValidSuccessorArg(bb *ir.Block, v *ir.Value) bool {
    if def := v.Def(); def == nil || def != def.Block().Terminator() {
        return true
    } else {
        return !bb.HasPredecessor(def.Block())
    }
}

func (self *_MergeCluster) add(data *_BlockEquivalence) bool {
    lb := self.leader.block
    mb := data.block

    /* quick checks */
    if self.leader.hash != data.hash || !typeseq(lb.ArgumentTypes(), mb.ArgumentTypes()) {
        return false
    }

    /* the blocks must have the same size */
    lhs := lb.Instrs()
    rhs := mb.Instrs()
    if len(lhs) != len(rhs) {
        return false
    }

    /* walk the two blocks in lockstep */
    var slots []_OperandSlot
    for i, x := range lhs {
        y := rhs[i]
        if !isEquivalentInstr(x, y) {
            return false
        }

        /* compare the operands */
        xv := x.OperandValues()
        yv := y.OperandValues()
        for j, lv := range xv {
            rv := yv[j]
            if lv == rv {
                continue
            }

            /* the operands must be both external or both internal */
            lin := lv.ParentBlock() == lb
            rin := rv.ParentBlock() == mb
            if lin != rin {
                return false
            }

            /* external operands become new arguments */
            if !lin {
                if !isValidSuccessorArg(lb, lv) || !isValidSuccessorArg(mb, rv) {
                    return false
                }
                slots = append(slots, _OperandSlot{ins: i, opr: j})
                continue
            }

            /* internal operands must refer to the same logical value */
            if self.leader.orderOf(lv) != data.orderOf(rv) {
                return false
            }
        }

        /* the merged instruction must not escape its block */
        if x.IsUsedOutsideOf(lb) || y.IsUsedOutsideOf(mb) {
            return false
        }
    }

    /* the block can be merged */
    for _, s := range slots {
        self.slots[s] = struct{}{}
    }
    self.members = append(self.members, mb)
    return true
}

func (self *_MergeCluster) sortedSlots() []_OperandSlot {
    ret := make([]_OperandSlot, 0, len(self.slots))
    for s := range self.slots {
        ret = append(ret, s)
    }
    sort.Slice(ret, func(i int, j int) bool {
        if ret[i].ins != ret[j].ins {
            return ret[i].ins < ret[j].ins
        } else {
            return ret[i].opr < ret[j].opr
        }
    })
    return ret
}

func canUpdatePredecessors(bb *ir.Block, br ir.BranchOracle) bool {
    for _, s := range bb.Predecessors() {
        if !br.IsBranch(s.Owner()) {
            return false
        }
    }
    return true
}

// pruneRedundantArguments removes the columns of args that duplicate an
// earlier column in every list, replacing the matching trailing arguments of
// bb (the ones after the first base arguments).
func pruneRedundantArguments(rw *ir.Rewriter, args [][]*ir.Value, base int, bb *ir.Block) [][]*ir.Value {
    if len(args) == 0 {
        return args
    }

    /* first appearance of every value in the leader's list */
    nargs := len(args[0])
    first := make(map[*ir.Value]int, nargs)
    for j := nargs - 1; j >= 0; j-- {
        first[args[0][j]] = j
    }

    /* a column is redundant if every list agrees */
    repl := make(map[int]int)
    for j := 0; j < nargs; j++ {
        k := first[args[0][j]]
        if k == j {
            continue
        }
        ok := true
        for _, list := range args[1:] {
            ok = ok && list[k] == list[j]
        }
        if ok {
            repl[j] = k
        }
    }

    /* nothing to prune */
    if len(repl) == 0 {
        return args
    }

    /* build the pruned lists */
    ret := make([][]*ir.Value, len(args))
    for i, list := range args {
        for j, v := range list {
            if _, ok := repl[j]; !ok {
                ret[i] = append(ret[i], v)
            }
        }
    }

    /* replace and erase the redundant arguments, in descending order */
    for j := nargs - 1; j >= 0; j-- {
        if k, ok := repl[j]; ok {
            rw.ReplaceAllUsesWith(bb.Argument(base + j), bb.Argument(base + k))
            eraseArgument(rw, bb, base + j)
        }
    }
    return ret
}

func (self *_MergeCluster) merge(rw *ir.Rewriter, br ir.BranchOracle) bool {
    if len(self.members) == 0 {
        return false
    }

    /* all the blocks in lockstep, leader first */
    lb := self.leader.block
    bbs := append([]*ir.Block{lb}, self.members...)

    /* divergent operands must be forwarded by every predecessor */
    if len(self.slots) != 0 {
        for _, bb := range bbs {
            if !canUpdatePredecessors(bb, br) {
                return false
            }
        }

        /* capture the divergent operands */
        slots := self.sortedSlots()
        base := lb.NumArguments()
        args := make([][]*ir.Value, len(bbs))
        instrs := make([][]*ir.Instr, len(bbs))

        /* snapshot the instructions first */
        for i, bb := range bbs {
            instrs[i] = bb.Instrs()
            args[i] = make([]*ir.Value, len(slots))
        }

        /* the leader gets a new argument for every slot */
        for j, s := range slots {
            for i := range bbs {
                u := instrs[i][s.ins].Operands()[s.opr]
                args[i][j] = u.Get()

                /* update the leader operand */
                if i == 0 {
                    u.Set(lb.AddArgument(u.Get().Type()))
                }
            }
        }

        /* drop duplicated columns */
        args = pruneRedundantArguments(rw, args, base, lb)

        /* forward the captured values along every incoming edge */
        for i, bb := range bbs {
            for _, s := range bb.Predecessors() {
                rw.AppendForwarded(s, args[i]...)
            }
        }
    }

    /* redirect the members to the leader and erase them */
    for _, bb := range self.members {
        rw.ReplaceBlockUsesWith(bb, lb)
        eraseBlock(rw, bb)
        atomic.AddUint64(&MergedBlocks, 1)
    }
    return true
}

type _SuccessorGroup struct {
    succs  []*ir.Block
    blocks []*ir.Block
}

func (self *_SuccessorGroup) matches(succs []*ir.Block) bool {
    if len(self.succs) != len(succs) {
        return false
    }
    for i, p := range succs {
        if self.succs[i] != p {
            return false
        }
    }
    return true
}

// successorHash hashes the positions of succs in their region.
func successorHash(succs []*ir.Block, pos map[*ir.Block]int) uint64 {
    buf := make([]byte, 0, len(succs) * 4)
    for _, p := range succs {
        if i, ok := pos[p]; ok {
            buf = strconv.AppendInt(buf, int64(i), 10)
        } else {
            buf = append(buf, '?')
        }
        buf = append(buf, ',')
    }
    return xxhash3.Hash(buf)
}

func hasNonEmptyRegion(bb *ir.Block) bool {
    for _, ins := range bb.Instrs() {
        if ins.HasNonEmptyRegion() {
            return true
        }
    }
    return false
}

func hasEscapingArgument(bb *ir.Block) bool {
    for _, v := range bb.Arguments() {
        if v.IsUsedOutsideOf(bb) {
            return true
        }
    }
    return false
}

// mergeRegion merges the identical blocks of a single region.
func mergeRegion(rw *ir.Rewriter, r *ir.Region, br ir.BranchOracle) bool {
    if r.NumBlocks() <= 1 {
        return false
    }

    /* block positions */
    pos := make(map[*ir.Block]int, r.NumBlocks())
    for i, bb := range r.Blocks() {
        pos[bb] = i
    }

    /* group the non-entry blocks by their successors, in order of appearance */
    var order []*_SuccessorGroup
    groups := make(map[uint64][]*_SuccessorGroup)
    for _, bb := range r.Blocks()[1:] {
        var sg *_SuccessorGroup
        succs := bb.Successors()
        hash := successorHash(succs, pos)

        /* resolve hash collisions */
        for _, g := range groups[hash] {
            if g.matches(succs) {
                sg = g
                break
            }
        }

        /* first block with these successors */
        if sg == nil {
            sg = &_SuccessorGroup { succs: succs }
            order = append(order, sg)
            groups[hash] = append(groups[hash], sg)
        }

        /* add to the group */
        sg.blocks = append(sg.blocks, bb)
    }

    /* cluster every group */
    ret := false
    for _, sg := range order {
        var clusters []*_MergeCluster
        bbs := sg.blocks

        /* nothing to merge with */
        if len(bbs) == 1 {
            continue
        }

        /* greedily assign the candidates to clusters */
        for _, bb := range bbs {
            if hasNonEmptyRegion(bb) || hasEscapingArgument(bb) {
                continue
            }

            /* find the first cluster accepting this block */
            ok := false
            data := newBlockEquivalence(bb)
            for _, c := range clusters {
                if ok = c.add(data); ok {
                    break
                }
            }

            /* start a new cluster otherwise */
            if !ok {
                clusters = append(clusters, newMergeCluster(data))
            }
        }

        /* merge every cluster */
        for _, c := range clusters {
            if c.merge(rw, br) {
                ret = true
            }
        }
    }
    return ret
}

// MergeIdenticalBlocks merges identical blocks in regions and in every
// region nested in them, until nothing changes.
func MergeIdenticalBlocks(rw *ir.Rewriter, regions []*ir.Region, br ir.BranchOracle) bool {
    ret := false
    wl := regionstack(regions)
    in := make(map[*ir.Region]struct{}, len(regions))

    /* mark the initial regions */
    for _, r := range regions {
        in[r] = struct{}{}
    }

    /* process until the worklist is empty */
    for !wl.Empty() {
        r := wl.Pop().(*ir.Region)
        delete(in, r)

        /* revisit the region if anything changed, parents are left alone
           since blocks holding non-empty regions are never merged */
        if mergeRegion(rw, r, br) {
            ret = true
            in[r] = struct{}{}
            wl.Push(r)
        }

        /* add the nested regions */
        for _, bb := range r.Blocks() {
            for _, nr := range nestedregions(bb) {
                if _, ok := in[nr]; !ok {
                    in[nr] = struct{}{}
                    wl.Push(nr)
                }
            }
        }
    }
    return ret
}
