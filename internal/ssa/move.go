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
    `github.com/cloudwego/regionopt/ir`
)

const (
    _ReasonDifferentBlock = "unsupported case where operation and insertion point are not in the same basic block"
    _ReasonNotDominating  = "insertion point does not dominate op"
    _ReasonInSlice        = "cannot move dependencies before operation in backward slice of op"
    _ReasonCyclic         = "cannot order the dependencies of op topologically"
    _ReasonBlockArgument  = "unsupported case of moving block argument before insertion point"
    _ReasonValueBlock     = "unsupported case of moving definition of value before an insertion point in a different basic block"
)

func contains(slice []*ir.Instr, ins *ir.Instr) bool {
    for _, p := range slice {
        if p == ins {
            return true
        }
    }
    return false
}

// positions keys the instructions of slice by their position in bb, the
// ones living elsewhere come last, in slice order.
func positions(bb *ir.Block, slice []*ir.Instr) func(*ir.Instr) int {
    pos := make(map[*ir.Instr]int, len(slice))
    for i, ins := range slice {
        if ins.Block() == bb {
            pos[ins] = bb.IndexOf(ins)
        } else {
            pos[ins] = bb.NumInstrs() + i
        }
    }
    return func(ins *ir.Instr) int {
        return pos[ins]
    }
}

// moveSlice orders slice topologically and moves it right before ip. Nothing
// is moved if the order can not be established.
func moveSlice(rw *ir.Rewriter, slice []*ir.Instr, ip *ir.Instr, op *ir.Instr) error {
    if contains(slice, ip) {
        return reject(rw, op, _ReasonInSlice)
    }

    /* sort the slice */
    ret, ok := sortTopologically(slice, positions(ip.Block(), slice))
    if !ok {
        return reject(rw, op, _ReasonCyclic)
    }

    /* move everything before the insertion point */
    for _, ins := range ret {
        moveOpBefore(rw, ins, ip)
    }
    return nil
}

// MoveOperationDependencies moves the definitions op transitively depends on
// right before ip, so that ip could be moved before op. Both must live in the
// same block and ip must properly dominate op. On failure nothing is moved.
func MoveOperationDependencies(rw *ir.Rewriter, op *ir.Instr, ip *ir.Instr, dom ir.Dominance) error {
    if dom == nil {
        dom = NewDominance()
    }

    /* check the preconditions */
    if op.Block() != ip.Block() {
        return reject(rw, op, _ReasonDifferentBlock)
    }
    if !dom.ProperlyDominates(ip, op) {
        return reject(rw, op, _ReasonNotDominating)
    }

    /* only the definitions that do not already dominate ip need moving */
    slice := backwardSlice(op, false, func(p *ir.Instr) bool {
        return !dom.ProperlyDominates(p, ip)
    }, nil, make(map[*ir.Instr]struct{}))

    /* move them before the insertion point */
    return moveSlice(rw, slice, ip, op)
}

// MoveValueDefinitions moves the definitions of values, and whatever they
// transitively depend on, right before ip. On failure nothing is moved.
func MoveValueDefinitions(rw *ir.Rewriter, values []*ir.Value, ip *ir.Instr, dom ir.Dominance) error {
    var defs []*ir.Instr
    if dom == nil {
        dom = NewDominance()
    }

    /* skip the values that are already available */
    for _, v := range values {
        if dom.ValueProperlyDominates(v, ip) {
            continue
        }
        if v.IsArgument() {
            return reject(rw, ip, _ReasonBlockArgument)
        }
        if v.Def().Block() != ip.Block() {
            return reject(rw, ip, _ReasonValueBlock)
        }
        defs = append(defs, v.Def())
    }

    /* the inclusive slice of every remaining definition */
    var slice []*ir.Instr
    seen := make(map[*ir.Instr]struct{})
    filter := func(p *ir.Instr) bool { return !dom.ProperlyDominates(p, ip) }

    /* collect them in order */
    for _, def := range defs {
        slice = backwardSlice(def, true, filter, slice, seen)
    }

    /* move them before the insertion point */
    return moveSlice(rw, slice, ip, ip)
}
