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
    `strconv`
    `strings`

    `github.com/bytedance/gopkg/util/xxhash3`

    `github.com/cloudwego/regionopt/ir`
)

// _BlockEquivalence holds what is needed to compare a block against others:
// a structural hash and the order index of every value defined in the block.
type _BlockEquivalence struct {
    block *ir.Block
    hash  uint64
    order map[*ir.Instr]int
}

func newBlockEquivalence(bb *ir.Block) *_BlockEquivalence {
    ret := &_BlockEquivalence {
        block : bb,
        order : make(map[*ir.Instr]int),
    }

    /* results are numbered after the arguments */
    idx := bb.NumArguments()
    for _, ins := range bb.Instrs() {
        if n := ins.NumResults(); n != 0 {
            ret.order[ins] = idx
            idx += n
        }
        ret.hash = hashcombine(ret.hash, hashinstr(ins))
    }
    return ret
}

// orderOf returns the position of v among the values defined in the block.
func (self *_BlockEquivalence) orderOf(v *ir.Value) int {
    if v.IsArgument() {
        return v.Index()
    } else if idx, ok := self.order[v.Def()]; !ok {
        panic("blockmerge: value is not defined in this block")
    } else {
        return idx + v.Index()
    }
}

func hashcombine(h uint64, v uint64) uint64 {
    return h ^ (v + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2))
}

// hashinstr hashes everything that identifies an instruction except the
// identity of its operands and its location.
func hashinstr(ins *ir.Instr) uint64 {
    return xxhash3.HashString(fingerprint(ins))
}

func fingerprint(ins *ir.Instr) string {
    var sb strings.Builder
    sb.WriteString(ins.Op)
    sb.WriteByte('|')
    sb.WriteString(strconv.FormatUint(uint64(ins.Traits), 16))

    /* attributes, in order */
    for _, a := range ins.Attrs {
        sb.WriteByte('|')
        sb.WriteString(a.Name)
        sb.WriteByte('=')
        sb.WriteString(a.Value)
    }

    /* operand and result types */
    sb.WriteString("|(")
    for _, v := range ins.OperandValues() {
        sb.WriteString(typename(v))
        sb.WriteByte(',')
    }
    sb.WriteString(")->(")
    for _, t := range ins.ResultTypes() {
        sb.WriteString(t.String())
        sb.WriteByte(',')
    }

    /* shape of regions and edges */
    sb.WriteString(")|")
    sb.WriteString(strconv.Itoa(ins.NumRegions()))
    for _, s := range ins.Successors() {
        sb.WriteByte('|')
        sb.WriteString(strconv.Itoa(s.NumOperands()))
    }
    return sb.String()
}

func typename(v *ir.Value) string {
    if v == nil {
        return "<nil>"
    } else {
        return v.Type().String()
    }
}

// isEquivalentInstr compares two instructions ignoring the identity of their
// operands and their locations.
func isEquivalentInstr(a *ir.Instr, b *ir.Instr) bool {
    if a.Op != b.Op || a.Traits != b.Traits || a.NumRegions() != b.NumRegions() {
        return false
    }

    /* attributes */
    if len(a.Attrs) != len(b.Attrs) {
        return false
    }
    for i, v := range a.Attrs {
        if v != b.Attrs[i] {
            return false
        }
    }

    /* results */
    if !typeseq(a.ResultTypes(), b.ResultTypes()) {
        return false
    }

    /* successor edges */
    if a.NumSuccessors() != b.NumSuccessors() {
        return false
    }
    for i, s := range a.Successors() {
        if p := b.Successor(i); s.Target() != p.Target() || s.NumOperands() != p.NumOperands() {
            return false
        }
    }

    /* operand types */
    x := a.OperandValues()
    y := b.OperandValues()

    /* compare one by one */
    if len(x) != len(y) {
        return false
    }
    for i, v := range x {
        if v == nil || y[i] == nil || v.Type() != y[i].Type() {
            return false
        }
    }
    return true
}

func typeseq(a []ir.Type, b []ir.Type) bool {
    if len(a) != len(b) {
        return false
    }
    for i, t := range a {
        if t != b[i] {
            return false
        }
    }
    return true
}
