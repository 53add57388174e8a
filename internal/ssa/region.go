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

// ReplaceAllUsesInRegionWith replaces the uses of orig nested in r with repl.
func ReplaceAllUsesInRegionWith(rw *ir.Rewriter, orig *ir.Value, repl *ir.Value, r *ir.Region) {
    rw.ReplaceAllUsesInRegionWith(orig, repl, r)
}

// VisitUsedValuesDefinedAbove calls fn on every operand nested in r whose
// value is defined in a proper ancestor of limit, which must be r itself or
// one of its ancestors.
func VisitUsedValuesDefinedAbove(r *ir.Region, limit *ir.Region, fn func(u *ir.Operand)) {
    if !limit.IsAncestor(r) {
        panic("regionutils: the limit must be an ancestor of the region")
    }

    /* proper ancestors of the limit */
    above := make(map[*ir.Region]struct{})
    for p := limit.ParentRegion(); p != nil; p = p.ParentRegion() {
        above[p] = struct{}{}
    }

    /* check every operand */
    r.Walk(func(ins *ir.Instr) {
        for _, u := range ins.Operands() {
            if v := u.Get(); v != nil {
                if _, ok := above[v.ParentRegion()]; ok {
                    fn(u)
                }
            }
        }
    })
}

// GetUsedValuesDefinedAbove returns the values used in regions but defined
// above each of them, without duplicates, in order of first use.
func GetUsedValuesDefinedAbove(regions ...*ir.Region) []*ir.Value {
    var ret []*ir.Value
    seen := make(map[*ir.Value]struct{})

    /* collect from every region */
    for _, r := range regions {
        VisitUsedValuesDefinedAbove(r, r, func(u *ir.Operand) {
            if _, ok := seen[u.Get()]; !ok {
                seen[u.Get()] = struct{}{}
                ret = append(ret, u.Get())
            }
        })
    }
    return ret
}

// MakeRegionIsolatedFromAbove makes r stop referencing values defined above
// it. The definitions accepted by clone are cloned into a new entry block,
// together with what they depend on; everything else is passed in as new
// trailing arguments of the entry block. It returns the values that became
// arguments, in argument order.
func MakeRegionIsolatedFromAbove(rw *ir.Rewriter, r *ir.Region, clone func(*ir.Instr) bool) []*ir.Value {
    var captured []*ir.Value
    var cloned []*ir.Instr

    /* breadth-first over the captured values */
    wl := lane.NewQueue()
    seen := make(map[*ir.Value]struct{})
    done := make(map[*ir.Instr]bool)

    /* start from the values used in the region */
    for _, v := range GetUsedValuesDefinedAbove(r) {
        wl.Enqueue(v)
    }

    /* decide for every value */
    for !wl.Empty() {
        v := wl.Dequeue().(*ir.Value)
        if _, ok := seen[v]; ok {
            continue
        }

        /* block arguments are always captured */
        seen[v] = struct{}{}
        def := v.Def()
        if def == nil {
            captured = append(captured, v)
            continue
        }

        /* other results of an already visited definition */
        if ok, vis := done[def]; vis {
            if !ok {
                captured = append(captured, v)
            }
            continue
        }

        /* definitions that are not cloned are captured */
        if done[def] = clone(def); !done[def] {
            captured = append(captured, v)
            continue
        }

        /* cloned definitions bring their operands along */
        for _, p := range def.OperandValues() {
            if _, ok := seen[p]; !ok && p != nil {
                wl.Enqueue(p)
            }
        }
        cloned = append(cloned, def)
    }

    /* clones must follow their dependencies, discovery goes the other way */
    order := make(map[*ir.Instr]int, len(cloned))
    for i, ins := range cloned {
        order[ins] = len(cloned) - i
    }

    /* sort the definitions */
    cloned, ok := sortTopologically(cloned, func(ins *ir.Instr) int { return order[ins] })
    if !ok {
        panic("regionutils: cyclic dependencies between values defined above")
    }

    /* the new entry takes the old arguments and the captured values */
    entry := r.Entry()
    types := entry.ArgumentTypes()
    for _, v := range captured {
        types = append(types, v.Type())
    }

    /* create the new entry block */
    ip := rw.Builder
    nb := rw.CreateBlock(r, 0, types...)
    mm := ir.NewMapping()

    /* rewire the captured values to the new arguments */
    for i, v := range captured {
        arg := nb.Argument(entry.NumArguments() + i)
        mm.Map(v, arg)
        rw.ReplaceAllUsesInRegionWith(v, arg, r)
    }

    /* clone the definitions and rewire their results */
    rw.SetInsertionPointToEnd(nb)
    for _, ins := range cloned {
        p := rw.Clone(ins, mm)
        for i, v := range ins.Results() {
            rw.ReplaceAllUsesInRegionWith(v, p.Result(i), r)
        }
    }

    /* fold the old entry block into the new one */
    rw.MergeBlocks(entry, nb, nb.Arguments()[:entry.NumArguments()])
    rw.Builder = ip
    return captured
}
