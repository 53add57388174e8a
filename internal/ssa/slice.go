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

    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/simple`
    `gonum.org/v1/gonum/graph/topo`

    `github.com/cloudwego/regionopt/ir`
)

type _SliceFrame struct {
    ins  *ir.Instr
    deps []*ir.Instr
    next int
}

// dependencies lists the definitions an instruction depends on: the values
// used from above inside its regions, then its own operands. Block arguments
// have no definition and are skipped.
func dependencies(ins *ir.Instr) (ret []*ir.Instr) {
    for _, r := range ins.Regions() {
        for _, u := range usesFromAbove(r) {
            if def := u.Get().Def(); def != nil {
                ret = append(ret, def)
            }
        }
    }
    for _, v := range ins.OperandValues() {
        if v != nil && v.Def() != nil {
            ret = append(ret, v.Def())
        }
    }
    return
}

// usesFromAbove returns the operands nested in r that use a value defined
// outside of r.
func usesFromAbove(r *ir.Region) (ret []*ir.Operand) {
    r.Walk(func(ins *ir.Instr) {
        for _, u := range ins.Operands() {
            if v := u.Get(); v != nil && !r.IsAncestor(v.ParentRegion()) {
                ret = append(ret, u)
            }
        }
    })
    return
}

// backwardSlice computes the transitive definitions of root accepted by
// filter, in post order: every instruction comes after the ones it depends
// on. Instructions rejected by filter are not looked through.
func backwardSlice(root *ir.Instr, inclusive bool, filter func(*ir.Instr) bool, slice []*ir.Instr, seen map[*ir.Instr]struct{}) []*ir.Instr {
    if !filter(root) {
        return slice
    }

    /* instructions on the current path */
    path := map[*ir.Instr]struct{}{ root: {} }
    st := stacknew(&_SliceFrame{ins: root, deps: dependencies(root)})

    /* depth-first, emitting on the way back */
    for !st.Empty() {
        fp := st.Head().(*_SliceFrame)

        /* visit the next dependency */
        if fp.next < len(fp.deps) {
            def := fp.deps[fp.next]
            fp.next++

            /* skip the visited and the filtered */
            if _, ok := seen[def]; ok {
                continue
            }
            if _, ok := path[def]; ok || !filter(def) {
                continue
            }

            /* descend */
            path[def] = struct{}{}
            st.Push(&_SliceFrame{ins: def, deps: dependencies(def)})
            continue
        }

        /* all dependencies done */
        st.Pop()
        delete(path, fp.ins)

        /* the root is only included when asked */
        if fp.ins != root || inclusive {
            if _, ok := seen[fp.ins]; !ok {
                seen[fp.ins] = struct{}{}
                slice = append(slice, fp.ins)
            }
        }
    }
    return slice
}

// sortTopologically orders slice so that every definition precedes its
// users, keeping the relative order given by key where possible. It fails if
// the dependencies are cyclic.
func sortTopologically(slice []*ir.Instr, key func(*ir.Instr) int) ([]*ir.Instr, bool) {
    g := simple.NewDirectedGraph()
    id := make(map[*ir.Instr]int64, len(slice))

    /* add the nodes first */
    for i, ins := range slice {
        id[ins] = int64(i)
        g.AddNode(simple.Node(i))
    }

    /* then a def-use edge for every dependency inside the slice */
    for i, ins := range slice {
        for _, def := range dependencies(ins) {
            if j, ok := id[def]; ok && j != int64(i) {
                g.SetEdge(g.NewEdge(g.Node(j), g.Node(int64(i))))
            }
        }
    }

    /* sort with the key as the tie breaker */
    nodes, err := topo.SortStabilized(g, func(nodes []graph.Node) {
        sort.SliceStable(nodes, func(i int, j int) bool {
            return key(slice[nodes[i].ID()]) < key(slice[nodes[j].ID()])
        })
    })

    /* cyclic dependencies */
    if err != nil {
        return nil, false
    }

    /* map back to instructions */
    ret := make([]*ir.Instr, len(nodes))
    for i, p := range nodes {
        ret[i] = slice[p.ID()]
    }
    return ret, true
}
