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
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `gonum.org/v1/gonum/graph/flow`
    `gonum.org/v1/gonum/graph/simple`

    `github.com/cloudwego/regionopt/internal/irtest`
    `github.com/cloudwego/regionopt/ir`
)

// randomCFG builds a region of n blocks with random edges, together with
// the same graph in gonum form.
func randomCFG(f *gofakeit.Faker, n int) (*ir.Region, *simple.DirectedGraph) {
    r, entry := irtest.Func(irtest.I1)
    g := simple.NewDirectedGraph()
    g.AddNode(simple.Node(0))

    /* create the blocks first */
    for i := 1; i < n; i++ {
        irtest.Block(r)
        g.AddNode(simple.Node(i))
    }

    /* then the terminators */
    cond := entry.Argument(0)
    for i, bb := range r.Blocks() {
        b := ir.NewBuilder(bb)
        x := r.Block(f.Number(1, n - 1))
        y := r.Block(f.Number(1, n - 1))

        /* pick a terminator */
        switch f.Number(0, 2) {
            case 0  : irtest.Return(b)
            case 1  : irtest.Br(b, x)
            default : irtest.CondBr(b, cond, x, nil, y, nil)
        }

        /* mirror the edges, gonum does not allow self loops */
        for _, p := range bb.Successors() {
            if j := r.IndexOf(p); j != i {
                g.SetEdge(g.NewEdge(g.Node(int64(i)), g.Node(int64(j))))
            }
        }
    }
    return r, g
}

func TestDominator_RandomCFG(t *testing.T) {
    f := gofakeit.New(0xd0)
    for round := 0; round < 200; round++ {
        r, g := randomCFG(f, f.Number(2, 16))
        verify(t, r)

        /* compute both trees */
        dt := BuildDominatorTree(r.Entry())
        ref := flow.Dominators(g.Node(0), g)

        /* compare the immediate dominators */
        for i, bb := range r.Blocks()[1:] {
            id := int64(i + 1)
            idom := ref.DominatorOf(id)
            if !assert.Equal(t, idom != nil, dt.IsReachable(bb), "block %d in\n%s", id, r) {
                continue
            }
            if idom != nil {
                assert.Equal(t, idom.ID(), int64(r.IndexOf(dt.DominatedBy[bb])), "block %d in\n%s", id, r)
            }
        }

        /* reachability agrees with the block iterator */
        live := Reachable(r)
        for _, bb := range r.Blocks() {
            _, ok := live[bb]
            require.Equal(t, ok, dt.IsReachable(bb))
        }
    }
}

func TestDominator_Tree(t *testing.T) {
    r, entry := irtest.Func(irtest.I1)
    bb1 := irtest.Block(r)
    bb2 := irtest.Block(r)
    bb3 := irtest.Block(r)
    dead := irtest.Block(r)
    cond := entry.Argument(0)
    irtest.CondBr(ir.NewBuilder(entry), cond, bb1, nil, bb2, nil)
    irtest.Br(ir.NewBuilder(bb1), bb3)
    irtest.Br(ir.NewBuilder(bb2), bb3)
    irtest.Return(ir.NewBuilder(bb3))
    irtest.Br(ir.NewBuilder(dead), bb3)

    dt := BuildDominatorTree(entry)
    assert.Equal(t, entry, dt.DominatedBy[bb3])
    assert.ElementsMatch(t, []*ir.Block{bb1, bb2, bb3}, dt.DominatorOf[entry])
    assert.True(t, dt.Dominates(entry, bb3))
    assert.False(t, dt.Dominates(bb1, bb3))
    assert.True(t, dt.Dominates(bb3, bb3))

    /* unreachable blocks are dominated by everything, and dominate nothing */
    assert.False(t, dt.IsReachable(dead))
    assert.True(t, dt.Dominates(bb1, dead))
    assert.False(t, dt.Dominates(dead, bb3))
}

func TestDominance_Instructions(t *testing.T) {
    r, entry := irtest.Func(irtest.I64)
    next := irtest.Block(r)
    x := entry.Argument(0)
    b := ir.NewBuilder(entry)
    a := irtest.Add(b, x, x)
    s, body := irtest.Scope(b)
    m := irtest.Mul(b, a, a)
    irtest.Br(b, next)
    irtest.Return(ir.NewBuilder(next))

    /* a nested instruction */
    nb := ir.NewBuilder(irtest.Block(body))
    n := irtest.Sub(nb, a, x)
    irtest.Yield(nb)

    /* a graph region */
    gb := ir.NewBuilder(next)
    gb.SetInsertionPoint(next.Terminator())
    _, gbody := irtest.Graph(gb)
    gg := ir.NewBuilder(gbody)
    g1 := irtest.Add(gg, x, x)
    g2 := irtest.Add(gg, g1, x)
    irtest.Yield(gg)
    verify(t, r)

    dom := NewDominance()
    assert.True(t, dom.Dominates(entry, next))
    assert.False(t, dom.Dominates(next, entry))
    assert.True(t, dom.Dominates(entry, body.Entry()))

    /* in-block order */
    assert.True(t, dom.ProperlyDominates(a.Def(), m.Def()))
    assert.False(t, dom.ProperlyDominates(m.Def(), a.Def()))
    assert.False(t, dom.ProperlyDominates(a.Def(), a.Def()))

    /* nesting */
    assert.True(t, dom.ProperlyDominates(a.Def(), n.Def()))
    assert.True(t, dom.ProperlyDominates(s, n.Def()))
    assert.False(t, dom.ProperlyDominates(m.Def(), n.Def()))
    assert.False(t, dom.ProperlyDominates(n.Def(), a.Def()))
    assert.True(t, dom.ProperlyDominates(a.Def(), next.Terminator()))

    /* graph regions do not order their instructions */
    assert.True(t, dom.ProperlyDominates(g2.Def(), g1.Def()))
    assert.True(t, dom.ProperlyDominates(g1.Def(), g2.Def()))
    assert.False(t, dom.ProperlyDominates(g1.Def(), g1.Def()))

    /* values */
    assert.True(t, dom.ValueProperlyDominates(x, a.Def()))
    assert.True(t, dom.ValueProperlyDominates(x, n.Def()))
    assert.True(t, dom.ValueProperlyDominates(a, n.Def()))
    assert.False(t, dom.ValueProperlyDominates(a, a.Def()))
    assert.False(t, dom.ValueProperlyDominates(m, n.Def()))
}
