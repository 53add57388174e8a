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


/** This is an implementation of the Lengauer-Tarjan algorithm described in
 *  https://doi.org/10.1145%2F357062.357071
 */

package ssa

import (
    `github.com/cloudwego/regionopt/ir`
)

type _LtNode struct {
    semi     int
    node     *ir.Block
    dom      *_LtNode
    label    *_LtNode
    parent   *_LtNode
    ancestor *_LtNode
    pred     []*_LtNode
    bucket   map[*_LtNode]struct{}
}

type _LengauerTarjan struct {
    nodes  []*_LtNode
    vertex map[*ir.Block]int
}

func newLengauerTarjan() *_LengauerTarjan {
    return &_LengauerTarjan {
        vertex: make(map[*ir.Block]int),
    }
}

func (self *_LengauerTarjan) dfs(bb *ir.Block) {
    i := len(self.nodes)
    self.vertex[bb] = i

    /* create a new node */
    p := &_LtNode {
        semi   : i,
        node   : bb,
        bucket : make(map[*_LtNode]struct{}),
    }

    /* add to node list */
    p.label = p
    self.nodes = append(self.nodes, p)

    /* traverse the successors */
    for _, w := range bb.Successors() {
        if w == nil {
            continue
        }

        /* not visited yet */
        idx, ok := self.vertex[w]
        if !ok {
            self.dfs(w)
            idx = self.vertex[w]
            self.nodes[idx].parent = p
        }

        /* add predecessors */
        q := self.nodes[idx]
        q.pred = append(q.pred, p)
    }
}

func (self *_LengauerTarjan) eval(p *_LtNode) *_LtNode {
    if p.ancestor == nil {
        return p
    } else {
        self.compress(p)
        return p.label
    }
}

func (self *_LengauerTarjan) link(p *_LtNode, q *_LtNode) {
    q.ancestor = p
}

func (self *_LengauerTarjan) compress(p *_LtNode) {
    if p.ancestor.ancestor != nil {
        self.compress(p.ancestor)
        if p.label.semi > p.ancestor.label.semi { p.label = p.ancestor.label }
        p.ancestor = p.ancestor.ancestor
    }
}

// DominatorTree is the dominator tree of the blocks reachable from Root.
type DominatorTree struct {
    Root        *ir.Block
    DominatedBy map[*ir.Block]*ir.Block
    DominatorOf map[*ir.Block][]*ir.Block
}

func minInt(a int, b int) int {
    if a < b {
        return a
    } else {
        return b
    }
}

func BuildDominatorTree(bb *ir.Block) DominatorTree {
    domby := make(map[*ir.Block]*ir.Block)
    domof := make(map[*ir.Block][]*ir.Block)

    /* Step 1: Carry out a depth-first search of the problem graph. Number the vertices
     * from 1 to n as they are reached during the search. Initialize the variables used
     * in succeeding steps. */
    lt := newLengauerTarjan()
    lt.dfs(bb)

    /* perform Step 2 and Step 3 simultaneously */
    for i := len(lt.nodes) - 1; i > 0; i-- {
        p := lt.nodes[i]
        q := (*_LtNode)(nil)

        /* Step 2: Compute the semidominators of all vertices by applying Theorem 4.
         * Carry out the computation vertex by vertex in decreasing order by number. */
        for _, v := range p.pred {
            q = lt.eval(v)
            p.semi = minInt(p.semi, q.semi)
        }

        /* link the ancestor */
        lt.link(p.parent, p)
        lt.nodes[p.semi].bucket[p] = struct{}{}

        /* Step 3: Implicitly define the immediate dominator of each vertex by applying Corollary 1 */
        for v := range p.parent.bucket {
            if q = lt.eval(v); q.semi < v.semi {
                v.dom = q
            } else {
                v.dom = p.parent
            }
        }

        /* clear the bucket */
        for v := range p.parent.bucket {
            delete(p.parent.bucket, v)
        }
    }

    /* Step 4: Explicitly define the immediate dominator of each vertex, carrying out the
     * computation vertex by vertex in increasing order by number. */
    for _, p := range lt.nodes[1:] {
        if p.dom.node != lt.nodes[p.semi].node {
            p.dom = p.dom.dom
        }
    }

    /* map the dominator relations */
    for _, p := range lt.nodes[1:] {
        domby[p.node] = p.dom.node
        domof[p.dom.node] = append(domof[p.dom.node], p.node)
    }

    /* construct the dominator tree */
    return DominatorTree {
        Root        : bb,
        DominatorOf : domof,
        DominatedBy : domby,
    }
}

// IsReachable reports whether bb is reachable from the root.
func (self *DominatorTree) IsReachable(bb *ir.Block) bool {
    _, ok := self.DominatedBy[bb]
    return ok || bb == self.Root
}

// Dominates reports whether a dominates b. Every block dominates an
// unreachable one, an unreachable block dominates nothing else.
func (self *DominatorTree) Dominates(a *ir.Block, b *ir.Block) bool {
    if a == b || !self.IsReachable(b) {
        return true
    } else if !self.IsReachable(a) {
        return false
    }

    /* walk up the tree from b */
    for p := b; p != self.Root; {
        if p = self.DominatedBy[p]; p == a {
            return true
        }
    }
    return false
}

// Dominance answers dominance queries over a region tree, building the
// dominator tree of every CFG region lazily. It must be rebuilt after the
// control flow changes.
type Dominance struct {
    trees map[*ir.Region]*DominatorTree
}

func NewDominance() *Dominance {
    return &Dominance {
        trees: make(map[*ir.Region]*DominatorTree),
    }
}

func (self *Dominance) tree(r *ir.Region) *DominatorTree {
    if dt, ok := self.trees[r]; ok {
        return dt
    } else {
        dt := BuildDominatorTree(r.Entry())
        self.trees[r] = &dt
        return &dt
    }
}

// Dominates reports whether block a dominates block b. A block nested in
// another region is compared through its ancestor in the region of a.
func (self *Dominance) Dominates(a *ir.Block, b *ir.Block) bool {
    if a == b {
        return true
    }

    /* lift b into the region of a */
    r := a.Region()
    if r == nil {
        return false
    } else if b = r.FindAncestorBlock(b); b == nil {
        return false
    } else if a == b || !r.HasSSADominance() {
        return true
    } else {
        return self.tree(r).Dominates(a, b)
    }
}

func (self *Dominance) properlyDominates(a *ir.Instr, b *ir.Instr, enclosing bool) bool {
    ab := a.Block()
    bb := b.Block()

    /* an instruction never properly dominates itself */
    if ab == nil || bb == nil || ab.Region() == nil || a == b {
        return false
    }

    /* lift b into the region of a */
    r := ab.Region()
    if r != bb.Region() {
        if b = r.FindAncestorInstr(b); b == nil {
            return false
        } else if bb = b.Block(); a == b {
            return enclosing
        }
    }

    /* same block, depends on the region kind */
    if ab == bb {
        return !r.HasSSADominance() || a.IsBeforeInBlock(b)
    }

    /* different blocks of the same region */
    return r.HasSSADominance() && ab != bb && self.tree(r).Dominates(ab, bb)
}

// ProperlyDominates reports whether a properly dominates b. An instruction
// properly dominates everything nested inside it.
func (self *Dominance) ProperlyDominates(a *ir.Instr, b *ir.Instr) bool {
    return self.properlyDominates(a, b, true)
}

// ValueProperlyDominates reports whether v is available right before ins.
// Results do not dominate the instructions nested in their definition, block
// arguments dominate their whole block.
func (self *Dominance) ValueProperlyDominates(v *ir.Value, ins *ir.Instr) bool {
    if def := v.Def(); def != nil {
        return self.properlyDominates(def, ins, false)
    } else if bb := ins.Block(); bb == nil || v.Owner() == nil {
        return false
    } else {
        return self.Dominates(v.Owner(), bb)
    }
}
