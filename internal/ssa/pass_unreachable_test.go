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

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/regionopt/internal/irtest`
    `github.com/cloudwego/regionopt/ir`
)

func TestUnreachable_EraseBlocks(t *testing.T) {
    r, entry := irtest.Func(irtest.I64)
    live := irtest.Block(r, irtest.I64)
    dead1 := irtest.Block(r)
    dead2 := irtest.Block(r, irtest.I64)

    /* entry -> live, dead1 <-> dead2 -> live */
    irtest.Br(ir.NewBuilder(entry), live, entry.Argument(0))
    irtest.Return(ir.NewBuilder(live), live.Argument(0))
    b := ir.NewBuilder(dead1)
    v := irtest.Add(b, entry.Argument(0), entry.Argument(0))
    irtest.Br(b, dead2, v)
    b = ir.NewBuilder(dead2)
    w := irtest.Mul(b, dead2.Argument(0), v)
    irtest.CondBr(b, irtest.CmpLt(b, w, v), dead1, nil, live, []*ir.Value{w})
    verify(t, r)

    /* the dead blocks go away, with all their uses */
    require.True(t, EraseUnreachableBlocks(newrw(), []*ir.Region{r}))
    verify(t, r)
    assert.Equal(t, []*ir.Block{entry, live}, r.Blocks())
    assert.Equal(t, 1, entry.Argument(0).NumUses())
    assert.Len(t, live.Predecessors(), 1)

    /* every remaining block is reachable */
    assert.Len(t, Reachable(r), r.NumBlocks())

    /* second run changes nothing */
    assert.False(t, EraseUnreachableBlocks(newrw(), []*ir.Region{r}))
}

func TestUnreachable_NestedRegions(t *testing.T) {
    r, entry := irtest.Func()
    b := ir.NewBuilder(entry)
    _, body := irtest.Scope(b)
    irtest.Return(b)

    /* the nested region has an unreachable block */
    inner := irtest.Block(body)
    dead := irtest.Block(body)
    irtest.Yield(ir.NewBuilder(inner))
    irtest.Yield(ir.NewBuilder(dead))
    verify(t, r)

    /* the top-level region has one block, the nested one is still processed */
    require.True(t, EraseUnreachableBlocks(newrw(), []*ir.Region{r}))
    verify(t, r)
    assert.Equal(t, []*ir.Block{inner}, body.Blocks())
    assert.False(t, EraseUnreachableBlocks(newrw(), []*ir.Region{r}))
}

func TestUnreachable_EmptyRegion(t *testing.T) {
    assert.False(t, EraseUnreachableBlocks(newrw(), []*ir.Region{ir.NewRegion(ir.CFG)}))
}
