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

func argelim(regions ...*ir.Region) bool {
    return DropRedundantArguments(newrw(), regions, ir.Traits)
}

// join builds a block with two predecessors, each forwarding two values.
func join(lhs [2]int, rhs [2]int) (*ir.Region, *ir.Block, []*ir.Value) {
    r, entry := irtest.Func(irtest.I1, irtest.I64, irtest.I64)
    bb1 := irtest.Block(r)
    bb2 := irtest.Block(r)
    exit := irtest.Block(r, irtest.I64, irtest.I64)
    vals := []*ir.Value{entry.Argument(1), entry.Argument(2)}
    irtest.CondBr(ir.NewBuilder(entry), entry.Argument(0), bb1, nil, bb2, nil)
    irtest.Br(ir.NewBuilder(bb1), exit, vals[lhs[0]], vals[lhs[1]])
    irtest.Br(ir.NewBuilder(bb2), exit, vals[rhs[0]], vals[rhs[1]])
    b := ir.NewBuilder(exit)
    irtest.Return(b, irtest.Add(b, exit.Argument(0), exit.Argument(1)))
    return r, exit, vals
}

func TestArgElim_SameValue(t *testing.T) {
    r, exit, vals := join([2]int{0, 1}, [2]int{0, 0})
    verify(t, r)

    /* the first argument always receives x */
    require.True(t, argelim(r))
    verify(t, r)
    require.Equal(t, 1, exit.NumArguments())
    assert.Equal(t, []*ir.Value{vals[0], exit.Argument(0)}, exit.Front().OperandValues())
    for _, s := range exit.Predecessors() {
        assert.Len(t, s.Forwarded(), 1)
    }

    /* the second one does not */
    assert.False(t, argelim(r))
}

func TestArgElim_AllArguments(t *testing.T) {
    r, exit, vals := join([2]int{1, 0}, [2]int{1, 0})
    require.True(t, argelim(r))
    verify(t, r)
    assert.Equal(t, 0, exit.NumArguments())
    assert.Equal(t, []*ir.Value{vals[1], vals[0]}, exit.Front().OperandValues())
    assert.False(t, argelim(r))
}

func TestArgElim_DivergentValues(t *testing.T) {
    r, exit, _ := join([2]int{0, 1}, [2]int{1, 0})
    assert.False(t, argelim(r))
    assert.Equal(t, 2, exit.NumArguments())
}

func TestArgElim_OpaquePredecessor(t *testing.T) {
    r, entry := irtest.Func(irtest.I64)
    bb := irtest.Block(r, irtest.I64)
    irtest.Jump(ir.NewBuilder(entry), bb, entry.Argument(0))
    irtest.Return(ir.NewBuilder(bb), bb.Argument(0))
    assert.False(t, argelim(r))
    assert.Equal(t, 1, bb.NumArguments())
}

func TestArgElim_LoopHeader(t *testing.T) {
    r, entry := irtest.Func(irtest.I1, irtest.I64)
    head := irtest.Block(r, irtest.I64, irtest.I64)
    exit := irtest.Block(r)
    x := entry.Argument(1)

    /* the first argument is invariant, the second one is not */
    irtest.Br(ir.NewBuilder(entry), head, x, x)
    b := ir.NewBuilder(head)
    irtest.Print(b, head.Argument(0), head.Argument(1))
    n := irtest.Add(b, head.Argument(1), head.Argument(0))
    irtest.CondBr(b, entry.Argument(0), head, []*ir.Value{x, n}, exit, nil)
    irtest.Return(ir.NewBuilder(exit))
    verify(t, r)

    /* both edges forward x to the first argument */
    require.True(t, argelim(r))
    verify(t, r)
    require.Equal(t, 1, head.NumArguments())
    assert.Equal(t, []*ir.Value{x, head.Argument(0)}, head.Front().OperandValues())
    assert.False(t, argelim(r))
}

func TestArgElim_SelfForwarded(t *testing.T) {
    r, entry := irtest.Func(irtest.I1, irtest.I64)
    head := irtest.Block(r, irtest.I64)
    exit := irtest.Block(r)

    /* the latch forwards the argument to itself */
    irtest.Br(ir.NewBuilder(entry), head, entry.Argument(1))
    b := ir.NewBuilder(head)
    irtest.Print(b, head.Argument(0))
    irtest.CondBr(b, entry.Argument(0), head, []*ir.Value{head.Argument(0)}, exit, nil)
    irtest.Return(ir.NewBuilder(exit))

    /* the incoming values differ, so the argument stays */
    assert.False(t, argelim(r))
    assert.Equal(t, 1, head.NumArguments())
}
