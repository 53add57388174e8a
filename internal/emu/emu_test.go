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


package emu

import (
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/regionopt/internal/irtest`
    `github.com/cloudwego/regionopt/ir`
)

// countdown prints n, n-1, ..., 1 and returns the sum.
func countdown() *ir.Region {
    r, entry := irtest.Func(irtest.I64)
    head := irtest.Block(r, irtest.I64, irtest.I64)
    body := irtest.Block(r)
    exit := irtest.Block(r)
    b := ir.NewBuilder(entry)
    zero := irtest.Const(b, 0)
    one := irtest.Const(b, 1)
    irtest.Br(b, head, entry.Argument(0), zero)
    b = ir.NewBuilder(head)
    n, acc := head.Argument(0), head.Argument(1)
    irtest.CondBr(b, irtest.CmpLt(b, zero, n), body, nil, exit, nil)
    b = ir.NewBuilder(body)
    irtest.Print(b, n)
    irtest.Jump(b, head, irtest.Sub(b, n, one), irtest.Add(b, acc, n))
    irtest.Return(ir.NewBuilder(exit), acc)
    return r
}

func TestEmu_Loop(t *testing.T) {
    ret, trace, err := Run(countdown(), 4)
    require.NoError(t, err)
    assert.Equal(t, []int64{10}, ret)
    assert.Equal(t, []int64{4, 3, 2, 1}, trace)
}

func TestEmu_StepLimit(t *testing.T) {
    e := New()
    e.MaxSteps = 10
    _, err := e.Run(countdown(), 1000)
    assert.ErrorIs(t, err, ErrStepLimit)
}

func TestEmu_NestedRegions(t *testing.T) {
    r, entry := irtest.Func(irtest.I64)
    x := entry.Argument(0)
    b := ir.NewBuilder(entry)
    s, body := irtest.Scope(b, irtest.I64)
    g, gb := irtest.Graph(b, irtest.I64)
    irtest.Return(b, irtest.Mul(b, s.Result(0), g.Result(0)))

    /* scope: x + x, graph: x - 1 */
    sb := ir.NewBuilder(irtest.Block(body))
    irtest.Yield(sb, irtest.Add(sb, x, x))
    bb := ir.NewBuilder(gb)
    irtest.Yield(bb, irtest.Sub(bb, x, irtest.Const(bb, 1)))
    require.NoError(t, ir.Verify(r))

    ret, trace, err := Run(r, 5)
    require.NoError(t, err)
    assert.Equal(t, []int64{40}, ret)
    assert.Empty(t, trace)
}

func TestEmu_Malformed(t *testing.T) {
    r, _ := irtest.Func(irtest.I64)
    assert.Panics(t, func() { _, _, _ = Run(r) })
}

func TestEmu_DispatchTable(t *testing.T) {
    for _, op := range []string {
        irtest.OpConst,
        irtest.OpAdd,
        irtest.OpSub,
        irtest.OpMul,
        irtest.OpCmpLt,
        irtest.OpPrint,
        irtest.OpKeep,
        irtest.OpScope,
        irtest.OpGraph,
    } {
        assert.Contains(t, dispatchTab, op)
    }
}
