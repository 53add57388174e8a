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
    `errors`
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/regionopt/internal/irtest`
    `github.com/cloudwego/regionopt/ir`
)

type failures struct {
    ir.BaseListener
    reasons []string
}

func (self *failures) NotifyMatchFailure(_ *ir.Instr, reason string) {
    self.reasons = append(self.reasons, reason)
}

type _MoveCase struct {
    r    *ir.Region
    bb   *ir.Block
    a    *ir.Instr
    b    *ir.Instr
    ip   *ir.Instr
    c    *ir.Instr
    d    *ir.Instr
    op   *ir.Instr
}

// movecase builds
//
//   %a = const 1
//   %b = const 2
//   print %a            <- ip
//   %c = add %a, %b
//   %d = mul %c, %b
//   print %d            <- op
//   return
func movecase() *_MoveCase {
    r, bb := irtest.Func()
    b := ir.NewBuilder(bb)
    ret := &_MoveCase{r: r, bb: bb}
    a := irtest.Const(b, 1)
    c := irtest.Const(b, 2)
    ret.ip = irtest.Print(b, a)
    x := irtest.Add(b, a, c)
    y := irtest.Mul(b, x, c)
    ret.op = irtest.Print(b, y)
    irtest.Return(b)
    ret.a, ret.b, ret.c, ret.d = a.Def(), c.Def(), x.Def(), y.Def()
    return ret
}

func TestMove_OperationDependencies(t *testing.T) {
    mc := movecase()
    rw := ir.NewRewriter(nil)
    require.NoError(t, MoveOperationDependencies(rw, mc.op, mc.ip, nil))
    verify(t, mc.r)

    /* the dependencies keep their relative order, right before ip */
    ins := mc.bb.Instrs()
    assert.Equal(t, []*ir.Instr{mc.a, mc.b, mc.c, mc.d, mc.ip, mc.op}, ins[:6])
    dominated(t, mc.r)

    /* ip can now be moved before op */
    rw.MoveOpBefore(mc.ip, mc.op)
    verify(t, mc.r)
    dominated(t, mc.r)

    /* nothing left to move */
    require.NoError(t, MoveOperationDependencies(rw, mc.op, mc.ip, nil))
}

func TestMove_OperationDependencies_Nested(t *testing.T) {
    r, bb := irtest.Func(irtest.I64)
    b := ir.NewBuilder(bb)
    x := bb.Argument(0)
    ip := irtest.Print(b, x)
    v := irtest.Add(b, x, x)
    op, body := irtest.Scope(b)
    irtest.Return(b)

    /* the scope uses v from inside its body */
    nb := ir.NewBuilder(irtest.Block(body))
    irtest.Print(nb, v)
    irtest.Yield(nb)

    require.NoError(t, MoveOperationDependencies(newrw(), op, ip, nil))
    verify(t, r)
    assert.Equal(t, []*ir.Instr{v.Def(), ip, op}, bb.Instrs()[:3])
}

func TestMove_OperationDependencies_Rejected(t *testing.T) {
    cases := []struct {
        name   string
        reason string
        setup  func(mc *_MoveCase) (*ir.Instr, *ir.Instr)
    } {
        {
            name   : "ip after op",
            reason : _ReasonNotDominating,
            setup  : func(mc *_MoveCase) (*ir.Instr, *ir.Instr) { return mc.c, mc.op },
        },
        {
            name   : "ip in the slice",
            reason : _ReasonInSlice,
            setup  : func(mc *_MoveCase) (*ir.Instr, *ir.Instr) { return mc.op, mc.c },
        },
        {
            name   : "different blocks",
            reason : _ReasonDifferentBlock,
            setup  : func(mc *_MoveCase) (*ir.Instr, *ir.Instr) {
                bb := irtest.Block(mc.r)
                return mc.op, irtest.Return(ir.NewBuilder(bb))
            },
        },
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            mc := movecase()
            op, ip := tc.setup(mc)
            before := mc.bb.Instrs()
            fl := new(failures)

            /* rejected without touching anything */
            err := MoveOperationDependencies(ir.NewRewriter(fl), op, ip, nil)
            var mf *MatchFailure
            require.True(t, errors.As(err, &mf))
            assert.Equal(t, op, mf.Op)
            assert.Equal(t, tc.reason, mf.Reason)
            assert.Equal(t, []string{tc.reason}, fl.reasons)
            assert.Equal(t, before, mc.bb.Instrs())
        })
    }
}

func TestMove_OperationDependencies_GraphRegion(t *testing.T) {
    r, bb := irtest.Func()
    g, gb := irtest.Graph(ir.NewBuilder(bb))
    irtest.Return(ir.NewBuilder(bb))

    /* %ip = add %a, %a ; %c = mul %ip, %a ; print %c */
    b := ir.NewBuilder(gb)
    a := irtest.Const(b, 1)
    ip := irtest.Add(b, a, a).Def()
    c := irtest.Mul(b, ip.Result(0), a).Def()
    irtest.Print(b, c.Result(0))
    irtest.Yield(b)
    verify(t, r)
    before := gb.Instrs()

    /* ip is an operand of c, so it sits in the slice of c */
    fl := new(failures)
    err := MoveOperationDependencies(ir.NewRewriter(fl), c, ip, nil)
    var mf *MatchFailure
    require.True(t, errors.As(err, &mf))
    assert.Equal(t, _ReasonInSlice, mf.Reason)
    assert.Equal(t, []string{_ReasonInSlice}, fl.reasons)
    assert.Equal(t, before, gb.Instrs())
    assert.Equal(t, c, mf.Op)
    assert.Equal(t, g, gb.Region().Parent())
}

func TestMove_ValueDefinitions(t *testing.T) {
    mc := movecase()
    require.NoError(t, MoveValueDefinitions(newrw(), []*ir.Value{mc.d.Result(0)}, mc.ip, nil))
    verify(t, mc.r)
    assert.Equal(t, []*ir.Instr{mc.a, mc.b, mc.c, mc.d, mc.ip, mc.op}, mc.bb.Instrs()[:6])

    /* values that already dominate ip stay where they are */
    mc = movecase()
    require.NoError(t, MoveValueDefinitions(newrw(), []*ir.Value{mc.a.Result(0), mc.b.Result(0)}, mc.ip, nil))
    assert.Equal(t, []*ir.Instr{mc.a, mc.b, mc.ip, mc.c, mc.d, mc.op}, mc.bb.Instrs()[:6])

    /* several values sharing dependencies, given in reverse */
    mc = movecase()
    values := []*ir.Value{mc.d.Result(0), mc.c.Result(0)}
    require.NoError(t, MoveValueDefinitions(newrw(), values, mc.ip, nil))
    verify(t, mc.r)
    assert.Equal(t, []*ir.Instr{mc.a, mc.b, mc.c, mc.d, mc.ip, mc.op}, mc.bb.Instrs()[:6])
}

func TestMove_ValueDefinitions_Rejected(t *testing.T) {
    r, entry := irtest.Func(irtest.I64)
    bb := irtest.Block(r, irtest.I64)
    b := ir.NewBuilder(entry)
    ip := irtest.Print(b, entry.Argument(0))
    irtest.Br(b, bb, entry.Argument(0))
    b = ir.NewBuilder(bb)
    v := irtest.Add(b, bb.Argument(0), bb.Argument(0))
    irtest.Return(b, v)

    /* a block argument can not be moved */
    fl := new(failures)
    err := MoveValueDefinitions(ir.NewRewriter(fl), []*ir.Value{bb.Argument(0)}, ip, nil)
    var mf *MatchFailure
    require.True(t, errors.As(err, &mf))
    assert.Equal(t, _ReasonBlockArgument, mf.Reason)

    /* nor a definition living in another block */
    err = MoveValueDefinitions(ir.NewRewriter(fl), []*ir.Value{v}, ip, nil)
    require.True(t, errors.As(err, &mf))
    assert.Equal(t, _ReasonValueBlock, mf.Reason)
    assert.Equal(t, []string{_ReasonBlockArgument, _ReasonValueBlock}, fl.reasons)

    /* the argument of the insertion block is always available */
    require.NoError(t, MoveValueDefinitions(newrw(), []*ir.Value{entry.Argument(0)}, ip, nil))
    assert.Equal(t, 2, entry.NumInstrs())
}

func TestMove_SortTopologically(t *testing.T) {
    mc := movecase()
    slice := []*ir.Instr{mc.d, mc.c, mc.a}
    ret, ok := sortTopologically(slice, positions(mc.bb, slice))
    require.True(t, ok)
    assert.Equal(t, []*ir.Instr{mc.a, mc.c, mc.d}, ret)

    /* graph regions may hold cycles */
    r, bb := irtest.Func(irtest.I64)
    g, body := irtest.Graph(ir.NewBuilder(bb))
    irtest.Return(ir.NewBuilder(bb))
    gb := ir.NewBuilder(body)
    x := irtest.Add(gb, bb.Argument(0), bb.Argument(0))
    y := irtest.Add(gb, x, x)
    x.Def().SetOperand(0, y)
    irtest.Yield(gb)
    verify(t, r)
    slice = []*ir.Instr{x.Def(), y.Def()}
    _, ok = sortTopologically(slice, positions(body, slice))
    assert.False(t, ok)
    assert.Equal(t, 1, g.NumRegions())
}

func TestMove_BackwardSlice(t *testing.T) {
    mc := movecase()
    all := func(*ir.Instr) bool { return true }

    /* post order, root excluded unless asked for */
    slice := backwardSlice(mc.op, false, all, nil, make(map[*ir.Instr]struct{}))
    assert.Equal(t, []*ir.Instr{mc.a, mc.b, mc.c, mc.d}, slice)
    slice = backwardSlice(mc.op, true, all, nil, make(map[*ir.Instr]struct{}))
    assert.Equal(t, []*ir.Instr{mc.a, mc.b, mc.c, mc.d, mc.op}, slice)

    /* filtered instructions are not looked through */
    slice = backwardSlice(mc.op, false, func(p *ir.Instr) bool { return p != mc.c }, nil, make(map[*ir.Instr]struct{}))
    assert.Equal(t, []*ir.Instr{mc.b, mc.d}, slice)
}
