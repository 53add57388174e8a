/*
 * Copyright 2022 CloudWeGo Authors
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


// Package irtest provides a tiny instruction set for building test graphs.
package irtest

import (
	"strconv"

	"github.com/cloudwego/regionopt/ir"
)

const (
	I64 ir.Type = "i64"
	I1  ir.Type = "i1"
)

const (
	OpConst  = "const"
	OpAdd    = "add"
	OpSub    = "sub"
	OpMul    = "mul"
	OpCmpLt  = "cmplt"
	OpPrint  = "print"
	OpKeep   = "keep"
	OpScope  = "scope"
	OpGraph  = "graph"
	OpYield  = "yield"
	OpBr     = "br"
	OpCondBr = "condbr"
	OpJump   = "jump"
	OpReturn = "return"
)

const (
	_Branch = ir.Terminator | ir.Branch | ir.Pure
	_Opaque = ir.Terminator | ir.Pure
)

// Func creates a top-level CFG region with an entry block taking args.
func Func(args ...ir.Type) (*ir.Region, *ir.Block) {
	r := ir.NewRegion(ir.CFG)
	bb := ir.NewBlock(args...)
	r.AppendBlock(bb)
	return r, bb
}

// Block appends a new block taking args to r.
func Block(r *ir.Region, args ...ir.Type) *ir.Block {
	bb := ir.NewBlock(args...)
	r.AppendBlock(bb)
	return bb
}

func Const(b *ir.Builder, v int64) *ir.Value {
	return b.Create(ir.State {
		Op      : OpConst,
		Traits  : ir.Pure,
		Attrs   : []ir.Attr{{Name: "value", Value: strconv.FormatInt(v, 10)}},
		Results : []ir.Type{I64},
	}).Result(0)
}

func binary(b *ir.Builder, op string, t ir.Type, x *ir.Value, y *ir.Value) *ir.Value {
	return b.Create(ir.State {
		Op       : op,
		Traits   : ir.Pure,
		Operands : []*ir.Value{x, y},
		Results  : []ir.Type{t},
	}).Result(0)
}

func Add(b *ir.Builder, x *ir.Value, y *ir.Value) *ir.Value   { return binary(b, OpAdd, I64, x, y) }
func Sub(b *ir.Builder, x *ir.Value, y *ir.Value) *ir.Value   { return binary(b, OpSub, I64, x, y) }
func Mul(b *ir.Builder, x *ir.Value, y *ir.Value) *ir.Value   { return binary(b, OpMul, I64, x, y) }
func CmpLt(b *ir.Builder, x *ir.Value, y *ir.Value) *ir.Value { return binary(b, OpCmpLt, I1, x, y) }

// Print has an observable effect: it appends its operands to the trace.
func Print(b *ir.Builder, vals ...*ir.Value) *ir.Instr {
	return b.Create(ir.State {
		Op       : OpPrint,
		Operands : vals,
	})
}

// Keep is effect-free but may never be removed.
func Keep(b *ir.Builder, vals ...*ir.Value) *ir.Instr {
	return b.Create(ir.State {
		Op       : OpKeep,
		Traits   : ir.Pure | ir.NoRemove,
		Operands : vals,
	})
}

// Scope creates an instruction holding a single CFG region, whose yielded
// values become its results.
func Scope(b *ir.Builder, results ...ir.Type) (*ir.Instr, *ir.Region) {
	r := ir.NewRegion(ir.CFG)
	ins := b.Create(ir.State {
		Op      : OpScope,
		Traits  : ir.Pure,
		Results : results,
		Regions : []*ir.Region{r},
	})
	return ins, r
}

// Graph creates an instruction holding a single-block graph region.
func Graph(b *ir.Builder, results ...ir.Type) (*ir.Instr, *ir.Block) {
	r := ir.NewRegion(ir.Graph)
	bb := Block(r)
	ins := b.Create(ir.State {
		Op      : OpGraph,
		Traits  : ir.Pure,
		Results : results,
		Regions : []*ir.Region{r},
	})
	return ins, bb
}

func Yield(b *ir.Builder, vals ...*ir.Value) *ir.Instr {
	return b.Create(ir.State {
		Op       : OpYield,
		Traits   : _Opaque,
		Operands : vals,
	})
}

func Br(b *ir.Builder, to *ir.Block, args ...*ir.Value) *ir.Instr {
	return b.Create(ir.State {
		Op         : OpBr,
		Traits     : _Branch,
		Successors : []ir.Edge{{Target: to, Args: args}},
	})
}

func CondBr(b *ir.Builder, cond *ir.Value, t *ir.Block, targs []*ir.Value, f *ir.Block, fargs []*ir.Value) *ir.Instr {
	return b.Create(ir.State {
		Op         : OpCondBr,
		Traits     : _Branch,
		Operands   : []*ir.Value{cond},
		Successors : []ir.Edge{{Target: t, Args: targs}, {Target: f, Args: fargs}},
	})
}

// Jump is a terminator whose forwarded operands can not be edited.
func Jump(b *ir.Builder, to *ir.Block, args ...*ir.Value) *ir.Instr {
	return b.Create(ir.State {
		Op         : OpJump,
		Traits     : _Opaque,
		Successors : []ir.Edge{{Target: to, Args: args}},
	})
}

func Return(b *ir.Builder, vals ...*ir.Value) *ir.Instr {
	return b.Create(ir.State {
		Op       : OpReturn,
		Traits   : _Opaque,
		Operands : vals,
	})
}

// Ops counts the instructions of r with the given opcode, nested ones
// included.
func Ops(r *ir.Region, op string) int {
	n := 0
	r.Walk(func(ins *ir.Instr) {
		if ins.Op == op {
			n++
		}
	})
	return n
}
