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


package emu

import (
    `errors`
    `fmt`
    `strconv`

    `github.com/cloudwego/regionopt/internal/irtest`
    `github.com/cloudwego/regionopt/ir`
)

const (
    _DefaultMaxSteps = 100000
)

var (
    ErrStepLimit = errors.New("emu: step limit exceeded")
)

// Emulator interprets regions built from the irtest instruction set.
type Emulator struct {
    Trace    []int64
    MaxSteps int
    steps    int
    vals     map[*ir.Value]int64
}

type _Exit struct {
    vals []int64
    next *ir.Block
}

var dispatchTab map[string]func(e *Emulator, p *ir.Instr)

func init() {
    dispatchTab = map[string]func(e *Emulator, p *ir.Instr) {
        irtest.OpConst : (*Emulator).emu_OP_const,
        irtest.OpAdd   : (*Emulator).emu_OP_add,
        irtest.OpSub   : (*Emulator).emu_OP_sub,
        irtest.OpMul   : (*Emulator).emu_OP_mul,
        irtest.OpCmpLt : (*Emulator).emu_OP_cmplt,
        irtest.OpPrint : (*Emulator).emu_OP_print,
        irtest.OpKeep  : (*Emulator).emu_OP_keep,
        irtest.OpScope : (*Emulator).emu_OP_scope,
        irtest.OpGraph : (*Emulator).emu_OP_scope,
    }
}

func New() *Emulator {
    return &Emulator {
        MaxSteps : _DefaultMaxSteps,
        vals     : make(map[*ir.Value]int64),
    }
}

// Run executes r from its entry block with the given arguments, returning
// the values passed to its return or yield.
func (self *Emulator) Run(r *ir.Region, args ...int64) (ret []int64, err error) {
    defer func() {
        if v := recover(); v != nil {
            if e, ok := v.(error); ok && errors.Is(e, ErrStepLimit) {
                err = e
            } else {
                panic(v)
            }
        }
    }()
    return self.run(r, args), nil
}

// Run is a shorthand for New().Run, also returning the print trace.
func Run(r *ir.Region, args ...int64) ([]int64, []int64, error) {
    e := New()
    ret, err := e.Run(r, args...)
    return ret, e.Trace, err
}

func (self *Emulator) run(r *ir.Region, args []int64) []int64 {
    bb := r.Entry()
    in := args

    /* execute until a block leaves the region */
    for {
        ex := self.block(bb, in)
        if ex.next == nil {
            return ex.vals
        }
        bb, in = ex.next, ex.vals
    }
}

func (self *Emulator) block(bb *ir.Block, args []int64) _Exit {
    if len(args) != bb.NumArguments() {
        panic(fmt.Sprintf("emu: %s expects %d arguments, got %d", bb, bb.NumArguments(), len(args)))
    }

    /* bind the arguments */
    for i, v := range bb.Arguments() {
        self.vals[v] = args[i]
    }

    /* run every instruction */
    for _, p := range bb.Instrs() {
        if self.steps++; self.MaxSteps != 0 && self.steps > self.MaxSteps {
            panic(ErrStepLimit)
        }
        if p.IsTerminator() {
            return self.terminate(p)
        }
        if fn, ok := dispatchTab[p.Op]; !ok {
            panic("emu: unknown opcode: " + p.Op)
        } else {
            fn(self, p)
        }
    }

    /* blocks always end with a terminator */
    panic("emu: block without terminator: " + bb.String())
}

func (self *Emulator) terminate(p *ir.Instr) _Exit {
    switch p.Op {
        case irtest.OpReturn : return _Exit{vals: self.operands(p.PlainOperands())}
        case irtest.OpYield  : return _Exit{vals: self.operands(p.PlainOperands())}
        case irtest.OpBr     : return self.edge(p.Successor(0))
        case irtest.OpJump   : return self.edge(p.Successor(0))
        case irtest.OpCondBr : return self.edge(p.Successor(self.condition(p)))
        default              : panic("emu: unknown terminator: " + p.Op)
    }
}

func (self *Emulator) condition(p *ir.Instr) int {
    if self.get(p.Operand(0)) != 0 {
        return 0
    } else {
        return 1
    }
}

func (self *Emulator) edge(s *ir.Successor) _Exit {
    return _Exit {
        next: s.Target(),
        vals: self.operands(s.Operands()),
    }
}

func (self *Emulator) operands(ops []*ir.Operand) []int64 {
    ret := make([]int64, len(ops))
    for i, u := range ops {
        ret[i] = self.get(u.Get())
    }
    return ret
}

func (self *Emulator) get(v *ir.Value) int64 {
    if x, ok := self.vals[v]; !ok {
        panic("emu: use of an undefined value")
    } else {
        return x
    }
}

func (self *Emulator) emu_OP_const(p *ir.Instr) {
    if v, err := strconv.ParseInt(p.Attrs[0].Value, 10, 64); err != nil {
        panic("emu: invalid constant: " + p.Attrs[0].Value)
    } else {
        self.vals[p.Result(0)] = v
    }
}

func (self *Emulator) emu_OP_add(p *ir.Instr) {
    self.vals[p.Result(0)] = self.get(p.Operand(0)) + self.get(p.Operand(1))
}

func (self *Emulator) emu_OP_sub(p *ir.Instr) {
    self.vals[p.Result(0)] = self.get(p.Operand(0)) - self.get(p.Operand(1))
}

func (self *Emulator) emu_OP_mul(p *ir.Instr) {
    self.vals[p.Result(0)] = self.get(p.Operand(0)) * self.get(p.Operand(1))
}

func (self *Emulator) emu_OP_cmplt(p *ir.Instr) {
    if self.get(p.Operand(0)) < self.get(p.Operand(1)) {
        self.vals[p.Result(0)] = 1
    } else {
        self.vals[p.Result(0)] = 0
    }
}

func (self *Emulator) emu_OP_print(p *ir.Instr) {
    self.Trace = append(self.Trace, self.operands(p.Operands())...)
}

func (self *Emulator) emu_OP_keep(_ *ir.Instr) {
    /* no operation */
}

func (self *Emulator) emu_OP_scope(p *ir.Instr) {
    ret := self.run(p.Regions()[0], nil)

    /* bind the yielded values */
    for i, v := range p.Results() {
        self.vals[v] = ret[i]
    }
}
