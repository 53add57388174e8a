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


package ir

// Successor is a control-flow edge owned by a terminator. Its operands are
// forwarded to the arguments of the target block, position by position.
type Successor struct {
	owner    *Instr
	index    int
	target   *Block
	operands []*Operand
}

func (self *Successor) Owner() *Instr {
	return self.owner
}

// Index is the position of this edge among the successors of its owner.
func (self *Successor) Index() int {
	return self.index
}

func (self *Successor) Target() *Block {
	return self.target
}

// SetTarget retargets this edge to bb, moving the block use along.
func (self *Successor) SetTarget(bb *Block) {
	if self.target == bb {
		return
	}
	if self.target != nil {
		self.target.removeUse(self)
	}
	if self.target = bb; bb != nil {
		bb.addUse(self)
	}
}

// Operands returns a snapshot of the forwarded operands.
func (self *Successor) Operands() []*Operand {
	return append([]*Operand(nil), self.operands...)
}

func (self *Successor) NumOperands() int {
	return len(self.operands)
}

// Forwarded returns the forwarded values in order.
func (self *Successor) Forwarded() []*Value {
	ret := make([]*Value, len(self.operands))
	for i, p := range self.operands {
		ret[i] = p.value
	}
	return ret
}

// Append forwards more values along this edge.
func (self *Successor) Append(vals ...*Value) {
	for _, v := range vals {
		self.operands = append(self.operands, newOperand(self.owner, self, v))
	}
}

// Erase removes the i-th forwarded operand.
func (self *Successor) Erase(i int) {
	self.operands[i].drop()
	copy(self.operands[i:], self.operands[i + 1:])
	self.operands[len(self.operands) - 1] = nil
	self.operands = self.operands[:len(self.operands) - 1]
}

func (self *Successor) drop() {
	for _, p := range self.operands {
		p.drop()
	}
	self.SetTarget(nil)
}

// Edge describes a successor edge when creating a terminator.
type Edge struct {
	Target *Block
	Args   []*Value
}

// State collects everything needed to create an instruction.
type State struct {
	Op         string
	Loc        string
	Traits     Trait
	Attrs      []Attr
	Operands   []*Value
	Results    []Type
	Regions    []*Region
	Successors []Edge
}

// Instr is a single instruction. It owns its results, its operand uses, its
// nested regions and, for terminators, its successor edges.
type Instr struct {
	Op     string
	Loc    string
	Traits Trait
	Attrs  []Attr

	block    *Block
	operands []*Operand
	results  []*Value
	regions  []*Region
	succs    []*Successor
}

// Create builds a detached instruction from st.
func Create(st State) *Instr {
	ret := &Instr {
		Op     : st.Op,
		Loc    : st.Loc,
		Traits : st.Traits,
		Attrs  : append([]Attr(nil), st.Attrs...),
	}

	/* successors imply a terminator */
	if len(st.Successors) != 0 {
		ret.Traits |= Terminator
	}

	/* plain operands */
	for _, v := range st.Operands {
		ret.operands = append(ret.operands, newOperand(ret, nil, v))
	}

	/* results */
	for i, t := range st.Results {
		ret.results = append(ret.results, &Value {
			typ   : t,
			def   : ret,
			index : i,
		})
	}

	/* nested regions */
	for _, r := range st.Regions {
		if r.parent != nil {
			panic("ir: region is already attached to an instruction")
		}
		r.parent = ret
		ret.regions = append(ret.regions, r)
	}

	/* successor edges */
	for i, e := range st.Successors {
		s := &Successor{owner: ret, index: i}
		s.SetTarget(e.Target)
		s.Append(e.Args...)
		ret.succs = append(ret.succs, s)
	}
	return ret
}

func (self *Instr) Block() *Block {
	return self.block
}

func (self *Instr) ParentRegion() *Region {
	if self.block == nil {
		return nil
	} else {
		return self.block.region
	}
}

// ParentInstr returns the instruction owning the region this one lives in.
func (self *Instr) ParentInstr() *Instr {
	if r := self.ParentRegion(); r == nil {
		return nil
	} else {
		return r.parent
	}
}

func (self *Instr) IsTerminator() bool {
	return self.Traits.Has(Terminator)
}

// Operands returns every operand use: plain operands first, then the
// forwarded operands of each successor in order.
func (self *Instr) Operands() []*Operand {
	ret := append([]*Operand(nil), self.operands...)
	for _, s := range self.succs {
		ret = append(ret, s.operands...)
	}
	return ret
}

// PlainOperands returns the operands that are not forwarded to successors.
func (self *Instr) PlainOperands() []*Operand {
	return append([]*Operand(nil), self.operands...)
}

func (self *Instr) NumOperands() int {
	n := len(self.operands)
	for _, s := range self.succs {
		n += len(s.operands)
	}
	return n
}

// OperandValues returns the values referenced by Operands().
func (self *Instr) OperandValues() []*Value {
	ops := self.Operands()
	ret := make([]*Value, len(ops))
	for i, p := range ops {
		ret[i] = p.value
	}
	return ret
}

func (self *Instr) Operand(i int) *Value {
	return self.Operands()[i].value
}

func (self *Instr) SetOperand(i int, v *Value) {
	self.Operands()[i].Set(v)
}

func (self *Instr) Results() []*Value {
	return append([]*Value(nil), self.results...)
}

func (self *Instr) Result(i int) *Value {
	return self.results[i]
}

func (self *Instr) NumResults() int {
	return len(self.results)
}

func (self *Instr) ResultTypes() []Type {
	ret := make([]Type, len(self.results))
	for i, v := range self.results {
		ret[i] = v.typ
	}
	return ret
}

func (self *Instr) Regions() []*Region {
	return append([]*Region(nil), self.regions...)
}

func (self *Instr) NumRegions() int {
	return len(self.regions)
}

// HasNonEmptyRegion reports whether any nested region holds a block.
func (self *Instr) HasNonEmptyRegion() bool {
	for _, r := range self.regions {
		if !r.Empty() {
			return true
		}
	}
	return false
}

func (self *Instr) Successors() []*Successor {
	return append([]*Successor(nil), self.succs...)
}

func (self *Instr) Successor(i int) *Successor {
	return self.succs[i]
}

func (self *Instr) NumSuccessors() int {
	return len(self.succs)
}

// SuccessorBlocks returns the targets of all successor edges in order.
func (self *Instr) SuccessorBlocks() []*Block {
	ret := make([]*Block, len(self.succs))
	for i, s := range self.succs {
		ret[i] = s.target
	}
	return ret
}

// HasUses reports whether any result is used.
func (self *Instr) HasUses() bool {
	for _, v := range self.results {
		if v.HasUses() {
			return true
		}
	}
	return false
}

// IsUsedOutsideOf reports whether any result is used outside bb.
func (self *Instr) IsUsedOutsideOf(bb *Block) bool {
	for _, v := range self.results {
		if v.IsUsedOutsideOf(bb) {
			return true
		}
	}
	return false
}

// DropAllUses detaches every use of every result.
func (self *Instr) DropAllUses() {
	for _, v := range self.results {
		v.DropAllUses()
	}
}

// DropAllReferences detaches every operand and successor of this
// instruction and of everything nested inside it.
func (self *Instr) DropAllReferences() {
	for _, p := range self.operands {
		p.drop()
	}
	for _, s := range self.succs {
		s.drop()
	}
	for _, r := range self.regions {
		r.dropAllReferences()
	}
}

// DropAllDefinedValueUses detaches the uses of every value defined by this
// instruction or inside its regions.
func (self *Instr) DropAllDefinedValueUses() {
	self.DropAllUses()
	for _, r := range self.regions {
		for _, bb := range r.blocks {
			bb.DropAllDefinedValueUses()
		}
	}
}

// IsAncestorOf reports whether other is this instruction or is nested in it.
func (self *Instr) IsAncestorOf(other *Instr) bool {
	for p := other; p != nil; p = p.ParentInstr() {
		if p == self {
			return true
		}
	}
	return false
}

// IsBeforeInBlock reports whether this instruction precedes other in the
// same block.
func (self *Instr) IsBeforeInBlock(other *Instr) bool {
	if self.block == nil || self.block != other.block {
		panic("ir: instructions are not in the same block")
	}
	return self.block.indexOf(self) < self.block.indexOf(other)
}

// Walk visits this instruction and everything nested in it, pre-order.
func (self *Instr) Walk(fn func(ins *Instr)) {
	fn(self)
	for _, r := range self.regions {
		r.Walk(fn)
	}
}

func (self *Instr) String() string {
	return newNamer(self.rootRegion()).instr(self)
}

func (self *Instr) rootRegion() *Region {
	var r *Region
	for p := self; p != nil; p = p.ParentInstr() {
		if p.block != nil {
			r = p.block.region
		}
	}
	return r
}
