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

// Block is an ordered list of instructions ending in a terminator, plus the
// arguments passed in by its predecessors. Every successor edge targeting a
// block is registered as a use of that block.
type Block struct {
	region *Region
	args   []*Value
	instrs []*Instr
	uses   []*Successor
}

// NewBlock creates a detached block with the given argument types.
func NewBlock(types ...Type) *Block {
	ret := new(Block)
	for _, t := range types {
		ret.AddArgument(t)
	}
	return ret
}

func (self *Block) Region() *Region {
	return self.region
}

// ParentInstr returns the instruction owning the region of this block.
func (self *Block) ParentInstr() *Instr {
	if self.region == nil {
		return nil
	} else {
		return self.region.parent
	}
}

func (self *Block) IsEntry() bool {
	return self.region != nil && len(self.region.blocks) != 0 && self.region.blocks[0] == self
}

func (self *Block) Arguments() []*Value {
	return append([]*Value(nil), self.args...)
}

func (self *Block) Argument(i int) *Value {
	return self.args[i]
}

func (self *Block) NumArguments() int {
	return len(self.args)
}

func (self *Block) ArgumentTypes() []Type {
	ret := make([]Type, len(self.args))
	for i, v := range self.args {
		ret[i] = v.typ
	}
	return ret
}

// AddArgument appends a new trailing argument.
func (self *Block) AddArgument(t Type) *Value {
	v := &Value {
		typ   : t,
		owner : self,
		index : len(self.args),
	}
	self.args = append(self.args, v)
	return v
}

// EraseArgument removes the i-th argument, which must be unused. Forwarded
// operands of the predecessors are not touched.
func (self *Block) EraseArgument(i int) {
	v := self.args[i]
	if v.HasUses() {
		panic("ir: erasing a block argument that still has uses")
	}

	/* shift the remaining arguments */
	copy(self.args[i:], self.args[i + 1:])
	self.args[len(self.args) - 1] = nil
	self.args = self.args[:len(self.args) - 1]

	/* renumber them */
	for j := i; j < len(self.args); j++ {
		self.args[j].index = j
	}
	v.owner = nil
}

// Instrs returns a snapshot of the instructions, safe to iterate while
// mutating the block.
func (self *Block) Instrs() []*Instr {
	return append([]*Instr(nil), self.instrs...)
}

func (self *Block) NumInstrs() int {
	return len(self.instrs)
}

func (self *Block) Empty() bool {
	return len(self.instrs) == 0
}

func (self *Block) Front() *Instr {
	if len(self.instrs) == 0 {
		return nil
	} else {
		return self.instrs[0]
	}
}

// Terminator returns the last instruction if it is a terminator.
func (self *Block) Terminator() *Instr {
	if n := len(self.instrs); n == 0 || !self.instrs[n - 1].IsTerminator() {
		return nil
	} else {
		return self.instrs[n - 1]
	}
}

// Successors returns the targets of the terminator in edge order.
func (self *Block) Successors() []*Block {
	if term := self.Terminator(); term == nil {
		return nil
	} else {
		return term.SuccessorBlocks()
	}
}

// Predecessors returns every edge that targets this block. The same
// predecessor block appears once per edge.
func (self *Block) Predecessors() []*Successor {
	return append([]*Successor(nil), self.uses...)
}

// PredecessorBlocks returns the source block of every incoming edge.
func (self *Block) PredecessorBlocks() []*Block {
	ret := make([]*Block, len(self.uses))
	for i, s := range self.uses {
		ret[i] = s.owner.block
	}
	return ret
}

func (self *Block) HasPredecessor(bb *Block) bool {
	for _, s := range self.uses {
		if s.owner.block == bb {
			return true
		}
	}
	return false
}

func (self *Block) HasUses() bool {
	return len(self.uses) != 0
}

// ReplaceAllUsesWith retargets every edge pointing at this block to bb.
func (self *Block) ReplaceAllUsesWith(bb *Block) {
	for _, s := range self.Predecessors() {
		s.SetTarget(bb)
	}
}

// Append adds a detached instruction at the end of the block.
func (self *Block) Append(ins *Instr) {
	self.insert(len(self.instrs), ins)
}

// InsertBefore adds a detached instruction right before at.
func (self *Block) InsertBefore(ins *Instr, at *Instr) {
	self.insert(self.indexOf(at), ins)
}

func (self *Block) insert(i int, ins *Instr) {
	if ins.block != nil {
		panic("ir: instruction is already inserted into a block")
	}
	self.instrs = append(self.instrs, nil)
	copy(self.instrs[i + 1:], self.instrs[i:])
	self.instrs[i] = ins
	ins.block = self
}

func (self *Block) remove(ins *Instr) {
	i := self.indexOf(ins)
	copy(self.instrs[i:], self.instrs[i + 1:])
	self.instrs[len(self.instrs) - 1] = nil
	self.instrs = self.instrs[:len(self.instrs) - 1]
	ins.block = nil
}

func (self *Block) indexOf(ins *Instr) int {
	for i, p := range self.instrs {
		if p == ins {
			return i
		}
	}
	panic("ir: instruction is not in this block")
}

// IndexOf returns the position of ins in this block.
func (self *Block) IndexOf(ins *Instr) int {
	return self.indexOf(ins)
}

// DropAllDefinedValueUses detaches the uses of every argument, of every
// value defined inside the block, and of the block itself.
func (self *Block) DropAllDefinedValueUses() {
	for _, v := range self.args {
		v.DropAllUses()
	}
	for _, ins := range self.instrs {
		ins.DropAllDefinedValueUses()
	}
	for _, s := range self.Predecessors() {
		s.SetTarget(nil)
	}
}

func (self *Block) dropAllReferences() {
	for _, ins := range self.instrs {
		ins.DropAllReferences()
	}
}

func (self *Block) addUse(s *Successor) {
	self.uses = append(self.uses, s)
}

func (self *Block) removeUse(s *Successor) {
	for i, p := range self.uses {
		if p == s {
			copy(self.uses[i:], self.uses[i + 1:])
			self.uses[len(self.uses) - 1] = nil
			self.uses = self.uses[:len(self.uses) - 1]
			return
		}
	}
	panic("ir: successor is not in the use list of its target")
}

func (self *Block) String() string {
	return newNamer(self.rootRegion()).block(self)
}

func (self *Block) rootRegion() *Region {
	if ins := self.ParentInstr(); ins != nil {
		return ins.rootRegion()
	} else {
		return self.region
	}
}
