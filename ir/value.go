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

// Value is either the result of an instruction or the argument of a block.
// The uses of a value are back-references, the value never owns them.
type Value struct {
	typ   Type
	def   *Instr
	owner *Block
	index int
	uses  []*Operand
}

func (self *Value) Type() Type {
	return self.typ
}

// Def returns the defining instruction, or nil for block arguments.
func (self *Value) Def() *Instr {
	return self.def
}

// Owner returns the block that owns this argument, or nil for results.
func (self *Value) Owner() *Block {
	return self.owner
}

// Index is the result number for results and the argument number for
// block arguments.
func (self *Value) Index() int {
	return self.index
}

func (self *Value) IsArgument() bool {
	return self.def == nil
}

// Uses returns a snapshot of the uses, safe to iterate while mutating.
func (self *Value) Uses() []*Operand {
	return append([]*Operand(nil), self.uses...)
}

func (self *Value) NumUses() int {
	return len(self.uses)
}

func (self *Value) HasUses() bool {
	return len(self.uses) != 0
}

// ParentBlock returns the block in which this value is defined.
func (self *Value) ParentBlock() *Block {
	if self.def == nil {
		return self.owner
	} else {
		return self.def.block
	}
}

// ParentRegion returns the region in which this value is defined.
func (self *Value) ParentRegion() *Region {
	if bb := self.ParentBlock(); bb == nil {
		return nil
	} else {
		return bb.region
	}
}

// IsUsedOutsideOf reports whether any use is owned by an instruction that
// is not an immediate member of bb.
func (self *Value) IsUsedOutsideOf(bb *Block) bool {
	for _, u := range self.uses {
		if u.owner.block != bb {
			return true
		}
	}
	return false
}

// ReplaceAllUsesWith points every use of this value at v.
func (self *Value) ReplaceAllUsesWith(v *Value) {
	if v != self {
		for _, u := range self.Uses() {
			u.Set(v)
		}
	}
}

// DropAllUses detaches every use of this value, leaving the operand slots
// empty. Only meaningful right before the users are erased.
func (self *Value) DropAllUses() {
	for _, u := range self.uses {
		u.value = nil
	}
	self.uses = nil
}

func (self *Value) addUse(u *Operand) {
	self.uses = append(self.uses, u)
}

func (self *Value) removeUse(u *Operand) {
	for i, p := range self.uses {
		if p == u {
			copy(self.uses[i:], self.uses[i + 1:])
			self.uses[len(self.uses) - 1] = nil
			self.uses = self.uses[:len(self.uses) - 1]
			return
		}
	}
	panic("ir: operand is not in the use list of its value")
}

func (self *Value) String() string {
	return newNamer(self.ParentRegion()).value(self)
}

// Operand is a use of a value by an instruction. Plain operands have a nil
// successor, forwarded operands belong to one successor edge.
type Operand struct {
	owner *Instr
	succ  *Successor
	value *Value
}

func newOperand(owner *Instr, succ *Successor, v *Value) *Operand {
	ret := &Operand {
		owner: owner,
		succ : succ,
		value: v,
	}
	if v != nil {
		v.addUse(ret)
	}
	return ret
}

func (self *Operand) Owner() *Instr {
	return self.owner
}

func (self *Operand) Get() *Value {
	return self.value
}

// Successor returns the edge this operand is forwarded along, or nil.
func (self *Operand) Successor() *Successor {
	return self.succ
}

// Set points this operand at v, keeping both use lists exact.
func (self *Operand) Set(v *Value) {
	if self.value == v {
		return
	}
	if self.value != nil {
		self.value.removeUse(self)
	}
	if self.value = v; v != nil {
		v.addUse(self)
	}
}

// Number is the position of this operand in Instr.Operands().
func (self *Operand) Number() int {
	for i, p := range self.owner.Operands() {
		if p == self {
			return i
		}
	}
	panic("ir: operand is not owned by its instruction")
}

func (self *Operand) drop() {
	if self.value != nil {
		self.value.removeUse(self)
		self.value = nil
	}
}

// ForwardedIndex is the position of this operand among the forwarded
// operands of its successor edge, or -1 for plain operands.
func (self *Operand) ForwardedIndex() int {
	if self.succ != nil {
		for i, p := range self.succ.operands {
			if p == self {
				return i
			}
		}
	}
	return -1
}
