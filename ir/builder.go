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

// Builder inserts newly created instructions at an insertion point: either
// before a given instruction or at the end of a block.
type Builder struct {
	block  *Block
	before *Instr
}

// NewBuilder creates a builder that appends to bb.
func NewBuilder(bb *Block) *Builder {
	ret := new(Builder)
	ret.SetInsertionPointToEnd(bb)
	return ret
}

func (self *Builder) SetInsertionPointToEnd(bb *Block) {
	self.block = bb
	self.before = nil
}

func (self *Builder) SetInsertionPointToStart(bb *Block) {
	self.block = bb
	self.before = bb.Front()
}

// SetInsertionPoint makes the builder insert right before ins.
func (self *Builder) SetInsertionPoint(ins *Instr) {
	self.block = ins.block
	self.before = ins
}

// ClearInsertionPoint makes Insert a no-op, instructions stay detached.
func (self *Builder) ClearInsertionPoint() {
	self.block = nil
	self.before = nil
}

func (self *Builder) InsertionBlock() *Block {
	return self.block
}

// Insert places a detached instruction at the insertion point.
func (self *Builder) Insert(ins *Instr) *Instr {
	if self.block != nil {
		if self.before == nil {
			self.block.Append(ins)
		} else {
			self.block.InsertBefore(ins, self.before)
		}
	}
	return ins
}

// Create builds an instruction from st and inserts it.
func (self *Builder) Create(st State) *Instr {
	return self.Insert(Create(st))
}
