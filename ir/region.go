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

// Region is an ordered list of blocks, the first one being the entry.
type Region struct {
	Kind   RegionKind
	parent *Instr
	blocks []*Block
}

func NewRegion(kind RegionKind) *Region {
	return &Region{Kind: kind}
}

// Parent returns the instruction owning this region, nil at the top level.
func (self *Region) Parent() *Instr {
	return self.parent
}

// ParentRegion returns the region enclosing the parent instruction.
func (self *Region) ParentRegion() *Region {
	if self.parent == nil {
		return nil
	} else {
		return self.parent.ParentRegion()
	}
}

func (self *Region) Blocks() []*Block {
	return append([]*Block(nil), self.blocks...)
}

func (self *Region) Block(i int) *Block {
	return self.blocks[i]
}

func (self *Region) NumBlocks() int {
	return len(self.blocks)
}

func (self *Region) Empty() bool {
	return len(self.blocks) == 0
}

func (self *Region) HasOneBlock() bool {
	return len(self.blocks) == 1
}

func (self *Region) Entry() *Block {
	if len(self.blocks) == 0 {
		return nil
	} else {
		return self.blocks[0]
	}
}

// HasSSADominance reports whether uses must be dominated by definitions.
func (self *Region) HasSSADominance() bool {
	return self.Kind == CFG
}

// AppendBlock attaches a detached block at the end of the region.
func (self *Region) AppendBlock(bb *Block) {
	self.InsertBlock(len(self.blocks), bb)
}

// InsertBlock attaches a detached block at position i.
func (self *Region) InsertBlock(i int, bb *Block) {
	if bb.region != nil {
		panic("ir: block is already attached to a region")
	}
	self.blocks = append(self.blocks, nil)
	copy(self.blocks[i + 1:], self.blocks[i:])
	self.blocks[i] = bb
	bb.region = self
}

func (self *Region) indexOf(bb *Block) int {
	for i, p := range self.blocks {
		if p == bb {
			return i
		}
	}
	panic("ir: block is not in this region")
}

// IndexOf returns the position of bb in this region.
func (self *Region) IndexOf(bb *Block) int {
	return self.indexOf(bb)
}

func (self *Region) removeBlock(bb *Block) {
	i := self.indexOf(bb)
	copy(self.blocks[i:], self.blocks[i + 1:])
	self.blocks[len(self.blocks) - 1] = nil
	self.blocks = self.blocks[:len(self.blocks) - 1]
	bb.region = nil
}

// IsAncestor reports whether other is this region or is nested in it.
func (self *Region) IsAncestor(other *Region) bool {
	for r := other; r != nil; r = r.ParentRegion() {
		if r == self {
			return true
		}
	}
	return false
}

// FindAncestorBlock returns the block of this region that contains bb,
// directly or through nested regions, or nil.
func (self *Region) FindAncestorBlock(bb *Block) *Block {
	for bb != nil && bb.region != self {
		if ins := bb.ParentInstr(); ins == nil {
			return nil
		} else {
			bb = ins.block
		}
	}
	return bb
}

// FindAncestorInstr returns the instruction of this region that contains
// ins, directly or through nested regions, or nil.
func (self *Region) FindAncestorInstr(ins *Instr) *Instr {
	for ins != nil && ins.ParentRegion() != self {
		ins = ins.ParentInstr()
	}
	return ins
}

// Walk visits every instruction in this region, pre-order.
func (self *Region) Walk(fn func(ins *Instr)) {
	for _, bb := range self.Blocks() {
		for _, ins := range bb.Instrs() {
			ins.Walk(fn)
		}
	}
}

// WalkRegions visits this region and every region nested in it.
func (self *Region) WalkRegions(fn func(r *Region)) {
	fn(self)
	for _, bb := range self.Blocks() {
		for _, ins := range bb.Instrs() {
			for _, r := range ins.regions {
				r.WalkRegions(fn)
			}
		}
	}
}

func (self *Region) dropAllReferences() {
	for _, bb := range self.blocks {
		bb.dropAllReferences()
	}
}

func (self *Region) String() string {
	return newNamer(self).region(self)
}
