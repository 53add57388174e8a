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

// Listener observes the mutations performed through a Rewriter.
type Listener interface {
	NotifyErased(ins *Instr)
	NotifyBlockErased(bb *Block)
	NotifyMoved(ins *Instr)
	NotifyReplaced(from *Value, to *Value)
	NotifyArgumentErased(bb *Block, i int)
	NotifyModified(ins *Instr)
	NotifyMatchFailure(ins *Instr, reason string)
}

// BaseListener ignores every notification, embed it to override only some.
type BaseListener struct{}

func (BaseListener) NotifyErased(*Instr)                {}
func (BaseListener) NotifyBlockErased(*Block)           {}
func (BaseListener) NotifyMoved(*Instr)                 {}
func (BaseListener) NotifyReplaced(*Value, *Value)      {}
func (BaseListener) NotifyArgumentErased(*Block, int)   {}
func (BaseListener) NotifyModified(*Instr)              {}
func (BaseListener) NotifyMatchFailure(*Instr, string)  {}

// Rewriter is the mutation surface of the engine. Every primitive keeps the
// use lists and the operand references exact inverses of each other.
type Rewriter struct {
	Builder
	Listener Listener
}

// NewRewriter creates a rewriter reporting to l, which may be nil.
func NewRewriter(l Listener) *Rewriter {
	return &Rewriter{Listener: l}
}

// EraseOp erases an instruction whose results have no uses left.
func (self *Rewriter) EraseOp(ins *Instr) {
	if ins.HasUses() {
		panic("ir: erasing an instruction that still has uses: " + ins.Op)
	}
	if self.before == ins {
		self.before = nil
	}
	if self.Listener != nil {
		self.Listener.NotifyErased(ins)
	}
	ins.DropAllReferences()
	ins.block.remove(ins)
}

// EraseBlock erases a block that is no longer targeted by any edge and whose
// values are not used outside of it.
func (self *Rewriter) EraseBlock(bb *Block) {
	if bb.HasUses() {
		panic("ir: erasing a block that still has predecessors")
	}

	/* detach everything the block references */
	bb.dropAllReferences()
	for _, v := range bb.args {
		if v.HasUses() {
			panic("ir: erasing a block whose arguments still have uses")
		}
	}
	for _, ins := range bb.instrs {
		if ins.HasUses() {
			panic("ir: erasing a block whose values still have uses")
		}
	}

	/* notify the listener before unlinking */
	if self.Listener != nil {
		self.Listener.NotifyBlockErased(bb)
	}
	if self.block == bb {
		self.ClearInsertionPoint()
	}
	bb.region.removeBlock(bb)
}

// EraseArgument erases the i-th argument of bb, which must be unused.
func (self *Rewriter) EraseArgument(bb *Block, i int) {
	if self.Listener != nil {
		self.Listener.NotifyArgumentErased(bb, i)
	}
	bb.EraseArgument(i)
}

// ReplaceAllUsesWith points every use of from at to.
func (self *Rewriter) ReplaceAllUsesWith(from *Value, to *Value) {
	if from != to {
		if self.Listener != nil {
			self.Listener.NotifyReplaced(from, to)
		}
		from.ReplaceAllUsesWith(to)
	}
}

// ReplaceUsesWithIf points the uses of from accepted by fn at to.
func (self *Rewriter) ReplaceUsesWithIf(from *Value, to *Value, fn func(u *Operand) bool) {
	if from == to {
		return
	}
	ok := false
	for _, u := range from.Uses() {
		if fn(u) {
			ok = true
			u.Set(to)
		}
	}
	if ok && self.Listener != nil {
		self.Listener.NotifyReplaced(from, to)
	}
}

// ReplaceAllUsesInRegionWith replaces the uses of from that are nested
// anywhere inside r.
func (self *Rewriter) ReplaceAllUsesInRegionWith(from *Value, to *Value, r *Region) {
	self.ReplaceUsesWithIf(from, to, func(u *Operand) bool {
		return r.IsAncestor(u.owner.ParentRegion())
	})
}

// ReplaceBlockUsesWith retargets every edge pointing at from to to.
func (self *Rewriter) ReplaceBlockUsesWith(from *Block, to *Block) {
	if from == to {
		return
	}
	if self.Listener != nil {
		for _, s := range from.Predecessors() {
			self.Listener.NotifyModified(s.Owner())
		}
	}
	from.ReplaceAllUsesWith(to)
}

// MoveOpBefore unlinks ins and reinserts it right before at.
func (self *Rewriter) MoveOpBefore(ins *Instr, at *Instr) {
	if ins == at {
		return
	}
	if self.before == ins {
		self.before = nil
	}
	ins.block.remove(ins)
	at.block.InsertBefore(ins, at)
	if self.Listener != nil {
		self.Listener.NotifyMoved(ins)
	}
}

// CreateBlock creates a block with the given argument types at position at
// of r, and moves the insertion point to its end.
func (self *Rewriter) CreateBlock(r *Region, at int, types ...Type) *Block {
	bb := NewBlock(types...)
	r.InsertBlock(at, bb)
	self.SetInsertionPointToEnd(bb)
	return bb
}

// AppendForwarded forwards more values along the edge s.
func (self *Rewriter) AppendForwarded(s *Successor, vals ...*Value) {
	if len(vals) == 0 {
		return
	}
	s.Append(vals...)
	if self.Listener != nil {
		self.Listener.NotifyModified(s.Owner())
	}
}

// EraseForwarded removes the i-th forwarded operand of the edge s.
func (self *Rewriter) EraseForwarded(s *Successor, i int) {
	s.Erase(i)
	if self.Listener != nil {
		self.Listener.NotifyModified(s.Owner())
	}
}

// MergeBlocks moves every instruction of src to the end of dst, replacing
// the arguments of src with args, then erases src. The source block must
// have no predecessors.
func (self *Rewriter) MergeBlocks(src *Block, dst *Block, args []*Value) {
	if len(args) != len(src.args) {
		panic("ir: argument count mismatch while merging blocks")
	}
	if src.HasUses() {
		panic("ir: merging a block that still has predecessors")
	}

	/* replace the arguments */
	for i, v := range src.args {
		self.ReplaceAllUsesWith(v, args[i])
	}

	/* move the instructions */
	for _, ins := range src.Instrs() {
		src.remove(ins)
		dst.Append(ins)
	}

	/* the source block is empty now */
	self.EraseBlock(src)
}

// NotifyMatchFailure reports that a transformation rejected ins.
func (self *Rewriter) NotifyMatchFailure(ins *Instr, reason string) {
	if self.Listener != nil {
		self.Listener.NotifyMatchFailure(ins, reason)
	}
}

// Mapping remembers which values and blocks have been substituted for which
// while cloning.
type Mapping struct {
	values map[*Value]*Value
	blocks map[*Block]*Block
}

func NewMapping() *Mapping {
	return &Mapping {
		values: make(map[*Value]*Value),
		blocks: make(map[*Block]*Block),
	}
}

func (self *Mapping) Map(from *Value, to *Value) {
	self.values[from] = to
}

func (self *Mapping) MapBlock(from *Block, to *Block) {
	self.blocks[from] = to
}

func (self *Mapping) Contains(v *Value) bool {
	_, ok := self.values[v]
	return ok
}

// Lookup returns the substitute of v, or v itself when it is not mapped.
func (self *Mapping) Lookup(v *Value) *Value {
	if p, ok := self.values[v]; ok {
		return p
	} else {
		return v
	}
}

// LookupBlock returns the substitute of bb, or bb itself.
func (self *Mapping) LookupBlock(bb *Block) *Block {
	if p, ok := self.blocks[bb]; ok {
		return p
	} else {
		return bb
	}
}

// Clone deep-copies ins, substituting operands and successor targets through
// m, and inserts the copy at the insertion point. The results of ins are
// mapped to the results of the copy.
func (self *Rewriter) Clone(ins *Instr, m *Mapping) *Instr {
	if m == nil {
		m = NewMapping()
	}
	ret := cloneInstr(ins, m)
	fixupCloned(ret, m)
	return self.Insert(ret)
}

func cloneInstr(ins *Instr, m *Mapping) *Instr {
	st := State {
		Op     : ins.Op,
		Loc    : ins.Loc,
		Traits : ins.Traits,
		Attrs  : ins.Attrs,
		Results: ins.ResultTypes(),
	}

	/* plain operands */
	for _, p := range ins.operands {
		st.Operands = append(st.Operands, m.Lookup(p.value))
	}

	/* nested regions, blocks first so that edges can be remapped */
	for _, r := range ins.regions {
		st.Regions = append(st.Regions, cloneRegion(r, m))
	}

	/* successor edges */
	for _, s := range ins.succs {
		e := Edge{Target: m.LookupBlock(s.target)}
		for _, p := range s.operands {
			e.Args = append(e.Args, m.Lookup(p.value))
		}
		st.Successors = append(st.Successors, e)
	}

	/* map the results */
	ret := Create(st)
	for i, v := range ins.results {
		m.Map(v, ret.results[i])
	}
	return ret
}

func cloneRegion(r *Region, m *Mapping) *Region {
	ret := NewRegion(r.Kind)

	/* create the blocks and their arguments */
	for _, bb := range r.blocks {
		nb := NewBlock(bb.ArgumentTypes()...)
		ret.AppendBlock(nb)
		m.MapBlock(bb, nb)
		for i, v := range bb.args {
			m.Map(v, nb.args[i])
		}
	}

	/* then the instructions */
	for _, bb := range r.blocks {
		nb := m.LookupBlock(bb)
		for _, ins := range bb.instrs {
			nb.Append(cloneInstr(ins, m))
		}
	}
	return ret
}

// fixupCloned resolves operands that referred to values cloned after their
// users, which graph regions allow.
func fixupCloned(ins *Instr, m *Mapping) {
	ins.Walk(func(p *Instr) {
		for _, u := range p.Operands() {
			if u.value != nil {
				u.Set(m.Lookup(u.value))
			}
		}
	})
}
