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

// EffectOracle classifies the side effects of a single instruction, not
// counting the instructions nested inside it.
type EffectOracle interface {
	HasEffect(ins *Instr) bool
}

// RemovalOracle decides whether an instruction may be erased once its
// results are unused.
type RemovalOracle interface {
	IsTriviallyRemovable(ins *Instr) bool
}

// BranchOracle decides whether the forwarded operands of a terminator may be
// appended to or erased.
type BranchOracle interface {
	IsBranch(ins *Instr) bool
}

// Dominance answers dominance queries. Instructions and blocks nested in
// other regions are compared through their ancestors.
type Dominance interface {
	Dominates(a *Block, b *Block) bool
	ProperlyDominates(a *Instr, b *Instr) bool
	ValueProperlyDominates(v *Value, ins *Instr) bool
}

// TraitOracle reads the answers from the trait flags of the instructions.
type TraitOracle struct{}

// Traits is the default oracle for effects, removability and branches.
var Traits TraitOracle

func (TraitOracle) HasEffect(ins *Instr) bool {
	return !ins.Traits.Has(Pure)
}

func (TraitOracle) IsBranch(ins *Instr) bool {
	return ins.Traits.Has(Terminator | Branch)
}

func (self TraitOracle) IsTriviallyRemovable(ins *Instr) bool {
	return EffectRemoval{self}.IsTriviallyRemovable(ins)
}

// EffectRemoval allows erasing non-terminators without a NoRemove trait that
// have no observable effect according to Effects.
type EffectRemoval struct {
	Effects EffectOracle
}

func (self EffectRemoval) IsTriviallyRemovable(ins *Instr) bool {
	return !ins.IsTerminator() && !ins.Traits.Has(NoRemove) && !HasObservableEffect(ins, self.Effects)
}

// HasObservableEffect reports whether ins or anything nested in it has an
// effect. Terminators of nested regions only transfer control.
func HasObservableEffect(ins *Instr, eff EffectOracle) bool {
	if eff.HasEffect(ins) {
		return true
	}
	for _, r := range ins.regions {
		for _, bb := range r.blocks {
			for _, p := range bb.instrs {
				if !p.IsTerminator() && HasObservableEffect(p, eff) {
					return true
				}
			}
		}
	}
	return false
}
