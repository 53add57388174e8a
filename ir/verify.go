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

import (
	"fmt"
)

// VerifyError describes the first structural invariant violated by a region.
type VerifyError struct {
	Block  *Block
	Instr  *Instr
	Reason string
}

func (self *VerifyError) Error() string {
	if self.Instr != nil {
		return fmt.Sprintf("ir: %s: %s", self.Reason, self.Instr.Op)
	} else if self.Block != nil {
		return fmt.Sprintf("ir: %s: %s", self.Reason, self.Block.rootRegionName())
	} else {
		return "ir: " + self.Reason
	}
}

func (self *Block) rootRegionName() string {
	return newNamer(self.rootRegion()).blockRef(self)
}

// Verify checks the structure of r and of every region nested in it.
func Verify(r *Region) error {
	var err error
	r.WalkRegions(func(p *Region) {
		if err == nil {
			err = verifyRegion(p)
		}
	})
	return err
}

func verifyRegion(r *Region) error {
	if r.Kind == Graph && len(r.blocks) > 1 {
		return &VerifyError{Reason: "graph region with more than one block"}
	}

	/* check every block */
	for _, bb := range r.blocks {
		if bb.region != r {
			return &VerifyError{Block: bb, Reason: "block has a wrong parent region"}
		}
		if err := verifyBlock(bb); err != nil {
			return err
		}
	}
	return nil
}

func verifyBlock(bb *Block) error {
	if len(bb.instrs) == 0 || !bb.instrs[len(bb.instrs) - 1].IsTerminator() {
		return &VerifyError{Block: bb, Reason: "block does not end with a terminator"}
	}

	/* block arguments */
	for i, v := range bb.args {
		if v.owner != bb || v.index != i {
			return &VerifyError{Block: bb, Reason: "block argument has a wrong owner"}
		}
		if err := verifyUses(v); err != nil {
			return err
		}
	}

	/* incoming edges */
	for _, s := range bb.uses {
		if s.target != bb {
			return &VerifyError{Block: bb, Reason: "stale predecessor edge"}
		}
		if s.owner.block == nil || s.owner.block.region != bb.region {
			return &VerifyError{Block: bb, Reason: "predecessor edge from another region"}
		}
	}

	/* instructions */
	for i, ins := range bb.instrs {
		if ins.block != bb {
			return &VerifyError{Instr: ins, Reason: "instruction has a wrong parent block"}
		}
		if ins.IsTerminator() && i != len(bb.instrs) - 1 {
			return &VerifyError{Instr: ins, Reason: "terminator in the middle of a block"}
		}
		if err := verifyInstr(ins); err != nil {
			return err
		}
	}
	return nil
}

func verifyInstr(ins *Instr) error {
	if len(ins.succs) != 0 && !ins.IsTerminator() {
		return &VerifyError{Instr: ins, Reason: "successor edges on a non-terminator"}
	}

	/* operands must be registered in the use lists */
	for _, u := range ins.Operands() {
		if u.value == nil {
			return &VerifyError{Instr: ins, Reason: "dangling operand"}
		}
		if u.owner != ins || !hasUse(u.value, u) {
			return &VerifyError{Instr: ins, Reason: "operand missing from the use list of its value"}
		}
		if u.value.ParentBlock() == nil {
			return &VerifyError{Instr: ins, Reason: "operand refers to a detached value"}
		}
	}

	/* successor edges */
	for i, s := range ins.succs {
		if s.owner != ins || s.index != i {
			return &VerifyError{Instr: ins, Reason: "successor edge has a wrong owner"}
		}
		if s.target == nil || s.target.region != ins.block.region {
			return &VerifyError{Instr: ins, Reason: "successor outside of the region"}
		}
		if len(s.operands) != len(s.target.args) {
			return &VerifyError{Instr: ins, Reason: "forwarded operand count mismatch"}
		}
		for j, p := range s.operands {
			if p.value.typ != s.target.args[j].typ {
				return &VerifyError{Instr: ins, Reason: "forwarded operand type mismatch"}
			}
		}
	}

	/* results and nested regions */
	for i, v := range ins.results {
		if v.def != ins || v.index != i {
			return &VerifyError{Instr: ins, Reason: "result has a wrong definition"}
		}
		if err := verifyUses(v); err != nil {
			return err
		}
	}
	for _, r := range ins.regions {
		if r.parent != ins {
			return &VerifyError{Instr: ins, Reason: "region has a wrong parent"}
		}
	}
	return nil
}

func verifyUses(v *Value) error {
	for _, u := range v.uses {
		if u.value != v {
			return &VerifyError{Instr: u.owner, Reason: "stale use"}
		}
		if u.owner.block == nil {
			return &VerifyError{Instr: u.owner, Reason: "use by a detached instruction"}
		}
	}
	return nil
}

func hasUse(v *Value, u *Operand) bool {
	for _, p := range v.uses {
		if p == u {
			return true
		}
	}
	return false
}
