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
	"strconv"
	"strings"
)

type _Namer struct {
	values map[*Value]int
	blocks map[*Block]int
}

func newNamer(r *Region) *_Namer {
	ret := &_Namer {
		values: make(map[*Value]int),
		blocks: make(map[*Block]int),
	}
	if r != nil {
		ret.number(r)
	}
	return ret
}

func (self *_Namer) number(r *Region) {
	for _, bb := range r.blocks {
		self.blocks[bb] = len(self.blocks)
		for _, v := range bb.args {
			self.values[v] = len(self.values)
		}
		for _, ins := range bb.instrs {
			for _, v := range ins.results {
				self.values[v] = len(self.values)
			}
			for _, nr := range ins.regions {
				self.number(nr)
			}
		}
	}
}

func (self *_Namer) value(v *Value) string {
	if v == nil {
		return "<nil>"
	} else if id, ok := self.values[v]; ok {
		return "%" + strconv.Itoa(id)
	} else {
		return "%?"
	}
}

func (self *_Namer) blockRef(bb *Block) string {
	if bb == nil {
		return "<nil>"
	} else if id, ok := self.blocks[bb]; ok {
		return "^bb" + strconv.Itoa(id)
	} else {
		return "^bb?"
	}
}

func (self *_Namer) values2str(vals []*Value) string {
	ret := make([]string, len(vals))
	for i, v := range vals {
		ret[i] = self.value(v)
	}
	return strings.Join(ret, ", ")
}

func (self *_Namer) instr(ins *Instr) string {
	var sb strings.Builder
	self.writeInstr(&sb, ins, 0)
	return sb.String()
}

func (self *_Namer) block(bb *Block) string {
	var sb strings.Builder
	self.writeBlock(&sb, bb, 0)
	return sb.String()
}

func (self *_Namer) region(r *Region) string {
	var sb strings.Builder
	self.writeRegion(&sb, r, 0)
	return sb.String()
}

func (self *_Namer) writeRegion(sb *strings.Builder, r *Region, indent int) {
	for i, bb := range r.blocks {
		if i != 0 {
			sb.WriteByte('\n')
		}
		self.writeBlock(sb, bb, indent)
	}
}

func (self *_Namer) writeBlock(sb *strings.Builder, bb *Block, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(self.blockRef(bb))

	/* block arguments */
	if len(bb.args) != 0 {
		args := make([]string, len(bb.args))
		for i, v := range bb.args {
			args[i] = self.value(v) + ": " + v.typ.String()
		}
		sb.WriteString("(" + strings.Join(args, ", ") + ")")
	}

	/* instructions */
	sb.WriteString(":")
	for _, ins := range bb.instrs {
		sb.WriteByte('\n')
		self.writeInstr(sb, ins, indent + 1)
	}
}

func (self *_Namer) writeInstr(sb *strings.Builder, ins *Instr, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))

	/* results */
	if len(ins.results) != 0 {
		sb.WriteString(self.values2str(ins.results))
		sb.WriteString(" = ")
	}

	/* opcode and plain operands */
	sb.WriteString(ins.Op)
	if len(ins.operands) != 0 {
		vals := make([]*Value, len(ins.operands))
		for i, p := range ins.operands {
			vals[i] = p.value
		}
		sb.WriteString(" " + self.values2str(vals))
	}

	/* successor edges */
	if len(ins.succs) != 0 {
		edges := make([]string, len(ins.succs))
		for i, s := range ins.succs {
			if edges[i] = self.blockRef(s.target); len(s.operands) != 0 {
				edges[i] += "(" + self.values2str(s.Forwarded()) + ")"
			}
		}
		sb.WriteString(" [" + strings.Join(edges, ", ") + "]")
	}

	/* attributes */
	if len(ins.Attrs) != 0 {
		attrs := make([]string, len(ins.Attrs))
		for i, a := range ins.Attrs {
			attrs[i] = a.String()
		}
		sb.WriteString(" {" + strings.Join(attrs, ", ") + "}")
	}

	/* nested regions */
	for _, r := range ins.regions {
		sb.WriteString(" (\n")
		self.writeRegion(sb, r, indent + 1)
		sb.WriteString("\n" + strings.Repeat("  ", indent) + ")")
	}

	/* result types */
	if len(ins.results) != 0 {
		types := make([]string, len(ins.results))
		for i, v := range ins.results {
			types[i] = v.typ.String()
		}
		sb.WriteString(" : " + strings.Join(types, ", "))
	}
}
