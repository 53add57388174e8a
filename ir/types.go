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
	"strings"
)

// Type is an opaque, comparable type name. The engine never looks inside a
// type, it only compares them.
type Type string

func (self Type) String() string {
	return string(self)
}

// Attr is a named attribute attached to an instruction. Attributes are part
// of the structural identity of an instruction, locations are not.
type Attr struct {
	Name  string
	Value string
}

func (self Attr) String() string {
	return self.Name + " = " + self.Value
}

// Trait describes the static properties of an instruction.
type Trait uint32

const (
	// Terminator marks the last instruction of a block.
	Terminator Trait = 1 << iota

	// Branch marks a terminator whose forwarded operands may be appended to
	// or erased by the engine.
	Branch

	// Pure marks an instruction without observable effects.
	Pure

	// NoRemove vetoes the removal of an otherwise effect-free instruction.
	NoRemove
)

func (self Trait) Has(t Trait) bool {
	return self & t == t
}

func (self Trait) String() string {
	var ret []string
	if self.Has(Terminator) { ret = append(ret, "terminator") }
	if self.Has(Branch)     { ret = append(ret, "branch") }
	if self.Has(Pure)       { ret = append(ret, "pure") }
	if self.Has(NoRemove)   { ret = append(ret, "noremove") }
	return strings.Join(ret, "|")
}

// RegionKind selects the dominance discipline of a region.
type RegionKind uint8

const (
	// CFG regions hold an arbitrary graph of blocks, every use must be
	// dominated by its definition.
	CFG RegionKind = iota

	// Graph regions hold exactly one block and allow cyclic use-def chains.
	Graph
)

func (self RegionKind) String() string {
	switch self {
		case CFG   : return "cfg"
		case Graph : return "graph"
		default    : panic("unreachable")
	}
}
