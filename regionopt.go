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


// Package regionopt simplifies the structure of nested-region control-flow
// graphs: it removes dead code, unreachable blocks and redundant block
// arguments, merges identical blocks, and moves definitions so that they
// dominate an insertion point.
package regionopt

import (
	"github.com/cloudwego/regionopt/internal/opts"
	"github.com/cloudwego/regionopt/internal/ssa"
	"github.com/cloudwego/regionopt/ir"
)

func rewriter(rw *ir.Rewriter, o *opts.Options) *ir.Rewriter {
	if rw != nil {
		return rw
	} else {
		return ir.NewRewriter(o.Listener)
	}
}

// SimplifyRegions runs unreachable-block elimination, dead-code elimination,
// and unless disabled, identical-block merging and redundant-argument
// elimination over regions once. It reports whether anything changed.
func SimplifyRegions(rw *ir.Rewriter, regions []*ir.Region, options ...Option) bool {
	o := buildOptions(options)
	return ssa.Simplify(rewriter(rw, &o), regions, &o)
}

// SimplifyToFixedPoint repeats SimplifyRegions until nothing changes or the
// iteration limit is hit.
func SimplifyToFixedPoint(rw *ir.Rewriter, regions []*ir.Region, options ...Option) bool {
	o := buildOptions(options)
	return ssa.SimplifyToFixedPoint(rewriter(rw, &o), regions, &o)
}

// EraseUnreachableBlocks erases the blocks that can not be reached from the
// entry of their region, in regions and everything nested in them.
func EraseUnreachableBlocks(rw *ir.Rewriter, regions []*ir.Region, options ...Option) bool {
	o := buildOptions(options)
	return ssa.EraseUnreachableBlocks(rewriter(rw, &o), regions)
}

// RunRegionDCE erases the instructions, forwarded operands and block
// arguments that do not contribute to any observable effect.
func RunRegionDCE(rw *ir.Rewriter, regions []*ir.Region, options ...Option) bool {
	o := buildOptions(options)
	return ssa.RunRegionDCE(rewriter(rw, &o), regions, o.RemovalOracle(), o.BranchOracle())
}

// MergeIdenticalBlocks merges structurally identical blocks with the same
// successors.
func MergeIdenticalBlocks(rw *ir.Rewriter, regions []*ir.Region, options ...Option) bool {
	o := buildOptions(options)
	return ssa.MergeIdenticalBlocks(rewriter(rw, &o), regions, o.BranchOracle())
}

// DropRedundantArguments removes block arguments that receive the same value
// along every incoming edge.
func DropRedundantArguments(rw *ir.Rewriter, regions []*ir.Region, options ...Option) bool {
	o := buildOptions(options)
	return ssa.DropRedundantArguments(rewriter(rw, &o), regions, o.BranchOracle())
}

// NewDominance returns the default dominance oracle. It caches the dominator
// tree of every region it is asked about, so it must be discarded once the
// control flow changes.
func NewDominance() ir.Dominance {
	return ssa.NewDominance()
}

// MoveOperationDependencies moves everything op depends on right before ip.
// A nil dom uses NewDominance. A rejection returns a *MatchFailure.
func MoveOperationDependencies(rw *ir.Rewriter, op *ir.Instr, ip *ir.Instr, dom ir.Dominance) error {
	return ssa.MoveOperationDependencies(rewriter(rw, &opts.Options{}), op, ip, dom)
}

// MoveValueDefinitions moves the definitions of values, and what they depend
// on, right before ip. A nil dom uses NewDominance. A rejection returns a
// *MatchFailure.
func MoveValueDefinitions(rw *ir.Rewriter, values []*ir.Value, ip *ir.Instr, dom ir.Dominance) error {
	return ssa.MoveValueDefinitions(rewriter(rw, &opts.Options{}), values, ip, dom)
}

// ReplaceAllUsesInRegionWith replaces the uses of orig nested in r with repl.
func ReplaceAllUsesInRegionWith(orig *ir.Value, repl *ir.Value, r *ir.Region) {
	ssa.ReplaceAllUsesInRegionWith(ir.NewRewriter(nil), orig, repl, r)
}

// VisitUsedValuesDefinedAbove calls fn on every operand nested in r that
// uses a value defined outside of limit.
func VisitUsedValuesDefinedAbove(r *ir.Region, limit *ir.Region, fn func(u *ir.Operand)) {
	ssa.VisitUsedValuesDefinedAbove(r, limit, fn)
}

// GetUsedValuesDefinedAbove returns the values used inside regions but
// defined outside of them, without duplicates.
func GetUsedValuesDefinedAbove(regions ...*ir.Region) []*ir.Value {
	return ssa.GetUsedValuesDefinedAbove(regions...)
}

// MakeRegionIsolatedFromAbove rewrites r so that it no longer uses values
// defined outside of it. Definitions accepted by clone are cloned into the
// region, the other values become new entry block arguments and are
// returned.
func MakeRegionIsolatedFromAbove(rw *ir.Rewriter, r *ir.Region, clone func(*ir.Instr) bool) []*ir.Value {
	if clone == nil {
		clone = func(*ir.Instr) bool { return false }
	}
	return ssa.MakeRegionIsolatedFromAbove(rewriter(rw, &opts.Options{}), r, clone)
}

// Verify checks the structural invariants of r and everything nested in it.
func Verify(r *ir.Region) error {
	return ir.Verify(r)
}
