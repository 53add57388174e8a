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


package debug

import (
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"

	"github.com/cloudwego/regionopt/internal/ssa"
	"github.com/cloudwego/regionopt/ir"
)

// A Stats records statistics about the transformations performed so far.
type Stats struct {
	Erased   EraseStats
	Merged   int
	Moved    int
	Rejected int
}

// An EraseStats records how many entities have been erased.
type EraseStats struct {
	Instrs    int
	Blocks    int
	Arguments int
}

// GetStats returns statistics of the engine, accumulated over the process.
func GetStats() Stats {
	return Stats{
		Erased: EraseStats{
			Instrs:    int(atomic.LoadUint64(&ssa.ErasedOps)),
			Blocks:    int(atomic.LoadUint64(&ssa.ErasedBlocks)),
			Arguments: int(atomic.LoadUint64(&ssa.ErasedArgs)),
		},
		Merged:   int(atomic.LoadUint64(&ssa.MergedBlocks)),
		Moved:    int(atomic.LoadUint64(&ssa.MovedOps)),
		Rejected: int(atomic.LoadUint64(&ssa.Rejections)),
	}
}

var _Config = spew.ConfigState{
	Indent:                  "    ",
	SortKeys:                true,
	DisablePointerMethods:   true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
}

// Dump renders r in its textual form.
func Dump(r *ir.Region) string {
	return r.String()
}

// DumpStats renders the current statistics.
func DumpStats() string {
	return _Config.Sdump(GetStats())
}
