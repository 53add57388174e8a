/*
 * Copyright 2022 ByteDance Inc.
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


package ssa

import (
    `sync/atomic`

    `github.com/cloudwego/regionopt/ir`
)

var (
    ErasedOps    uint64
    ErasedBlocks uint64
    ErasedArgs   uint64
    MergedBlocks uint64
    MovedOps     uint64
    Rejections   uint64
)

func eraseOp(rw *ir.Rewriter, ins *ir.Instr) {
    rw.EraseOp(ins)
    atomic.AddUint64(&ErasedOps, 1)
}

func eraseBlock(rw *ir.Rewriter, bb *ir.Block) {
    rw.EraseBlock(bb)
    atomic.AddUint64(&ErasedBlocks, 1)
}

func eraseArgument(rw *ir.Rewriter, bb *ir.Block, i int) {
    rw.EraseArgument(bb, i)
    atomic.AddUint64(&ErasedArgs, 1)
}

func moveOpBefore(rw *ir.Rewriter, ins *ir.Instr, at *ir.Instr) {
    rw.MoveOpBefore(ins, at)
    atomic.AddUint64(&MovedOps, 1)
}
