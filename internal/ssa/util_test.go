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
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/cloudwego/regionopt/internal/emu`
    `github.com/cloudwego/regionopt/internal/opts`
    `github.com/cloudwego/regionopt/ir`
)

func newrw() *ir.Rewriter {
    return ir.NewRewriter(nil)
}

func defaultOptions() *opts.Options {
    o := opts.GetDefaultOptions()
    o.DebugTrace = false
    return &o
}

func verify(t *testing.T, r *ir.Region) {
    t.Helper()
    require.NoError(t, ir.Verify(r), r.String())
}

// dominated checks that every operand in r is dominated by its definition.
func dominated(t *testing.T, r *ir.Region) {
    t.Helper()
    dom := NewDominance()
    r.Walk(func(ins *ir.Instr) {
        for _, u := range ins.Operands() {
            require.True(t, dom.ValueProperlyDominates(u.Get(), ins), "%s does not dominate %s\n%s", u.Get(), ins, r)
        }
    })
}

// execute runs r and returns the returned values followed by the trace.
func execute(t *testing.T, r *ir.Region, args ...int64) ([]int64, []int64) {
    t.Helper()
    ret, trace, err := emu.Run(r, args...)
    require.NoError(t, err)
    return ret, trace
}
