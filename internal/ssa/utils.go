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
    `github.com/oleiade/lane`

    `github.com/cloudwego/regionopt/ir`
)

func stacknew(v interface{}) (r *lane.Stack) {
    r = lane.NewStack()
    r.Push(v)
    return
}

func regionstack(regions []*ir.Region) (r *lane.Stack) {
    r = lane.NewStack()
    for i := len(regions) - 1; i >= 0; i-- { r.Push(regions[i]) }
    return
}

func nestedregions(bb *ir.Block) (r []*ir.Region) {
    for _, ins := range bb.Instrs() {
        r = append(r, ins.Regions()...)
    }
    return
}

func forwarded(u *ir.Operand) (*ir.Value, bool) {
    if i := u.ForwardedIndex(); i < 0 {
        return nil, false
    } else {
        return u.Successor().Target().Argument(i), true
    }
}
