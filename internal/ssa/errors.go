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
    `fmt`
    `sync/atomic`

    `github.com/cloudwego/regionopt/ir`
)

// MatchFailure is returned when a transformation refuses to touch the
// graph. Nothing has been mutated when it is returned.
type MatchFailure struct {
    Op     *ir.Instr
    Reason string
}

func (self *MatchFailure) Error() string {
    if self.Op == nil {
        return "match failure: " + self.Reason
    } else {
        return fmt.Sprintf("match failure on %q: %s", self.Op.Op, self.Reason)
    }
}

func reject(rw *ir.Rewriter, op *ir.Instr, reason string) error {
    rw.NotifyMatchFailure(op, reason)
    atomic.AddUint64(&Rejections, 1)
    return &MatchFailure{Op: op, Reason: reason}
}
