// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package cmdutil

import (
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
	"github.com/xdsl-smt/xdsl-smt-go/internal/lower/tosmt"
)

// loweringResult carries one of the two independent lowering outcomes back
// across the result channel.
type loweringResult struct {
	side   int
	module *ir.Module
	err    error
}

// ParallelLower lowers before and after under the same type-lowering
// policy as two independent, read-only runs dispatched concurrently: this
// is cmd/xdsl-tv's use of the pattern, since the two functions share no
// state until function_refinement combines their already-lowered results.
func ParallelLower(before, after *ir.Module, lowerer tosmt.TypeLowerer) (*ir.Module, *ir.Module, error) {
	c := make(chan loweringResult, 2)

	go func(side int, src *ir.Module) {
		m, err := tosmt.Lower(src, lowerer)
		c <- loweringResult{side, m, err}
	}(0, before)

	go func(side int, src *ir.Module) {
		m, err := tosmt.Lower(src, lowerer)
		c <- loweringResult{side, m, err}
	}(1, after)

	var results [2]*ir.Module

	var firstErr error

	for i := 0; i < 2; i++ {
		r := <-c
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}

		results[r.side] = r.module
	}

	if firstErr != nil {
		return nil, nil, firstErr
	}

	return results[0], results[1], nil
}
