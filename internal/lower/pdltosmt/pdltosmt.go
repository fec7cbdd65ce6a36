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

// Package pdltosmt lowers a module of pdl.pattern rewrite rules into a
// single SMT-LIB query per pattern, proving (or disproving) its soundness:
// every precondition gathered while matching, conjoined with the
// distinctness of the rewritten and original values, must be unsatisfiable
// for the rule to be sound. Each PDL op kind is rewritten by its own
// internal/rewrite.Pattern, run to a fixed point directly over the
// pattern's own nested region by internal/rewrite.Apply, mirroring the
// source's GreedyRewritePatternApplier/PatternRewriteWalker composition one
// pattern class at a time.
package pdltosmt

import (
	"errors"
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/bv"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/smt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
	"github.com/xdsl-smt/xdsl-smt-go/internal/lower/tosmt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/rewrite"
)

// ErrUnsupported reports a PDL construct this pass does not (yet) encode,
// mirroring the source's own "Cannot handle ..." exceptions.
var ErrUnsupported = errors.New("pdltosmt: unsupported construct")

// loweringContext is the shared, per-module state threaded through every
// pattern below, standing in for the source's PDLToSMTRewriteContext: types
// and values carries the concrete stand-in for every erased pdl.type/
// pdl.operand/pdl.result/pdl.df.get value seen so far, opResults carries the
// lowered result values of every matched-or-constructed pdl.operation, and
// preconditions accumulates the side conditions dataflow facts impose.
type loweringContext struct {
	arena   *ir.Arena
	lowerer tosmt.TypeLowerer

	types     map[ir.ValueID]ir.Type
	values    map[ir.ValueID]ir.Value
	attrs     map[ir.ValueID]ir.Attribute
	opResults map[ir.ValueID][]ir.Value

	Preconditions []ir.Value
}

// Lower rewrites src, a module whose top-level statements are all
// pdl.pattern ops, into a fresh module of one smt.assert/smt.check_sat
// script per pattern, in order.
func Lower(src *ir.Module, lowerer tosmt.TypeLowerer) (*ir.Module, error) {
	arena := src.Arena
	region := ir.NewRegion(arena, nil)
	entry := ir.NewBlock(arena, region)
	region.Blocks = append(region.Blocks, entry)

	for _, op := range src.Entry().Ops {
		if op.Name != "pdl.pattern" {
			return nil, fmt.Errorf("%w: top-level op %q is not a pdl.pattern", ErrUnsupported, op.Name)
		}

		stmts, err := lowerPattern(arena, op, lowerer)
		if err != nil {
			return nil, err
		}

		for _, s := range stmts {
			entry.Ops = append(entry.Ops, s)
			s.Parent = entry
		}
	}

	return &ir.Module{Arena: arena, Region: region}, nil
}

// lowerPattern runs the full pattern set to a fixed point directly over
// pattern's own nested region, then appends the closing check-sat the
// source's own PatternRewrite emits in place of the now-erased pdl.pattern.
func lowerPattern(arena *ir.Arena, pattern *ir.Op, lowerer tosmt.TypeLowerer) ([]*ir.Op, error) {
	block := pattern.Region(0).Blocks[0]

	scratchRegion := ir.NewRegion(arena, nil)
	scratchRegion.Blocks = []*ir.Block{block}
	scratch := &ir.Module{Arena: arena, Region: scratchRegion}

	ctx := &loweringContext{
		arena:     arena,
		lowerer:   lowerer,
		types:     map[ir.ValueID]ir.Type{},
		values:    map[ir.ValueID]ir.Value{},
		attrs:     map[ir.ValueID]ir.Attribute{},
		opResults: map[ir.ValueID][]ir.Value{},
	}

	patterns := []rewrite.Pattern{
		&rewritePattern{ctx},
		&typePattern{ctx},
		&attributePattern{ctx},
		&operandPattern{ctx},
		&getPattern{ctx},
		&operationPattern{ctx},
		&resultPattern{ctx},
		&replacePattern{ctx},
		&attachPattern{ctx},
	}

	if err := rewrite.Apply(scratch, patterns); err != nil {
		return nil, err
	}

	checkSat := smt.CheckSat(arena)
	block.Ops = append(block.Ops, checkSat)
	checkSat.Parent = block

	return block.Ops, nil
}

// kbCorrectness builds the "zeros/ones are a sound known-bits fact about
// value" formula shared by pdl.df.get (asserted as a precondition) and
// pdl.df.attach (asserted, negated, as a proof obligation), alongside the
// ops it needed, in dependency order.
func kbCorrectness(arena *ir.Arena, value, zeros, ones ir.Value) (ir.Value, []*ir.Op) {
	width := value.Type().(ir.BitVecType).Width

	zerosAnd := bv.And(arena, value, zeros)
	zero := bv.Constant(arena, 0, width)
	zerosOk := smt.Eq(arena, zerosAnd.Result(0), zero.Result(0))
	onesAnd := bv.And(arena, value, ones)
	onesOk := smt.Eq(arena, onesAnd.Result(0), ones)
	allOk := smt.And(arena, zerosOk.Result(0), onesOk.Result(0))

	return allOk.Result(0), []*ir.Op{zerosAnd, zero, zerosOk, onesAnd, onesOk, allOk}
}

// andAll left-folds vs with smt.and, returning the accumulated value (nil
// if vs is empty) and every smt.and op it needed to create, in order.
func andAll(arena *ir.Arena, vs []ir.Value) (ir.Value, []*ir.Op) {
	if len(vs) == 0 {
		return nil, nil
	}

	acc := vs[0]

	var ops []*ir.Op

	for _, v := range vs[1:] {
		a := smt.And(arena, acc, v)
		ops = append(ops, a)
		acc = a.Result(0)
	}

	return acc, ops
}
