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

// Package comb defines the bit-combinatorics source dialect: the five
// variadic bitwise/arithmetic families (CIRCT comb-style), fixed-arity
// division/remainder/shift, comparison, and the structural bit-manipulation
// ops (extract, concat, replicate, mux, parity).
package comb

import (
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// VariadicNames lists the five families accepting 0..n same-width operands,
// folded per the identity-constant rule (n=0 ⇒ identity, n=1 ⇒ operand,
// n>=2 ⇒ left-fold) during lowering.
var VariadicNames = []string{"add", "mul", "and", "or", "xor"}

var fixedBinaryNames = []string{"divs", "divu", "mods", "modu", "shl", "shrs", "shru"}

// IcmpPredicates mirrors arith.CmpPredicates; kept as a distinct list since
// comb.icmp is a separate op from arith.cmp at the source level.
var IcmpPredicates = []string{"eq", "ne", "slt", "sle", "sgt", "sge", "ult", "ule", "ugt", "uge"}

func init() {
	reg := dialect.Global()

	for _, name := range VariadicNames {
		reg.Register(&dialect.OpDef{
			Name:     "comb." + name,
			Operands: []dialect.OperandConstraint{dialect.AnyBitVec()},
			Variadic: true,
			Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
			Traits:   map[dialect.Trait]bool{dialect.Pure: true},
			Verify:   verifyVariadicSameWidth,
		})
	}

	for _, name := range fixedBinaryNames {
		reg.Register(&dialect.OpDef{
			Name:     "comb." + name,
			Operands: []dialect.OperandConstraint{dialect.AnyBitVec(), dialect.AnyBitVec()},
			Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
			Traits:   map[dialect.Trait]bool{dialect.Pure: true},
			Verify:   verifySameWidth,
		})
	}

	reg.Register(&dialect.OpDef{
		Name:     "comb.icmp",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec(), dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Attrs:    map[string]dialect.AttrConstraint{"predicate": {Check: isKnownIcmpPredicate, Required: true}},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "comb.parity",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.NewBitVecType(1))},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "comb.extract",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
		Attrs:    map[string]dialect.AttrConstraint{"lowBit": {Check: isIntegerAttr, Required: true}},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "comb.concat",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec()},
		Variadic: true,
		Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "comb.replicate",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
		Verify:   verifyReplicate,
	})
	reg.Register(&dialect.OpDef{
		Name:     "comb.mux",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BoolT), dialect.AnyBitVec(), dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
		Verify:   verifyMux,
	})
}

func isIntegerAttr(a ir.Attribute) bool {
	_, ok := a.(ir.IntegerAttr)
	return ok
}

func isKnownIcmpPredicate(a ir.Attribute) bool {
	s, ok := a.(ir.StringAttr)
	if !ok {
		return false
	}

	for _, p := range IcmpPredicates {
		if string(s) == p {
			return true
		}
	}

	return false
}

func width(t ir.Type) uint {
	bv, ok := t.(ir.BitVecType)
	if !ok {
		return 0
	}

	return bv.Width
}

func verifyVariadicSameWidth(op *ir.Op) error {
	if len(op.Operands) == 0 {
		return nil
	}

	w := width(op.Operands[0].Type())
	for i, v := range op.Operands {
		if width(v.Type()) != w {
			return ir.NewVerificationError(ir.TypeMismatch, op.Name,
				fmt.Sprintf("operand %d has width %d, expected %d", i, width(v.Type()), w))
		}
	}

	if width(op.Result(0).Type()) != w {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result width does not match operand width")
	}

	return nil
}

func verifySameWidth(op *ir.Op) error {
	w := width(op.Operands[0].Type())
	if width(op.Operands[1].Type()) != w {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "operands have differing widths")
	}

	if width(op.Result(0).Type()) != w {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result width does not match operand width")
	}

	return nil
}

func verifyReplicate(op *ir.Op) error {
	in := width(op.Operands[0].Type())
	out := width(op.Result(0).Type())

	if in == 0 || out%in != 0 {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result width must be a multiple of operand width")
	}

	return nil
}

func verifyMux(op *ir.Op) error {
	trueT := op.Operands[1].Type()
	falseT := op.Operands[2].Type()

	if !trueT.Equal(falseT) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "true/false operands have differing types")
	}

	if !trueT.Equal(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result type does not match operand type")
	}

	return nil
}

// Variadic constructs a comb.<name> op (one of VariadicNames) over operands,
// all of which must share a bit-vector width w; the result also has width
// w. Operands may number zero or more; identity-constant folding happens at
// lowering time, not here.
func Variadic(arena *ir.Arena, name string, width uint, operands []ir.Value) *ir.Op {
	return ir.NewOp(arena, "comb."+name, operands, []ir.Type{ir.NewBitVecType(width)}, nil, 0)
}

func fixedBinop(arena *ir.Arena, name string, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "comb."+name, []ir.Value{a, b}, []ir.Type{a.Type()}, nil, 0)
}

// DivS, DivU, ModS, ModU, Shl, ShrS and ShrU construct the fixed-arity comb
// binary ops.
func DivS(arena *ir.Arena, a, b ir.Value) *ir.Op { return fixedBinop(arena, "divs", a, b) }
func DivU(arena *ir.Arena, a, b ir.Value) *ir.Op { return fixedBinop(arena, "divu", a, b) }
func ModS(arena *ir.Arena, a, b ir.Value) *ir.Op { return fixedBinop(arena, "mods", a, b) }
func ModU(arena *ir.Arena, a, b ir.Value) *ir.Op { return fixedBinop(arena, "modu", a, b) }
func Shl(arena *ir.Arena, a, b ir.Value) *ir.Op  { return fixedBinop(arena, "shl", a, b) }
func ShrS(arena *ir.Arena, a, b ir.Value) *ir.Op { return fixedBinop(arena, "shrs", a, b) }
func ShrU(arena *ir.Arena, a, b ir.Value) *ir.Op { return fixedBinop(arena, "shru", a, b) }

// Icmp constructs a comb.icmp op under the named predicate.
func Icmp(arena *ir.Arena, predicate string, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "comb.icmp", []ir.Value{a, b}, []ir.Type{ir.BoolT},
		map[string]ir.Attribute{"predicate": ir.StringAttr(predicate)}, 0)
}

// Parity constructs a comb.parity op (1-bit XOR-reduction of all bits).
func Parity(arena *ir.Arena, a ir.Value) *ir.Op {
	return ir.NewOp(arena, "comb.parity", []ir.Value{a}, []ir.Type{ir.NewBitVecType(1)}, nil, 0)
}

// Extract constructs a comb.extract op taking resultWidth bits starting at
// lowBit.
func Extract(arena *ir.Arena, a ir.Value, lowBit, resultWidth uint) *ir.Op {
	return ir.NewOp(arena, "comb.extract", []ir.Value{a}, []ir.Type{ir.NewBitVecType(resultWidth)},
		map[string]ir.Attribute{"lowBit": ir.NewIntegerAttr(int64(lowBit), 32)}, 0)
}

// Concat constructs a comb.concat op over operands, most-significant first;
// its result width is the sum of the operand widths.
func Concat(arena *ir.Arena, operands []ir.Value) *ir.Op {
	var w uint
	for _, v := range operands {
		w += width(v.Type())
	}

	return ir.NewOp(arena, "comb.concat", operands, []ir.Type{ir.NewBitVecType(w)}, nil, 0)
}

// Replicate constructs a comb.replicate op tiling a to the given result
// width (a multiple of a's width).
func Replicate(arena *ir.Arena, a ir.Value, resultWidth uint) *ir.Op {
	return ir.NewOp(arena, "comb.replicate", []ir.Value{a}, []ir.Type{ir.NewBitVecType(resultWidth)}, nil, 0)
}

// Mux constructs a comb.mux op selecting trueVal when cond holds.
func Mux(arena *ir.Arena, cond, trueVal, falseVal ir.Value) *ir.Op {
	return ir.NewOp(arena, "comb.mux", []ir.Value{cond, trueVal, falseVal}, []ir.Type{trueVal.Type()}, nil, 0)
}
