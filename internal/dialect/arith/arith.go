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

// Package arith defines the source-level integer arithmetic dialect: fixed
// binary arithmetic, a predicate-attributed comparison, and constants, all
// operating on plain (poison-free) or poison-carrying integer types prior
// to lowering into the smt.bv dialect.
package arith

import (
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// binaryNames lists every two-operand, same-type-in-same-type-out op.
var binaryNames = []string{"add", "sub", "mul", "divs", "divu", "rems", "remu", "shl", "shrs", "shru"}

// CmpPredicates enumerates the predicate attribute values accepted by
// arith.cmp, mirroring LLVM/MLIR arith dialect's icmp predicate set.
var CmpPredicates = []string{"eq", "ne", "slt", "sle", "sgt", "sge", "ult", "ule", "ugt", "uge"}

func init() {
	reg := dialect.Global()

	for _, name := range binaryNames {
		reg.Register(&dialect.OpDef{
			Name:     "arith." + name,
			Operands: []dialect.OperandConstraint{dialect.AnyBitVec(), dialect.AnyBitVec()},
			Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
			Traits:   map[dialect.Trait]bool{dialect.Pure: true},
			Verify:   verifySameWidth,
		})
	}

	reg.Register(&dialect.OpDef{
		Name:     "arith.cmp",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec(), dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Attrs:    map[string]dialect.AttrConstraint{"predicate": {Check: isKnownPredicate, Required: true}},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
		Verify:   verifySameOperandWidth,
	})

	reg.Register(&dialect.OpDef{
		Name:    "arith.constant",
		Results: []dialect.OperandConstraint{dialect.AnyBitVec()},
		Attrs:   map[string]dialect.AttrConstraint{"value": {Check: isIntegerAttr, Required: true}},
		Traits:  map[dialect.Trait]bool{dialect.Pure: true},
		Verify:  verifyConstant,
	})
}

func isIntegerAttr(a ir.Attribute) bool {
	_, ok := a.(ir.IntegerAttr)
	return ok
}

func isKnownPredicate(a ir.Attribute) bool {
	s, ok := a.(ir.StringAttr)
	if !ok {
		return false
	}

	for _, p := range CmpPredicates {
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

func verifySameOperandWidth(op *ir.Op) error {
	if width(op.Operands[0].Type()) != width(op.Operands[1].Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "operands have differing widths")
	}

	return nil
}

func verifyConstant(op *ir.Op) error {
	ival := op.Attrs["value"].(ir.IntegerAttr)
	if ival.Width != width(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "value width does not match result type width")
	}

	if !ival.InRange() {
		return ir.NewVerificationError(ir.OutOfRange, op.Name,
			fmt.Sprintf("value %s is not in [0, 2^%d)", ival.Value, ival.Width))
	}

	return nil
}

func binop(arena *ir.Arena, name string, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "arith."+name, []ir.Value{a, b}, []ir.Type{a.Type()}, nil, 0)
}

// Add, Sub, Mul, DivS, DivU, RemS, RemU, Shl, ShrS and ShrU construct the
// corresponding arith binary op.
func Add(arena *ir.Arena, a, b ir.Value) *ir.Op  { return binop(arena, "add", a, b) }
func Sub(arena *ir.Arena, a, b ir.Value) *ir.Op  { return binop(arena, "sub", a, b) }
func Mul(arena *ir.Arena, a, b ir.Value) *ir.Op  { return binop(arena, "mul", a, b) }
func DivS(arena *ir.Arena, a, b ir.Value) *ir.Op { return binop(arena, "divs", a, b) }
func DivU(arena *ir.Arena, a, b ir.Value) *ir.Op { return binop(arena, "divu", a, b) }
func RemS(arena *ir.Arena, a, b ir.Value) *ir.Op { return binop(arena, "rems", a, b) }
func RemU(arena *ir.Arena, a, b ir.Value) *ir.Op { return binop(arena, "remu", a, b) }
func Shl(arena *ir.Arena, a, b ir.Value) *ir.Op  { return binop(arena, "shl", a, b) }
func ShrS(arena *ir.Arena, a, b ir.Value) *ir.Op { return binop(arena, "shrs", a, b) }
func ShrU(arena *ir.Arena, a, b ir.Value) *ir.Op { return binop(arena, "shru", a, b) }

// Cmp constructs an arith.cmp op under the named predicate (see
// CmpPredicates).
func Cmp(arena *ir.Arena, predicate string, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "arith.cmp", []ir.Value{a, b}, []ir.Type{ir.BoolT},
		map[string]ir.Attribute{"predicate": ir.StringAttr(predicate)}, 0)
}

// Constant constructs an arith.constant <value:width> op.
func Constant(arena *ir.Arena, value int64, width uint) *ir.Op {
	return ir.NewOp(arena, "arith.constant", nil, []ir.Type{ir.NewBitVecType(width)},
		map[string]ir.Attribute{"value": ir.NewIntegerAttr(value, width)}, 0)
}
