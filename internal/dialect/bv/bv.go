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

// Package bv defines the smt.bv bit-vector dialect: the constant, the
// arithmetic/bitwise binary families, the eight relational predicates, and
// the two structural operations (concat, extract).
package bv

import (
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// arithNames lists every unary and binary op requiring identical BitVec(w)
// operand and result types.
var arithNames = []string{
	"neg", "add", "sub", "mul", "udiv", "sdiv", "urem", "srem", "smod",
	"shl", "lshr", "ashr", "not", "and", "or", "xor", "nand", "nor", "xnor",
}

// unaryNames lists which of arithNames take a single operand.
var unaryNames = map[string]bool{"neg": true, "not": true}

// predicateNames lists the eight relational predicates, each Bool-valued.
var predicateNames = []string{"ule", "ult", "uge", "ugt", "sle", "slt", "sge", "sgt"}

func init() {
	reg := dialect.Global()

	for _, name := range arithNames {
		qualified := "smt.bv." + name
		arity := 2
		if unaryNames[name] {
			arity = 1
		}

		operands := make([]dialect.OperandConstraint, arity)
		for i := range operands {
			operands[i] = dialect.AnyBitVec()
		}

		reg.Register(&dialect.OpDef{
			Name:     qualified,
			Operands: operands,
			Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
			Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
			Verify:   verifySameWidth,
		})
	}

	for _, name := range predicateNames {
		reg.Register(&dialect.OpDef{
			Name:     "smt.bv." + name,
			Operands: []dialect.OperandConstraint{dialect.AnyBitVec(), dialect.AnyBitVec()},
			Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
			Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
			Verify:   verifySameOperandWidth,
		})
	}

	reg.Register(&dialect.OpDef{
		Name:    "smt.bv.constant",
		Results: []dialect.OperandConstraint{dialect.AnyBitVec()},
		Attrs:   map[string]dialect.AttrConstraint{"value": {Check: isIntegerAttr, Required: true}},
		Traits:  map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
		Verify:  verifyConstant,
	})

	reg.Register(&dialect.OpDef{
		Name:     "smt.bv.concat",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec(), dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
		Verify:   verifyConcat,
	})

	reg.Register(&dialect.OpDef{
		Name:     "smt.bv.extract",
		Operands: []dialect.OperandConstraint{dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.AnyBitVec()},
		Attrs: map[string]dialect.AttrConstraint{
			"lo": {Check: isIntegerAttr, Required: true},
			"hi": {Check: isIntegerAttr, Required: true},
		},
		Traits: map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
		Verify: verifyExtract,
	})
}

func isIntegerAttr(a ir.Attribute) bool {
	_, ok := a.(ir.IntegerAttr)
	return ok
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

func verifySameOperandWidth(op *ir.Op) error {
	w := width(op.Operands[0].Type())
	if width(op.Operands[1].Type()) != w {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "operands have differing widths")
	}

	return nil
}

func verifyConstant(op *ir.Op) error {
	attr, _ := op.Attr("value")

	ival, ok := attr.(ir.IntegerAttr)
	if !ok {
		return ir.NewVerificationError(ir.MissingAttribute, op.Name, "value attribute is not an integer")
	}

	if ival.Width != width(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "value width does not match result type width")
	}

	if !ival.InRange() {
		return ir.NewVerificationError(ir.OutOfRange, op.Name,
			fmt.Sprintf("value %s is not in [0, 2^%d)", ival.Value, ival.Width))
	}

	return nil
}

func verifyConcat(op *ir.Op) error {
	w := width(op.Operands[0].Type()) + width(op.Operands[1].Type())
	if width(op.Result(0).Type()) != w {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name,
			fmt.Sprintf("result width %d does not equal sum of operand widths %d", width(op.Result(0).Type()), w))
	}

	return nil
}

func verifyExtract(op *ir.Op) error {
	loAttr, _ := op.Attr("lo")
	hiAttr, _ := op.Attr("hi")
	lo := loAttr.(ir.IntegerAttr).Value.Uint64()
	hi := hiAttr.(ir.IntegerAttr).Value.Uint64()

	if hi < lo {
		return ir.NewVerificationError(ir.OutOfRange, op.Name, "hi must be >= lo")
	}

	if hi >= uint64(width(op.Operands[0].Type())) {
		return ir.NewVerificationError(ir.OutOfRange, op.Name, "hi exceeds operand width")
	}

	if uint64(width(op.Result(0).Type())) != hi-lo+1 {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result width does not equal hi-lo+1")
	}

	return nil
}

// Constant constructs a smt.bv.constant <value:width> op.
func Constant(arena *ir.Arena, value int64, width uint) *ir.Op {
	return ir.NewOp(arena, "smt.bv.constant", nil, []ir.Type{ir.NewBitVecType(width)},
		map[string]ir.Attribute{"value": ir.NewIntegerAttr(value, width)}, 0)
}

func binop(arena *ir.Arena, name string, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.bv."+name, []ir.Value{a, b}, []ir.Type{a.Type()}, nil, 0)
}

func unop(arena *ir.Arena, name string, a ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.bv."+name, []ir.Value{a}, []ir.Type{a.Type()}, nil, 0)
}

// Neg, Add, Sub, Mul, UDiv, SDiv, URem, SRem, SMod, Shl, LShr, AShr, Not,
// And, Or, Xor, Nand, Nor and Xnor construct the corresponding smt.bv binop
// (or, for Neg/Not, unop).
func Neg(arena *ir.Arena, a ir.Value) *ir.Op        { return unop(arena, "neg", a) }
func Add(arena *ir.Arena, a, b ir.Value) *ir.Op     { return binop(arena, "add", a, b) }
func Sub(arena *ir.Arena, a, b ir.Value) *ir.Op     { return binop(arena, "sub", a, b) }
func Mul(arena *ir.Arena, a, b ir.Value) *ir.Op     { return binop(arena, "mul", a, b) }
func UDiv(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "udiv", a, b) }
func SDiv(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "sdiv", a, b) }
func URem(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "urem", a, b) }
func SRem(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "srem", a, b) }
func SMod(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "smod", a, b) }
func Shl(arena *ir.Arena, a, b ir.Value) *ir.Op     { return binop(arena, "shl", a, b) }
func LShr(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "lshr", a, b) }
func AShr(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "ashr", a, b) }
func Not(arena *ir.Arena, a ir.Value) *ir.Op        { return unop(arena, "not", a) }
func And(arena *ir.Arena, a, b ir.Value) *ir.Op     { return binop(arena, "and", a, b) }
func Or(arena *ir.Arena, a, b ir.Value) *ir.Op      { return binop(arena, "or", a, b) }
func Xor(arena *ir.Arena, a, b ir.Value) *ir.Op     { return binop(arena, "xor", a, b) }
func Nand(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "nand", a, b) }
func Nor(arena *ir.Arena, a, b ir.Value) *ir.Op     { return binop(arena, "nor", a, b) }
func Xnor(arena *ir.Arena, a, b ir.Value) *ir.Op    { return binop(arena, "xnor", a, b) }

func predicate(arena *ir.Arena, name string, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.bv."+name, []ir.Value{a, b}, []ir.Type{ir.BoolT}, nil, 0)
}

// Ule, Ult, Uge, Ugt, Sle, Slt, Sge and Sgt construct the eight relational
// predicates.
func Ule(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "ule", a, b) }
func Ult(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "ult", a, b) }
func Uge(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "uge", a, b) }
func Ugt(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "ugt", a, b) }
func Sle(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "sle", a, b) }
func Slt(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "slt", a, b) }
func Sge(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "sge", a, b) }
func Sgt(arena *ir.Arena, a, b ir.Value) *ir.Op { return predicate(arena, "sgt", a, b) }

// Concat constructs a smt.bv.concat op; its result width is the sum of the
// two operand widths.
func Concat(arena *ir.Arena, a, b ir.Value) *ir.Op {
	w := width(a.Type()) + width(b.Type())
	return ir.NewOp(arena, "smt.bv.concat", []ir.Value{a, b}, []ir.Type{ir.NewBitVecType(w)}, nil, 0)
}

// Extract constructs a smt.bv.extract(lo,hi) op; its result width is
// hi-lo+1.
func Extract(arena *ir.Arena, a ir.Value, lo, hi uint) *ir.Op {
	return ir.NewOp(arena, "smt.bv.extract", []ir.Value{a}, []ir.Type{ir.NewBitVecType(hi - lo + 1)},
		map[string]ir.Attribute{
			"lo": ir.NewIntegerAttr(int64(lo), 32),
			"hi": ir.NewIntegerAttr(int64(hi), 32),
		}, 0)
}

// PredicateOf maps a source comparison-predicate name (from the arith/comb
// dialects) onto the bv dialect's constructor, or (nil, false) if the
// predicate instead lowers to smt.eq/smt.distinct.
func PredicateOf(name string) (func(arena *ir.Arena, a, b ir.Value) *ir.Op, bool) {
	switch name {
	case "ult":
		return Ult, true
	case "ule":
		return Ule, true
	case "ugt":
		return Ugt, true
	case "uge":
		return Uge, true
	case "slt":
		return Slt, true
	case "sle":
		return Sle, true
	case "sgt":
		return Sgt, true
	case "sge":
		return Sge, true
	default:
		return nil, false
	}
}
