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

// Package smt defines the SMT core dialect: booleans, equality, control
// flow (ite) and the top-level script-structuring operations
// (declare-const, define-fun, call, assert, check-sat).
package smt

import (
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

func init() {
	reg := dialect.Global()

	simple := func(name string, arity int) *dialect.OpDef {
		operands := make([]dialect.OperandConstraint, arity)
		for i := range operands {
			operands[i] = dialect.Exactly(ir.BoolT)
		}

		return &dialect.OpDef{
			Name:     name,
			Operands: operands,
			Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
			Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
		}
	}

	reg.Register(&dialect.OpDef{
		Name:    "smt.constant_bool",
		Results: []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Attrs:   map[string]dialect.AttrConstraint{"value": {Check: isBoolAttr, Required: true}},
		Traits:  map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(simple("smt.and", 2))
	reg.Register(simple("smt.or", 2))
	reg.Register(simple("smt.not", 1))
	reg.Register(simple("smt.implies", 2))

	reg.Register(&dialect.OpDef{
		Name:     "smt.eq",
		Operands: []dialect.OperandConstraint{dialect.AnyType(), dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.distinct",
		Operands: []dialect.OperandConstraint{dialect.AnyType(), dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.ite",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BoolT), dialect.AnyType(), dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
		Verify:   verifyIte,
	})
	reg.Register(&dialect.OpDef{
		Name:    "smt.declare_const",
		Results: []dialect.OperandConstraint{dialect.AnyType()},
		Traits:  map[dialect.Trait]bool{dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.assert",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Traits:   map[dialect.Trait]bool{dialect.SimpleSMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:   "smt.check_sat",
		Traits: map[dialect.Trait]bool{dialect.SimpleSMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:    "smt.parameter",
		Results: []dialect.OperandConstraint{dialect.AnyType()},
		Attrs:   map[string]dialect.AttrConstraint{"name": {Check: isStringAttr, Required: true}},
		Traits:  map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		// Operands are [body, param0, param1, ...]: the function's body
		// expression followed by the smt.parameter values it may reference.
		Name:     "smt.define_fun",
		Operands: []dialect.OperandConstraint{dialect.AnyType()},
		Variadic: true,
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Attrs:    map[string]dialect.AttrConstraint{"name": {Check: isStringAttr, Required: true}},
		Traits:   map[dialect.Trait]bool{dialect.SMTLibOp: true},
		Verify:   verifyDefineFun,
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.array.select",
		Operands: []dialect.OperandConstraint{dialect.AnyArray(), dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
		Verify:   verifySelect,
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.array.store",
		Operands: []dialect.OperandConstraint{dialect.AnyArray(), dialect.AnyType(), dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.AnyArray()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SimpleSMTLibOp: true},
		Verify:   verifyStore,
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.array.const",
		Operands: []dialect.OperandConstraint{dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.AnyArray()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
		Verify:   verifyArrayConst,
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.call",
		Operands: []dialect.OperandConstraint{dialect.AnyType()},
		Variadic: true,
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Attrs:    map[string]dialect.AttrConstraint{"callee": {Check: isStringAttr, Required: true}},
		Traits:   map[dialect.Trait]bool{dialect.SMTLibOp: true},
	})
}

func isBoolAttr(a ir.Attribute) bool {
	_, ok := a.(ir.BoolAttr)
	return ok
}

func isStringAttr(a ir.Attribute) bool {
	_, ok := a.(ir.StringAttr)
	return ok
}

func verifyDefineFun(op *ir.Op) error {
	for i, p := range op.Operands[1:] {
		res, ok := p.(*ir.OpResult)
		if !ok || res.Owner.Name != "smt.parameter" {
			return ir.NewVerificationError(ir.TypeMismatch, op.Name,
				fmt.Sprintf("parameter %d is not a smt.parameter value", i))
		}
	}

	return nil
}

func verifySelect(op *ir.Op) error {
	arr := op.Operands[0].Type().(ir.ArrayType)
	if !arr.Key_.Equal(op.Operands[1].Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "key operand does not match the array's key type")
	}

	if !arr.Value.Equal(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result type does not match the array's value type")
	}

	return nil
}

func verifyStore(op *ir.Op) error {
	arr := op.Operands[0].Type().(ir.ArrayType)
	if !arr.Key_.Equal(op.Operands[1].Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "key operand does not match the array's key type")
	}

	if !arr.Value.Equal(op.Operands[2].Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "value operand does not match the array's value type")
	}

	if !arr.Equal(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result array type does not match the operand array type")
	}

	return nil
}

func verifyArrayConst(op *ir.Op) error {
	arr := op.Result(0).Type().(ir.ArrayType)
	if !arr.Value.Equal(op.Operands[0].Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "fill operand does not match the array's value type")
	}

	return nil
}

func verifyIte(op *ir.Op) error {
	trueT := op.Operands[1].Type()
	falseT := op.Operands[2].Type()

	if !trueT.Equal(falseT) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "true/false branches have differing types")
	}

	if !trueT.Equal(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result type does not match branch type")
	}

	return nil
}

// ConstantBool constructs a smt.constant_bool op.
func ConstantBool(arena *ir.Arena, value bool) *ir.Op {
	return ir.NewOp(arena, "smt.constant_bool", nil, []ir.Type{ir.BoolT},
		map[string]ir.Attribute{"value": ir.BoolAttr(value)}, 0)
}

// And constructs a smt.and op.
func And(arena *ir.Arena, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.and", []ir.Value{a, b}, []ir.Type{ir.BoolT}, nil, 0)
}

// Or constructs a smt.or op.
func Or(arena *ir.Arena, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.or", []ir.Value{a, b}, []ir.Type{ir.BoolT}, nil, 0)
}

// Not constructs a smt.not op.
func Not(arena *ir.Arena, a ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.not", []ir.Value{a}, []ir.Type{ir.BoolT}, nil, 0)
}

// Implies constructs a smt.implies op.
func Implies(arena *ir.Arena, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.implies", []ir.Value{a, b}, []ir.Type{ir.BoolT}, nil, 0)
}

// Eq constructs a smt.eq op.
func Eq(arena *ir.Arena, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.eq", []ir.Value{a, b}, []ir.Type{ir.BoolT}, nil, 0)
}

// Distinct constructs a smt.distinct op.
func Distinct(arena *ir.Arena, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.distinct", []ir.Value{a, b}, []ir.Type{ir.BoolT}, nil, 0)
}

// Ite constructs a smt.ite op; the result type is taken from trueVal.
func Ite(arena *ir.Arena, cond, trueVal, falseVal ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.ite", []ir.Value{cond, trueVal, falseVal}, []ir.Type{trueVal.Type()}, nil, 0)
}

// DeclareConst constructs a smt.declare_const op of the given type.
func DeclareConst(arena *ir.Arena, t ir.Type) *ir.Op {
	return ir.NewOp(arena, "smt.declare_const", nil, []ir.Type{t}, nil, 0)
}

// Assert constructs a smt.assert op.
func Assert(arena *ir.Arena, cond ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.assert", []ir.Value{cond}, nil, nil, 0)
}

// CheckSat constructs a smt.check_sat op.
func CheckSat(arena *ir.Arena) *ir.Op {
	return ir.NewOp(arena, "smt.check_sat", nil, nil, nil, 0)
}

// Parameter constructs a smt.parameter op: a named, bound variable usable
// both as one of a smt.define_fun's formal parameters and, by sharing the
// same Value, anywhere within that function's body expression.
func Parameter(arena *ir.Arena, name string, t ir.Type) *ir.Op {
	return ir.NewOp(arena, "smt.parameter", nil, []ir.Type{t},
		map[string]ir.Attribute{"name": ir.StringAttr(name)}, 0)
}

// DefineFun constructs a smt.define_fun op; params must be the results of
// prior Parameter calls, and may appear (by shared Value identity) within
// body's expression tree. Its name is carried as an attribute for the
// printer.
func DefineFun(arena *ir.Arena, name string, params []ir.Value, body ir.Value, resultType ir.Type) *ir.Op {
	operands := append([]ir.Value{body}, params...)
	return ir.NewOp(arena, "smt.define_fun", operands, []ir.Type{resultType},
		map[string]ir.Attribute{"name": ir.StringAttr(name)}, 0)
}

// ArraySelect constructs a smt.array.select op reading arr at key.
func ArraySelect(arena *ir.Arena, arr, key ir.Value) *ir.Op {
	valueType := arr.Type().(ir.ArrayType).Value
	return ir.NewOp(arena, "smt.array.select", []ir.Value{arr, key}, []ir.Type{valueType}, nil, 0)
}

// ArrayStore constructs a smt.array.store op writing value into arr at key.
func ArrayStore(arena *ir.Arena, arr, key, value ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.array.store", []ir.Value{arr, key, value}, []ir.Type{arr.Type()}, nil, 0)
}

// ArrayConst constructs a smt.array.const op: the constant array of type
// arrType whose every entry is fill, rendered via SMT-LIB's "(as const ...)"
// form. Used to zero-initialize a freshly allocated block's byte array
// without hand-authored initialization axioms.
func ArrayConst(arena *ir.Arena, arrType ir.ArrayType, fill ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.array.const", []ir.Value{fill}, []ir.Type{arrType}, nil, 0)
}

// Call constructs a smt.call op invoking callee with args.
func Call(arena *ir.Arena, callee string, args []ir.Value, resultType ir.Type) *ir.Op {
	return ir.NewOp(arena, "smt.call", args, []ir.Type{resultType},
		map[string]ir.Attribute{"callee": ir.StringAttr(callee)}, 0)
}
