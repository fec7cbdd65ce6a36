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

// Package utils defines the smt.utils pair dialect used throughout the
// poison/UB and memory-effect lowerings to desugar ADT-like states into
// explicit product values.
package utils

import (
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

func init() {
	reg := dialect.Global()

	reg.Register(&dialect.OpDef{
		Name:     "smt.utils.pair",
		Operands: []dialect.OperandConstraint{dialect.AnyType(), dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
		Verify:   verifyPair,
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.utils.first",
		Operands: []dialect.OperandConstraint{isPairType},
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
		Verify:   verifyFirst,
	})
	reg.Register(&dialect.OpDef{
		Name:     "smt.utils.second",
		Operands: []dialect.OperandConstraint{isPairType},
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
		Verify:   verifySecond,
	})
}

func isPairType(t ir.Type) bool {
	_, ok := t.(ir.PairType)
	return ok
}

func verifyPair(op *ir.Op) error {
	want := ir.PairType{First: op.Operands[0].Type(), Second: op.Operands[1].Type()}
	if !want.Equal(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result is not Pair(operand0, operand1)")
	}

	return nil
}

func verifyFirst(op *ir.Op) error {
	pair := op.Operands[0].Type().(ir.PairType)
	if !pair.First.Equal(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result does not match pair's first component type")
	}

	return nil
}

func verifySecond(op *ir.Op) error {
	pair := op.Operands[0].Type().(ir.PairType)
	if !pair.Second.Equal(op.Result(0).Type()) {
		return ir.NewVerificationError(ir.TypeMismatch, op.Name, "result does not match pair's second component type")
	}

	return nil
}

// Pair constructs a smt.utils.pair op.
func Pair(arena *ir.Arena, a, b ir.Value) *ir.Op {
	return ir.NewOp(arena, "smt.utils.pair", []ir.Value{a, b},
		[]ir.Type{ir.PairType{First: a.Type(), Second: b.Type()}}, nil, 0)
}

// First constructs a smt.utils.first op extracting p's first component.
func First(arena *ir.Arena, p ir.Value) *ir.Op {
	pair := p.Type().(ir.PairType)
	return ir.NewOp(arena, "smt.utils.first", []ir.Value{p}, []ir.Type{pair.First}, nil, 0)
}

// Second constructs a smt.utils.second op extracting p's second component.
func Second(arena *ir.Arena, p ir.Value) *ir.Op {
	pair := p.Type().(ir.PairType)
	return ir.NewOp(arena, "smt.utils.second", []ir.Value{p}, []ir.Type{pair.Second}, nil, 0)
}
