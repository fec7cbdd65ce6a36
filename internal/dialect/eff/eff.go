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

// Package eff defines the ub and mem_effect dialects: the source-level
// effectful operations (trigger undefined behavior, allocate, offset a
// pointer, read, write) that thread an opaque State through a region prior
// to being desugared by the memory-effect lowering into explicit Pair
// values over (Memory, UB flag).
package eff

import (
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

func init() {
	reg := dialect.Global()

	reg.Register(&dialect.OpDef{
		Name:     "ub.trigger",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.StateT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.StateT)},
	})
	reg.Register(&dialect.OpDef{
		Name:     "ub.to_bool",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.StateT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem_effect.alloc",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.StateT), dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.StateT), dialect.Exactly(ir.PointerType{})},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem_effect.offset_pointer",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.PointerType{}), dialect.AnyBitVec()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.PointerType{})},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem_effect.read",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.StateT), dialect.Exactly(ir.PointerType{})},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.StateT), dialect.AnyType()},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem_effect.write",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.StateT), dialect.Exactly(ir.PointerType{}), dialect.AnyType()},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.StateT)},
	})
}

// Trigger constructs a ub.trigger op: the returned state is unconditionally
// poisoned with undefined behavior.
func Trigger(arena *ir.Arena, state ir.Value) *ir.Op {
	return ir.NewOp(arena, "ub.trigger", []ir.Value{state}, []ir.Type{ir.StateT}, nil, 0)
}

// ToBool constructs a ub.to_bool op, projecting a state down to whether it
// carries triggered undefined behavior.
func ToBool(arena *ir.Arena, state ir.Value) *ir.Op {
	return ir.NewOp(arena, "ub.to_bool", []ir.Value{state}, []ir.Type{ir.BoolT}, nil, 0)
}

// Alloc constructs a mem_effect.alloc op, allocating a fresh block of the
// given size and returning an updated state plus a pointer to its start.
func Alloc(arena *ir.Arena, state, size ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem_effect.alloc", []ir.Value{state, size},
		[]ir.Type{ir.StateT, ir.PointerType{}}, nil, 0)
}

// OffsetPointer constructs a mem_effect.offset_pointer op.
func OffsetPointer(arena *ir.Arena, ptr, delta ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem_effect.offset_pointer", []ir.Value{ptr, delta}, []ir.Type{ir.PointerType{}}, nil, 0)
}

// Read constructs a mem_effect.read op, loading a value of resultType from
// ptr and returning an updated state alongside it.
func Read(arena *ir.Arena, state, ptr ir.Value, resultType ir.Type) *ir.Op {
	return ir.NewOp(arena, "mem_effect.read", []ir.Value{state, ptr}, []ir.Type{ir.StateT, resultType}, nil, 0)
}

// Write constructs a mem_effect.write op, storing value at ptr.
func Write(arena *ir.Arena, state, ptr, value ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem_effect.write", []ir.Value{state, ptr, value}, []ir.Type{ir.StateT}, nil, 0)
}
