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
//
// SPDX-License-Identifier: Apache-2.0
package ir

import "fmt"

// BoolT is the singleton boolean type.
var BoolT = BoolType{}

// MemoryT is the singleton opaque memory type.
var MemoryT = MemoryType{}

// BlockIDT is the singleton opaque memory-block-identifier type.
var BlockIDT = BlockIDType{}

// StateT is the singleton effect-state type.
var StateT = StateType{}

// OpT, ValT, TypeT and AttributeT are the PDL erased meta-types.
var (
	OpT        = PDLOpType{}
	ValT       = PDLValType{}
	TypeT      = PDLTypeType{}
	AttributeT = PDLAttributeType{}
)

// BoolType is the type of SMT booleans.
type BoolType struct{}

func (BoolType) isType()             {}
func (BoolType) Key() string         { return "bool" }
func (BoolType) String() string      { return "Bool" }
func (t BoolType) Equal(o Attribute) bool {
	_, ok := o.(BoolType)
	return ok
}

// BitVecType is a fixed-width bit-vector type, width >= 1.
type BitVecType struct {
	Width uint
}

// NewBitVecType constructs a bit-vector type, panicking if the width is zero
// (a zero-width bit-vector is never well-formed, per the data model).
func NewBitVecType(width uint) BitVecType {
	if width == 0 {
		panic("bit-vector type requires width >= 1")
	}

	return BitVecType{width}
}

func (BitVecType) isType()        {}
func (t BitVecType) Key() string  { return fmt.Sprintf("bv<%d>", t.Width) }
func (t BitVecType) String() string {
	return fmt.Sprintf("(_ BitVec %d)", t.Width)
}
func (t BitVecType) Equal(o Attribute) bool {
	other, ok := o.(BitVecType)
	return ok && t.Width == other.Width
}

// PairType is a product type (A, B).
type PairType struct {
	First  Type
	Second Type
}

func (PairType) isType() {}
func (t PairType) Key() string {
	return fmt.Sprintf("pair<%s,%s>", t.First.Key(), t.Second.Key())
}
func (t PairType) String() string {
	return fmt.Sprintf("(Pair %s %s)", t.First.String(), t.Second.String())
}
func (t PairType) Equal(o Attribute) bool {
	other, ok := o.(PairType)
	return ok && t.First.Equal(other.First) && t.Second.Equal(other.Second)
}

// ArrayType is a map type K -> V.
type ArrayType struct {
	Key_  Type
	Value Type
}

func (ArrayType) isType() {}
func (t ArrayType) Key() string {
	return fmt.Sprintf("array<%s,%s>", t.Key_.Key(), t.Value.Key())
}
func (t ArrayType) String() string {
	return fmt.Sprintf("(Array %s %s)", t.Key_.String(), t.Value.String())
}
func (t ArrayType) Equal(o Attribute) bool {
	other, ok := o.(ArrayType)
	return ok && t.Key_.Equal(other.Key_) && t.Value.Equal(other.Value)
}

// MemoryType is the opaque type of a full symbolic memory.
type MemoryType struct{}

func (MemoryType) isType()        {}
func (MemoryType) Key() string    { return "memory" }
func (MemoryType) String() string { return "Memory" }
func (t MemoryType) Equal(o Attribute) bool {
	_, ok := o.(MemoryType)
	return ok
}

// BlockIDType is the opaque type of a fresh memory block identifier.
type BlockIDType struct{}

func (BlockIDType) isType()        {}
func (BlockIDType) Key() string    { return "blockid" }
func (BlockIDType) String() string { return "BlockID" }
func (t BlockIDType) Equal(o Attribute) bool {
	_, ok := o.(BlockIDType)
	return ok
}

// BlockType is the opaque type of a single memory block's metadata (size,
// live marker, bytes), as addressed by a BlockID within a Memory.
type BlockType struct{}

func (BlockType) isType()        {}
func (BlockType) Key() string    { return "block" }
func (BlockType) String() string { return "Block" }
func (t BlockType) Equal(o Attribute) bool {
	_, ok := o.(BlockType)
	return ok
}

// PointerType is the type of a (block id, offset) pair seen at the source
// (pre-memory-lowering) level; after lowering it becomes a concrete PairType.
type PointerType struct{}

func (PointerType) isType()        {}
func (PointerType) Key() string    { return "pointer" }
func (PointerType) String() string { return "Pointer" }
func (t PointerType) Equal(o Attribute) bool {
	_, ok := o.(PointerType)
	return ok
}

// SortType is an uninterpreted SMT sort, named.
type SortType struct {
	Name string
}

func (SortType) isType()     {}
func (t SortType) Key() string { return "sort<" + t.Name + ">" }
func (t SortType) String() string { return t.Name }
func (t SortType) Equal(o Attribute) bool {
	other, ok := o.(SortType)
	return ok && t.Name == other.Name
}

// FunctionType is the type of an SMT-LIB function (params...) -> result.
type FunctionType struct {
	Params []Type
	Result Type
}

func (FunctionType) isType() {}
func (t FunctionType) Key() string {
	s := "fn<"
	for _, p := range t.Params {
		s += p.Key() + ","
	}

	return s + "->" + t.Result.Key() + ">"
}
func (t FunctionType) String() string {
	s := "("
	for i, p := range t.Params {
		if i != 0 {
			s += " "
		}

		s += p.String()
	}

	return s + ") " + t.Result.String()
}
func (t FunctionType) Equal(o Attribute) bool {
	other, ok := o.(FunctionType)
	if !ok || len(t.Params) != len(other.Params) || !t.Result.Equal(other.Result) {
		return false
	}

	for i := range t.Params {
		if !t.Params[i].Equal(other.Params[i]) {
			return false
		}
	}

	return true
}

// StateType is the opaque per-program-point effect state (poison/UB +
// memory), prior to being lowered into an explicit Pair.
type StateType struct{}

func (StateType) isType()        {}
func (StateType) Key() string    { return "state" }
func (StateType) String() string { return "State" }
func (t StateType) Equal(o Attribute) bool {
	_, ok := o.(StateType)
	return ok
}

// PDLOpType, PDLValType, PDLTypeType and PDLAttributeType are the erased
// meta-types used by pattern/rewrite (pdl) values: they never survive past
// the pdl-to-smt lowering pass and have no SMT-LIB rendering of their own.
type (
	PDLOpType        struct{}
	PDLValType       struct{}
	PDLTypeType      struct{}
	PDLAttributeType struct{}
)

func (PDLOpType) isType()          {}
func (PDLOpType) Key() string      { return "pdl.op" }
func (PDLOpType) String() string   { return "!pdl.operation" }
func (t PDLOpType) Equal(o Attribute) bool {
	_, ok := o.(PDLOpType)
	return ok
}

func (PDLValType) isType()        {}
func (PDLValType) Key() string    { return "pdl.value" }
func (PDLValType) String() string { return "!pdl.value" }
func (t PDLValType) Equal(o Attribute) bool {
	_, ok := o.(PDLValType)
	return ok
}

func (PDLTypeType) isType()        {}
func (PDLTypeType) Key() string    { return "pdl.type" }
func (PDLTypeType) String() string { return "!pdl.type" }
func (t PDLTypeType) Equal(o Attribute) bool {
	_, ok := o.(PDLTypeType)
	return ok
}

func (PDLAttributeType) isType()        {}
func (PDLAttributeType) Key() string    { return "pdl.attribute" }
func (PDLAttributeType) String() string { return "!pdl.attribute" }
func (t PDLAttributeType) Equal(o Attribute) bool {
	_, ok := o.(PDLAttributeType)
	return ok
}
