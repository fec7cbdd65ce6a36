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

// Package mem defines the mem dialect: the opaque Memory/BlockID/Block
// types and the accessor operations used by the memory-effect lowering to
// desugar alloc/read/write into explicit byte-array manipulation.
package mem

import (
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// BytesType is the type of a block's raw byte storage: a map from 64-bit
// byte offset to an 8-bit byte value.
var BytesType = ir.ArrayType{Key_: ir.NewBitVecType(64), Value: ir.NewBitVecType(8)}

// OffsetType is the type of a byte offset or block size.
var OffsetType = ir.NewBitVecType(64)

func init() {
	reg := dialect.Global()

	reg.Register(&dialect.OpDef{
		Name:     "mem.get_fresh_block_id",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.MemoryT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.MemoryT), dialect.Exactly(ir.BlockIDT)},
		Traits:   map[dialect.Trait]bool{dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.get_block",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.MemoryT), dialect.Exactly(ir.BlockIDT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{})},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.set_block",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{}), dialect.Exactly(ir.MemoryT), dialect.Exactly(ir.BlockIDT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.MemoryT)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.get_block_size",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{})},
		Results:  []dialect.OperandConstraint{dialect.Exactly(OffsetType)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.set_block_size",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{}), dialect.Exactly(OffsetType)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{})},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.get_block_live_marker",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{})},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BoolT)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.set_block_live_marker",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{}), dialect.Exactly(ir.BoolT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{})},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.get_block_bytes",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{})},
		Results:  []dialect.OperandConstraint{dialect.Exactly(BytesType)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.set_block_bytes",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{}), dialect.Exactly(BytesType)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.BlockType{})},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.read_bytes",
		Operands: []dialect.OperandConstraint{dialect.Exactly(BytesType), dialect.Exactly(OffsetType)},
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
	reg.Register(&dialect.OpDef{
		Name:     "mem.write_bytes",
		Operands: []dialect.OperandConstraint{dialect.AnyType(), dialect.Exactly(BytesType), dialect.Exactly(OffsetType)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(BytesType)},
		Traits:   map[dialect.Trait]bool{dialect.Pure: true, dialect.SMTLibOp: true},
	})
}

// GetFreshBlockID constructs a mem.get_fresh_block_id op.
func GetFreshBlockID(arena *ir.Arena, memory ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.get_fresh_block_id", []ir.Value{memory}, []ir.Type{ir.MemoryT, ir.BlockIDT}, nil, 0)
}

// GetBlock constructs a mem.get_block op.
func GetBlock(arena *ir.Arena, memory, id ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.get_block", []ir.Value{memory, id}, []ir.Type{ir.BlockType{}}, nil, 0)
}

// SetBlock constructs a mem.set_block op.
func SetBlock(arena *ir.Arena, block, memory, id ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.set_block", []ir.Value{block, memory, id}, []ir.Type{ir.MemoryT}, nil, 0)
}

// GetBlockSize constructs a mem.get_block_size op.
func GetBlockSize(arena *ir.Arena, block ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.get_block_size", []ir.Value{block}, []ir.Type{OffsetType}, nil, 0)
}

// SetBlockSize constructs a mem.set_block_size op.
func SetBlockSize(arena *ir.Arena, block, size ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.set_block_size", []ir.Value{block, size}, []ir.Type{ir.BlockType{}}, nil, 0)
}

// GetBlockLiveMarker constructs a mem.get_block_live_marker op.
func GetBlockLiveMarker(arena *ir.Arena, block ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.get_block_live_marker", []ir.Value{block}, []ir.Type{ir.BoolT}, nil, 0)
}

// SetBlockLiveMarker constructs a mem.set_block_live_marker op.
func SetBlockLiveMarker(arena *ir.Arena, block, marker ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.set_block_live_marker", []ir.Value{block, marker}, []ir.Type{ir.BlockType{}}, nil, 0)
}

// GetBlockBytes constructs a mem.get_block_bytes op.
func GetBlockBytes(arena *ir.Arena, block ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.get_block_bytes", []ir.Value{block}, []ir.Type{BytesType}, nil, 0)
}

// SetBlockBytes constructs a mem.set_block_bytes op.
func SetBlockBytes(arena *ir.Arena, block, bytes ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.set_block_bytes", []ir.Value{block, bytes}, []ir.Type{ir.BlockType{}}, nil, 0)
}

// ReadBytes constructs a mem.read_bytes op reinterpreting bytes at offset
// as targetType.
func ReadBytes(arena *ir.Arena, bytes, offset ir.Value, targetType ir.Type) *ir.Op {
	return ir.NewOp(arena, "mem.read_bytes", []ir.Value{bytes, offset}, []ir.Type{targetType}, nil, 0)
}

// WriteBytes constructs a mem.write_bytes op writing value into bytes at
// offset.
func WriteBytes(arena *ir.Arena, value, bytes, offset ir.Value) *ir.Op {
	return ir.NewOp(arena, "mem.write_bytes", []ir.Value{value, bytes, offset}, []ir.Type{BytesType}, nil, 0)
}
