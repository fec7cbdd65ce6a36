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

// Op is a named node in the IR graph: it consumes zero or more operand
// values, produces zero or more result values, carries a bag of named
// attributes (its "discriminant" data), owns zero or more nested regions,
// and is linked into a parent block (or detached, when newly constructed
// and not yet spliced in).
//
// An Op's Name is a dialect-qualified mnemonic (e.g. "smt.bv.add"); the
// registered definition governing its verification rules and traits lives
// in the sibling dialect package, looked up by Name, not embedded here —
// this keeps the core IR free of any dependency on dialect registration.
type Op struct {
	id      OpID
	Name    string
	Operands []Value
	Results  []*OpResult
	Attrs    map[string]Attribute
	Regions  []*Region
	Parent   *Block
}

// ID returns this op's stable handle.
func (o *Op) ID() OpID { return o.id }

// Result returns the i'th result value of this op.
func (o *Op) Result(i int) *OpResult { return o.Results[i] }

// Attr looks up a named attribute, reporting whether it was present.
func (o *Op) Attr(name string) (Attribute, bool) {
	a, ok := o.Attrs[name]
	return a, ok
}

// Region returns the i'th nested region of this op.
func (o *Op) Region(i int) *Region { return o.Regions[i] }

// NewOp constructs a detached operation (Parent == nil): it is not yet
// spliced into any block.  Operand uses are registered immediately; results
// are allocated fresh values owned by this op.
func NewOp(arena *Arena, name string, operands []Value, resultTypes []Type, attrs map[string]Attribute, numRegions int) *Op {
	op := &Op{
		id:       arena.newOpID(),
		Name:     name,
		Operands: append([]Value(nil), operands...),
		Attrs:    attrs,
	}

	if op.Attrs == nil {
		op.Attrs = map[string]Attribute{}
	}

	for i, v := range op.Operands {
		v.addUse(op, i)
	}

	op.Results = make([]*OpResult, len(resultTypes))
	for i, t := range resultTypes {
		op.Results[i] = &OpResult{
			baseValue: baseValue{id: arena.newValueID(), typ: t},
			Owner:     op,
			Index:     i,
		}
	}

	op.Regions = make([]*Region, numRegions)
	for i := range op.Regions {
		op.Regions[i] = NewRegion(arena, op)
	}

	return op
}

// ReplaceOperand substitutes the i'th operand with a new value, maintaining
// uses-list consistency on both the old and new operand.
func (o *Op) ReplaceOperand(i int, newValue Value) {
	old := o.Operands[i]
	old.removeUse(o, i)
	o.Operands[i] = newValue
	newValue.addUse(o, i)
}

// detachOperands drops this op's uses of all its operands, without
// affecting the op's own results.  Used by erase_op.
func (o *Op) detachOperands() {
	for i, v := range o.Operands {
		v.removeUse(o, i)
	}

	o.Operands = nil
}

// Block is an ordered sequence of operations plus a list of block-argument
// values, owned by a parent region.  Per the data model a well-formed block
// is non-empty; no check in this package enforces it, and blocks are
// necessarily empty momentarily during construction.
type Block struct {
	id     BlockID
	Args   []*BlockArg
	Ops    []*Op
	Parent *Region
}

// ID returns this block's stable handle.
func (b *Block) ID() BlockID { return b.id }

// NewBlock constructs an empty block with the given argument types, owned
// by parent (which may be nil for a block under construction prior to
// insertion into a region).
func NewBlock(arena *Arena, parent *Region, argTypes ...Type) *Block {
	b := &Block{id: arena.newBlockID(), Parent: parent}

	b.Args = make([]*BlockArg, len(argTypes))
	for i, t := range argTypes {
		b.Args[i] = &BlockArg{
			baseValue: baseValue{id: arena.newValueID(), typ: t},
			Owner:     b,
			Index:     i,
		}
	}

	return b
}

// IndexOf returns the position of op within this block's op list, or -1.
func (b *Block) IndexOf(op *Op) int {
	for i, o := range b.Ops {
		if o == op {
			return i
		}
	}

	return -1
}

// Region is an ordered list of blocks, owned by a parent operation (or, at
// the top of a module, by nothing: Parent is nil there).
type Region struct {
	id     RegionID
	Blocks []*Block
	Parent *Op
}

// ID returns this region's stable handle.
func (r *Region) ID() RegionID { return r.id }

// NewRegion constructs an empty region owned by parent.
func NewRegion(arena *Arena, parent *Op) *Region {
	return &Region{id: arena.newRegionID(), Parent: parent}
}

// Module is the root container: a single region holding (normally) a single
// block of top-level operations (function definitions, declare-consts,
// asserts, ...).
type Module struct {
	Arena  *Arena
	Region *Region
}

// NewModule constructs an empty module with a single, empty entry block.
func NewModule() *Module {
	arena := NewArena()
	region := NewRegion(arena, nil)
	entry := NewBlock(arena, region)
	region.Blocks = append(region.Blocks, entry)

	return &Module{Arena: arena, Region: region}
}

// Entry returns the module's single top-level block.
func (m *Module) Entry() *Block { return m.Region.Blocks[0] }
