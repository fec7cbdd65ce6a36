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

// Package pdl defines the pattern/dataflow description dialect: the
// erased-type operations (pdl.operand, pdl.type, pdl.operation, pdl.result,
// pdl.replace, ...) used to describe a peephole rewrite rule's match and
// replacement as ordinary IR, nested inside a pdl.pattern region.  These
// operations never reach the solver directly; pdl-to-smt lowers a whole
// pattern into a single SMT-LIB query.
package pdl

import (
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

func init() {
	reg := dialect.Global()

	reg.Register(&dialect.OpDef{
		Name:  "pdl.pattern",
		Attrs: map[string]dialect.AttrConstraint{"benefit": {Check: dialect.IsAttrKind[ir.IntegerAttr](), Required: false}},
	})
	reg.Register(&dialect.OpDef{
		Name:    "pdl.type",
		Results: []dialect.OperandConstraint{dialect.Exactly(ir.TypeT)},
		Attrs:   map[string]dialect.AttrConstraint{"constantType": {Check: dialect.IsAttrKind[ir.TypeAttr](), Required: false}},
	})
	reg.Register(&dialect.OpDef{
		Name:    "pdl.attribute",
		Results: []dialect.OperandConstraint{dialect.Exactly(ir.AttributeT)},
		Attrs:   map[string]dialect.AttrConstraint{"value": {Check: isAnyAttr, Required: false}},
	})
	reg.Register(&dialect.OpDef{
		Name:     "pdl.operand",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.TypeT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.ValT)},
	})
	reg.Register(&dialect.OpDef{
		Name:     "pdl.operation",
		Operands: []dialect.OperandConstraint{isPDLAny},
		Variadic: true,
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.OpT)},
		Attrs: map[string]dialect.AttrConstraint{
			"name":      {Check: isStringAttr, Required: true},
			"attrNames": {Check: dialect.IsAttrKind[ir.ArrayAttr](), Required: false},
		},
	})
	reg.Register(&dialect.OpDef{
		Name:     "pdl.result",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.OpT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.ValT)},
		Attrs:    map[string]dialect.AttrConstraint{"index": {Check: dialect.IsAttrKind[ir.IntegerAttr](), Required: true}},
	})
	reg.Register(&dialect.OpDef{
		Name:     "pdl.rewrite",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.OpT)},
	})
	reg.Register(&dialect.OpDef{
		Name:     "pdl.replace",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.OpT), isPDLAny},
		Variadic: true,
	})
}

func isPDLAny(t ir.Type) bool {
	switch t.(type) {
	case ir.PDLValType, ir.PDLTypeType, ir.PDLAttributeType, ir.PDLOpType:
		return true
	default:
		return false
	}
}

func isStringAttr(a ir.Attribute) bool {
	_, ok := a.(ir.StringAttr)
	return ok
}

func isAnyAttr(ir.Attribute) bool { return true }

// Pattern constructs a pdl.pattern op with a single region holding the
// match-and-rewrite body; benefit is the priority used to break ties
// between simultaneously-applicable patterns.
func Pattern(arena *ir.Arena, benefit int64) *ir.Op {
	return ir.NewOp(arena, "pdl.pattern", nil, nil,
		map[string]ir.Attribute{"benefit": ir.NewIntegerAttr(benefit, 64)}, 1)
}

// Type constructs a pdl.type op, optionally pinned to a constant IR type.
func Type(arena *ir.Arena, constant ir.Type) *ir.Op {
	attrs := map[string]ir.Attribute{}
	if constant != nil {
		attrs["constantType"] = ir.TypeAttr{Type: constant}
	}

	return ir.NewOp(arena, "pdl.type", nil, []ir.Type{ir.TypeT}, attrs, 0)
}

// Attribute constructs a pdl.attribute op, matching any compile-time
// attribute at the corresponding operation position.
func Attribute(arena *ir.Arena) *ir.Op {
	return ir.NewOp(arena, "pdl.attribute", nil, []ir.Type{ir.AttributeT}, nil, 0)
}

// ConstantAttribute constructs a pdl.attribute op pinned to a known
// compile-time value, used on the rewrite side to supply an attribute a
// synthesized pdl.operation requires (e.g. arith.constant's "value").
func ConstantAttribute(arena *ir.Arena, value ir.Attribute) *ir.Op {
	return ir.NewOp(arena, "pdl.attribute", nil, []ir.Type{ir.AttributeT},
		map[string]ir.Attribute{"value": value}, 0)
}

// Operand constructs a pdl.operand op, matching any value of the type
// produced by typeValue.
func Operand(arena *ir.Arena, typeValue ir.Value) *ir.Op {
	return ir.NewOp(arena, "pdl.operand", []ir.Value{typeValue}, []ir.Type{ir.ValT}, nil, 0)
}

// Operation constructs a pdl.operation op matching (or, in the rewrite
// half, constructing) an operation named name over the given erased
// operand/attribute/type values. attrNames names each AttributeT-typed
// entry of args, in the order those entries appear among args; pass nil
// when args carries no attribute operands.
func Operation(arena *ir.Arena, name string, args []ir.Value, attrNames []string) *ir.Op {
	attrs := map[string]ir.Attribute{"name": ir.StringAttr(name)}

	if len(attrNames) > 0 {
		elems := make([]ir.Attribute, len(attrNames))
		for i, n := range attrNames {
			elems[i] = ir.StringAttr(n)
		}

		attrs["attrNames"] = ir.ArrayAttr{Elements: elems}
	}

	return ir.NewOp(arena, "pdl.operation", args, []ir.Type{ir.OpT}, attrs, 0)
}

// Result constructs a pdl.result op projecting the index'th result of op.
func Result(arena *ir.Arena, op ir.Value, index int) *ir.Op {
	return ir.NewOp(arena, "pdl.result", []ir.Value{op}, []ir.Type{ir.ValT},
		map[string]ir.Attribute{"index": ir.NewIntegerAttr(int64(index), 32)}, 0)
}

// Rewrite constructs a pdl.rewrite op, opening the replacement region for
// the matched root operation.
func Rewrite(arena *ir.Arena, root ir.Value) *ir.Op {
	return ir.NewOp(arena, "pdl.rewrite", []ir.Value{root}, nil, nil, 1)
}

// Replace constructs a pdl.replace op, substituting root with the given
// replacement values.
func Replace(arena *ir.Arena, root ir.Value, with []ir.Value) *ir.Op {
	operands := append([]ir.Value{root}, with...)
	return ir.NewOp(arena, "pdl.replace", operands, nil, nil, 0)
}
