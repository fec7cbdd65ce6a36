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

// Package pdldf defines the pdl.df dialect: the two dataflow-analysis hooks
// that let a pattern's precondition query solver-proved facts (e.g. known
// sign, known bits) about a matched value, attaching the corresponding SMT
// precondition during pdl-to-smt lowering rather than at match time.
package pdldf

import (
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

func init() {
	reg := dialect.Global()

	reg.Register(&dialect.OpDef{
		Name:     "pdl.df.get",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.ValT)},
		Results:  []dialect.OperandConstraint{dialect.Exactly(ir.AttributeT)},
		Attrs:    map[string]dialect.AttrConstraint{"domain": {Check: isStringAttr, Required: true}},
	})
	reg.Register(&dialect.OpDef{
		Name:     "pdl.df.attach",
		Operands: []dialect.OperandConstraint{dialect.Exactly(ir.OpT), dialect.Exactly(ir.AttributeT)},
		Attrs:    map[string]dialect.AttrConstraint{"domain": {Check: isStringAttr, Required: true}},
	})
}

func isStringAttr(a ir.Attribute) bool {
	_, ok := a.(ir.StringAttr)
	return ok
}

// Get constructs a pdl.df.get op, reading the named dataflow domain's fact
// about value.
func Get(arena *ir.Arena, domain string, value ir.Value) *ir.Op {
	return ir.NewOp(arena, "pdl.df.get", []ir.Value{value}, []ir.Type{ir.AttributeT},
		map[string]ir.Attribute{"domain": ir.StringAttr(domain)}, 0)
}

// Attach constructs a pdl.df.attach op, asserting that the named domain's
// fact holds of the result(s) of the constructed op.
func Attach(arena *ir.Arena, domain string, op, fact ir.Value) *ir.Op {
	return ir.NewOp(arena, "pdl.df.attach", []ir.Value{op, fact}, nil,
		map[string]ir.Attribute{"domain": ir.StringAttr(domain)}, 0)
}
