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

// Package fn defines the func source dialect: function definition, return,
// and call, the top-level units the tosmt pass lowers into smt.define_fun
// and smt.call.
package fn

import (
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

func init() {
	reg := dialect.Global()

	reg.Register(&dialect.OpDef{
		Name:  "func.func",
		Attrs: map[string]dialect.AttrConstraint{"name": {Check: isStringAttr, Required: true}},
	})
	reg.Register(&dialect.OpDef{
		Name:     "func.return",
		Operands: []dialect.OperandConstraint{dialect.AnyType()},
		Variadic: true,
	})
	reg.Register(&dialect.OpDef{
		Name:     "func.call",
		Operands: []dialect.OperandConstraint{dialect.AnyType()},
		Variadic: true,
		Results:  []dialect.OperandConstraint{dialect.AnyType()},
		Attrs:    map[string]dialect.AttrConstraint{"callee": {Check: isStringAttr, Required: true}},
	})
}

func isStringAttr(a ir.Attribute) bool {
	_, ok := a.(ir.StringAttr)
	return ok
}

// Func constructs a func.func op: a single region whose entry block's
// argument types are the function's parameter types, and whose single
// result type (carried as the op's own result) is the function's return
// type.
func Func(arena *ir.Arena, name string, resultType ir.Type) *ir.Op {
	return ir.NewOp(arena, "func.func", nil, []ir.Type{resultType},
		map[string]ir.Attribute{"name": ir.StringAttr(name)}, 1)
}

// Return constructs a func.return op.
func Return(arena *ir.Arena, values []ir.Value) *ir.Op {
	return ir.NewOp(arena, "func.return", values, nil, nil, 0)
}

// Call constructs a func.call op invoking callee with args, producing a
// single result of resultType.
func Call(arena *ir.Arena, callee string, args []ir.Value, resultType ir.Type) *ir.Op {
	return ir.NewOp(arena, "func.call", args, []ir.Type{resultType},
		map[string]ir.Attribute{"callee": ir.StringAttr(callee)}, 0)
}
