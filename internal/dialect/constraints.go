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
package dialect

import "github.com/xdsl-smt/xdsl-smt-go/internal/ir"

// Exactly constrains an operand/result to be structurally equal to t.
func Exactly(t ir.Type) OperandConstraint {
	return func(got ir.Type) bool { return t.Equal(got) }
}

// AnyBitVec accepts any bit-vector type, regardless of width.
func AnyBitVec() OperandConstraint {
	return func(got ir.Type) bool {
		_, ok := got.(ir.BitVecType)
		return ok
	}
}

// AnyType accepts anything; used for polymorphic operands such as
// smt.utils.pair/first/second and smt.eq/distinct.
func AnyType() OperandConstraint {
	return func(ir.Type) bool { return true }
}

// AnyArray accepts any Array(K,V) type, regardless of key/value type.
func AnyArray() OperandConstraint {
	return func(got ir.Type) bool {
		_, ok := got.(ir.ArrayType)
		return ok
	}
}

// IsAttrKind constrains a named attribute to a specific Go concrete type,
// e.g. IsAttrKind[ir.IntegerAttr]().
func IsAttrKind[T ir.Attribute]() func(ir.Attribute) bool {
	return func(a ir.Attribute) bool {
		_, ok := a.(T)
		return ok
	}
}
