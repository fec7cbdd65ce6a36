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

// VerificationErrorKind enumerates the taxonomy of invariant violations
// that can be detected while verifying an operation or module.
type VerificationErrorKind int

const (
	// TypeMismatch indicates an operand or result type fails a registered
	// constraint.
	TypeMismatch VerificationErrorKind = iota
	// MissingAttribute indicates a required named attribute is absent.
	MissingAttribute
	// ArityMismatch indicates an operand/result/region count fails the
	// registered definition.
	ArityMismatch
	// OutOfRange indicates an integer/bit-vector attribute's value falls
	// outside its declared representable range.
	OutOfRange
	// DanglingUse indicates a use refers to a value whose defining op/block
	// does not dominate it, or that no longer exists.
	DanglingUse
	// UnknownOp indicates an operation name has no registered definition.
	UnknownOp
)

func (k VerificationErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case MissingAttribute:
		return "MissingAttribute"
	case ArityMismatch:
		return "ArityMismatch"
	case OutOfRange:
		return "OutOfRange"
	case DanglingUse:
		return "DanglingUse"
	case UnknownOp:
		return "UnknownOp"
	default:
		return "UnknownVerificationError"
	}
}

// VerificationError is a structured error reporting an invariant violation
// against a specific, named operation.
type VerificationError struct {
	Kind VerificationErrorKind
	// Op is the qualified name of the offending operation, e.g. "smt.bv.add".
	Op string
	// Msg is a human-readable detail message.
	Msg string
}

// NewVerificationError constructs a VerificationError.
func NewVerificationError(kind VerificationErrorKind, op string, msg string) *VerificationError {
	return &VerificationError{kind, op, msg}
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Msg)
}
