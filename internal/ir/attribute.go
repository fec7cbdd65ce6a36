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

// Package ir implements the core intermediate representation: attributes,
// types, SSA values, operations, blocks, regions and modules.  This package
// has no knowledge of any particular dialect; dialects register operation
// definitions against it via the sibling dialect package.
package ir

import (
	"fmt"
	"math/big"
	"strings"
)

// Attribute is an immutable, structurally hashed value carrying compile-time
// data attached to an operation, or denoting a type.  Equality is always
// structural.
type Attribute interface {
	// Key returns a canonical string uniquely identifying this attribute's
	// structural value, suitable for use as a map key when interning.
	Key() string
	// Equal reports whether two attributes are structurally identical.
	Equal(other Attribute) bool
	// String renders the attribute in a human (and SMT-LIB-adjacent) form.
	String() string
}

// Type is the distinguished subset of attributes used to type SSA values.
type Type interface {
	Attribute
	isType()
}

// ===========================================================================
// Integer attribute (arbitrary precision, with a declared bit-width).
// ===========================================================================

// IntegerAttr is an arbitrary precision integer attribute, carrying its own
// bit-width.  It backs bit-vector constants (smt.bv.constant <v:w>) and
// plain compile-time integer literals (e.g. extract/concat indices).
type IntegerAttr struct {
	Value *big.Int
	Width uint
}

// NewIntegerAttr constructs an integer attribute from a native int64.
func NewIntegerAttr(value int64, width uint) IntegerAttr {
	return IntegerAttr{big.NewInt(value), width}
}

// Key implements Attribute.
func (a IntegerAttr) Key() string { return fmt.Sprintf("int<%d:%d>", a.Value, a.Width) }

// Equal implements Attribute.
func (a IntegerAttr) Equal(other Attribute) bool {
	o, ok := other.(IntegerAttr)
	return ok && a.Width == o.Width && a.Value.Cmp(o.Value) == 0
}

// String implements Attribute.
func (a IntegerAttr) String() string { return fmt.Sprintf("%s:i%d", a.Value.String(), a.Width) }

// InRange checks whether this attribute's value lies within [0, 2^Width).
func (a IntegerAttr) InRange() bool {
	if a.Value.Sign() < 0 {
		return false
	}

	limit := new(big.Int).Lsh(big.NewInt(1), a.Width)

	return a.Value.Cmp(limit) < 0
}

// ===========================================================================
// Boolean attribute
// ===========================================================================

// BoolAttr is a literal boolean compile-time value, backing smt.constant_bool.
type BoolAttr bool

// Key implements Attribute.
func (a BoolAttr) Key() string {
	if a {
		return "bool<true>"
	}

	return "bool<false>"
}

// Equal implements Attribute.
func (a BoolAttr) Equal(other Attribute) bool {
	o, ok := other.(BoolAttr)
	return ok && a == o
}

// String implements Attribute.
func (a BoolAttr) String() string {
	if a {
		return "true"
	}

	return "false"
}

// ===========================================================================
// String attribute
// ===========================================================================

// StringAttr is an attribute holding an opaque string, e.g. a function name
// or a dialect-qualified op name referenced from pdl.operation.
type StringAttr string

// Key implements Attribute.
func (a StringAttr) Key() string { return "str<" + string(a) + ">" }

// Equal implements Attribute.
func (a StringAttr) Equal(other Attribute) bool {
	o, ok := other.(StringAttr)
	return ok && a == o
}

// String implements Attribute.
func (a StringAttr) String() string { return string(a) }

// ===========================================================================
// Array attribute
// ===========================================================================

// ArrayAttr is an ordered sequence of attributes.
type ArrayAttr struct {
	Elements []Attribute
}

// Key implements Attribute.
func (a ArrayAttr) Key() string {
	var sb strings.Builder

	sb.WriteString("arr<")

	for i, e := range a.Elements {
		if i != 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(e.Key())
	}

	sb.WriteByte('>')

	return sb.String()
}

// Equal implements Attribute.
func (a ArrayAttr) Equal(other Attribute) bool {
	o, ok := other.(ArrayAttr)
	if !ok || len(a.Elements) != len(o.Elements) {
		return false
	}

	for i := range a.Elements {
		if !a.Elements[i].Equal(o.Elements[i]) {
			return false
		}
	}

	return true
}

// String implements Attribute.
func (a ArrayAttr) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// ===========================================================================
// Type attribute wrapper (an attribute which denotes a type)
// ===========================================================================

// TypeAttr wraps a Type so it can be carried as a named attribute (e.g. the
// "constantType" attribute of a pdl.type op).
type TypeAttr struct {
	Type Type
}

// Key implements Attribute.
func (a TypeAttr) Key() string { return "type<" + a.Type.Key() + ">" }

// Equal implements Attribute.
func (a TypeAttr) Equal(other Attribute) bool {
	o, ok := other.(TypeAttr)
	return ok && a.Type.Equal(o.Type)
}

// String implements Attribute.
func (a TypeAttr) String() string { return a.Type.String() }

// ===========================================================================
// Dialect-specific parametric attribute escape hatch
// ===========================================================================

// DialectAttr is the escape hatch for dialect-registered parametric
// attributes not otherwise covered above: a dialect-qualified name plus an
// ordered array of child attributes (mirrors a dialect.op qualified name).
type DialectAttr struct {
	Dialect  string
	Mnemonic string
	Params   []Attribute
}

// Key implements Attribute.
func (a DialectAttr) Key() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s.%s<", a.Dialect, a.Mnemonic)

	for i, p := range a.Params {
		if i != 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(p.Key())
	}

	sb.WriteByte('>')

	return sb.String()
}

// Equal implements Attribute.
func (a DialectAttr) Equal(other Attribute) bool {
	o, ok := other.(DialectAttr)
	if !ok || a.Dialect != o.Dialect || a.Mnemonic != o.Mnemonic || len(a.Params) != len(o.Params) {
		return false
	}

	for i := range a.Params {
		if !a.Params[i].Equal(o.Params[i]) {
			return false
		}
	}

	return true
}

// String implements Attribute.
func (a DialectAttr) String() string {
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		parts[i] = p.String()
	}

	return fmt.Sprintf("#%s.%s<%s>", a.Dialect, a.Mnemonic, strings.Join(parts, ", "))
}
