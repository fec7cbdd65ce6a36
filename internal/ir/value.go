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

// ValueID is a stable integer handle identifying a Value within its owning
// module's arena.  Handles remain valid for the lifetime of the module;
// erasing the owning op/block invalidates the handle.
type ValueID uint64

// Use records that operand Index of operation User refers to some value.
// Every Value's uses-list is exactly the set of Use records pointing back
// to it; the builder is responsible for keeping this consistent (data model
// invariant "uses consistency").
type Use struct {
	User  *Op
	Index int
}

// Value is either an operation result or a block argument.  Identity is by
// object, not by attribute equality: two distinct results of the same type
// are different values.
type Value interface {
	// ID returns this value's stable handle.
	ID() ValueID
	// Type returns this value's static type.
	Type() Type
	// SetType updates this value's static type in place (used by
	// modify_value_type); it never re-seats uses.
	SetType(Type)
	// Uses returns the current uses-list for this value.
	Uses() []Use
	// NameHint returns an optional human-readable name for diagnostics and
	// for the name_hint-derived SMT-LIB identifiers of the printer.
	NameHint() string
	// SetNameHint sets the diagnostic name hint.
	SetNameHint(string)

	addUse(user *Op, index int)
	removeUse(user *Op, index int)
}

// baseValue factors the use-tracking logic shared by OpResult and BlockArg.
type baseValue struct {
	id       ValueID
	typ      Type
	uses     []Use
	nameHint string
}

// ID implements Value.
func (v *baseValue) ID() ValueID { return v.id }

// Type implements Value.
func (v *baseValue) Type() Type { return v.typ }

// SetType implements Value.
func (v *baseValue) SetType(t Type) { v.typ = t }

// Uses implements Value.
func (v *baseValue) Uses() []Use {
	out := make([]Use, len(v.uses))
	copy(out, v.uses)

	return out
}

// NameHint implements Value.
func (v *baseValue) NameHint() string { return v.nameHint }

// SetNameHint implements Value.
func (v *baseValue) SetNameHint(name string) { v.nameHint = name }

func (v *baseValue) addUse(user *Op, index int) {
	v.uses = append(v.uses, Use{user, index})
}

func (v *baseValue) removeUse(user *Op, index int) {
	for i, u := range v.uses {
		if u.User == user && u.Index == index {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}

// OpResult is a Value owned by its producing operation, at a fixed result
// index.
type OpResult struct {
	baseValue

	Owner *Op
	Index int
}

// BlockArg is a Value owned by a block, at a fixed argument index.
type BlockArg struct {
	baseValue

	Owner *Block
	Index int
}

var (
	_ Value = (*OpResult)(nil)
	_ Value = (*BlockArg)(nil)
)
