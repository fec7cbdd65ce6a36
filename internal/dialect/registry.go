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

// Package dialect holds the registry of operation definitions keyed by
// qualified name ("dialect.op"), plus a Trait virtual-table populated once
// at registration time.  Individual dialects (smt, bv, mem, eff, pdl, ...)
// each register their operations into the shared Registry from their own
// package's init().
package dialect

import (
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// Trait is a capability flag attached to an operation definition.  Traits
// are looked up by the pattern engine and the printer rather than tested
// with type assertions, matching the "replace inheritance with a virtual
// table" design note.
type Trait int

const (
	// Pure marks an operation as side-effect free and duplicable.
	Pure Trait = iota
	// SMTLibOp marks an operation as having a direct, custom SMT-LIB
	// printing (see Printer below).
	SMTLibOp
	// SimpleSMTLibOp marks an operation whose printing is always
	// "(<opname> <arg1> ... <argn>)".
	SimpleSMTLibOp
	// SMTLibSort marks a type as having a direct SMT-LIB sort printing.
	SMTLibSort
)

// OperandConstraint checks whether a candidate operand type is acceptable
// at a given position.
type OperandConstraint func(ir.Type) bool

// AttrConstraint checks whether a candidate attribute is acceptable, and
// whether the attribute is required.
type AttrConstraint struct {
	Check    func(ir.Attribute) bool
	Required bool
}

// VerifyFunc is an operation definition's custom verification hook, run
// after the structural operand/result/attribute constraints pass.
type VerifyFunc func(op *ir.Op) error

// Printer renders an SMTLibOp's custom textual form; arg is the already
// rendered operand expression for operand i.
type Printer func(op *ir.Op, arg func(i int) string) string

// OpDef is a registered operation definition: qualified name, operand and
// result arity/type constraints, named attribute descriptors, trait set,
// and an optional custom verify/print hook.
type OpDef struct {
	Name string

	Operands []OperandConstraint
	// Variadic, when true, permits any number of trailing operands beyond
	// len(Operands)-1, each satisfying the last constraint in Operands.
	Variadic bool

	Results []OperandConstraint

	Attrs map[string]AttrConstraint

	Traits map[Trait]bool

	Verify VerifyFunc
	Print  Printer
}

// HasTrait reports whether this definition carries the given trait.
func (d *OpDef) HasTrait(t Trait) bool { return d.Traits[t] }

// Registry is a read-only-after-init map from qualified operation name to
// its definition.  There is a single process-wide Registry, populated by
// every dialect package's init().
type Registry struct {
	defs map[string]*OpDef
}

var global = &Registry{defs: map[string]*OpDef{}}

// Global returns the process-wide dialect registry.
func Global() *Registry { return global }

// Register adds a definition to the registry.  It panics on a duplicate
// qualified name, since dialect registration happens once at program
// start-up and a collision is a programming error, not a runtime
// condition — mirroring the teacher's SchemaBuilder panic on duplicate
// module names.
func (r *Registry) Register(def *OpDef) {
	if _, ok := r.defs[def.Name]; ok {
		panic(fmt.Sprintf("dialect: operation %q already registered", def.Name))
	}

	r.defs[def.Name] = def
}

// Lookup returns the definition registered for name, or nil if unknown.
func (r *Registry) Lookup(name string) *OpDef { return r.defs[name] }

// Verify checks op's operand count/types, result count/types, and
// attributes against its registered definition, then runs the definition's
// custom Verify hook (if any).
func (r *Registry) Verify(op *ir.Op) error {
	def := r.Lookup(op.Name)
	if def == nil {
		return ir.NewVerificationError(ir.UnknownOp, op.Name, "no registered definition")
	}

	if err := checkArity(op, def); err != nil {
		return err
	}

	for i, c := range def.Operands {
		if i >= len(op.Operands) {
			break
		}

		if !c(op.Operands[i].Type()) {
			return ir.NewVerificationError(ir.TypeMismatch, op.Name,
				fmt.Sprintf("operand %d has unacceptable type %s", i, op.Operands[i].Type()))
		}
	}

	if def.Variadic && len(def.Operands) > 0 {
		last := def.Operands[len(def.Operands)-1]
		for i := len(def.Operands); i < len(op.Operands); i++ {
			if !last(op.Operands[i].Type()) {
				return ir.NewVerificationError(ir.TypeMismatch, op.Name,
					fmt.Sprintf("variadic operand %d has unacceptable type %s", i, op.Operands[i].Type()))
			}
		}
	}

	for i, c := range def.Results {
		if !c(op.Results[i].Type()) {
			return ir.NewVerificationError(ir.TypeMismatch, op.Name,
				fmt.Sprintf("result %d has unacceptable type %s", i, op.Results[i].Type()))
		}
	}

	for name, c := range def.Attrs {
		a, ok := op.Attr(name)
		if !ok {
			if c.Required {
				return ir.NewVerificationError(ir.MissingAttribute, op.Name, "missing attribute "+name)
			}

			continue
		}

		if c.Check != nil && !c.Check(a) {
			return ir.NewVerificationError(ir.TypeMismatch, op.Name, "attribute "+name+" failed its constraint")
		}
	}

	if def.Verify != nil {
		return def.Verify(op)
	}

	return nil
}

func checkArity(op *ir.Op, def *OpDef) error {
	if def.Variadic {
		if len(def.Operands) > 0 && len(op.Operands) < len(def.Operands)-1 {
			return ir.NewVerificationError(ir.ArityMismatch, op.Name,
				fmt.Sprintf("expected at least %d operands, got %d", len(def.Operands)-1, len(op.Operands)))
		}
	} else if len(op.Operands) != len(def.Operands) {
		return ir.NewVerificationError(ir.ArityMismatch, op.Name,
			fmt.Sprintf("expected %d operands, got %d", len(def.Operands), len(op.Operands)))
	}

	if len(op.Results) != len(def.Results) {
		return ir.NewVerificationError(ir.ArityMismatch, op.Name,
			fmt.Sprintf("expected %d results, got %d", len(def.Results), len(op.Results)))
	}

	return nil
}
