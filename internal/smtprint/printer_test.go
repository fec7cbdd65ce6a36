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
package smtprint_test

import (
	"strings"
	"testing"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/bv"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/smt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/utils"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
	"github.com/xdsl-smt/xdsl-smt-go/internal/smtprint"
)

func push(entry *ir.Block, op *ir.Op) *ir.Op {
	entry.Ops = append(entry.Ops, op)
	op.Parent = entry

	return op
}

func TestPrintDeclareAssertCheckSat(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena
	entry := m.Entry()

	x := push(entry, smt.DeclareConst(arena, ir.NewBitVecType(8)))
	c := bv.Constant(arena, 3, 8)
	eq := smt.Eq(arena, x.Result(0), c.Result(0))
	push(entry, smt.Assert(arena, eq.Result(0)))
	push(entry, smt.CheckSat(arena))

	out := smtprint.NewPrinter().Print(m)

	for _, want := range []string{
		"(declare-const", "(_ BitVec 8)", "(assert (= ", "(_ bv3 8)", "(check-sat)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintDefineFunWithParameters(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena
	entry := m.Entry()

	p0 := smt.Parameter(arena, "x", ir.NewBitVecType(8))
	neg := bv.Neg(arena, p0.Result(0))
	def := smt.DefineFun(arena, "negate", []ir.Value{p0.Result(0)}, neg.Result(0), ir.NewBitVecType(8))
	push(entry, def)

	out := smtprint.NewPrinter().Print(m)

	if !strings.Contains(out, "(define-fun negate ((x (_ BitVec 8))) (_ BitVec 8) (bvneg x))") {
		t.Fatalf("unexpected define-fun rendering:\n%s", out)
	}
}

func TestPrintExtract(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena
	entry := m.Entry()

	c := bv.Constant(arena, 200, 16)
	ext := bv.Extract(arena, c.Result(0), 0, 7)
	push(entry, smt.Assert(arena, smt.Eq(arena, ext.Result(0), ext.Result(0)).Result(0)))

	out := smtprint.NewPrinter().Print(m)

	if !strings.Contains(out, "((_ extract 7 0)") {
		t.Fatalf("expected an extract form, got:\n%s", out)
	}
}

func TestPrintSharedSubexpressionIntroducesLet(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena
	entry := m.Entry()

	x := push(entry, smt.DeclareConst(arena, ir.NewBitVecType(8)))
	neg := bv.Neg(arena, x.Result(0))
	add := bv.Add(arena, neg.Result(0), neg.Result(0))
	push(entry, smt.Assert(arena, smt.Distinct(arena, add.Result(0), x.Result(0)).Result(0)))
	push(entry, smt.CheckSat(arena))

	out := smtprint.NewPrinter().Print(m)

	if !strings.Contains(out, "(let ((tmp_") {
		t.Fatalf("expected a let binding for the shared (bvneg x) subexpression, got:\n%s", out)
	}
}

func TestPrintPairDeclaresDatatype(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena
	entry := m.Entry()

	a := bv.Constant(arena, 1, 8)
	b := bv.Constant(arena, 2, 8)
	pair := utils.Pair(arena, a.Result(0), b.Result(0))
	first := utils.First(arena, pair.Result(0))
	push(entry, smt.Assert(arena, smt.Eq(arena, first.Result(0), a.Result(0)).Result(0)))

	out := smtprint.NewPrinter().Print(m)

	if !strings.Contains(out, "declare-datatypes") || !strings.Contains(out, "mk-Pair_BitVec8_BitVec8") {
		t.Fatalf("expected a declare-datatypes command for the pair sort, got:\n%s", out)
	}
}

func TestPrintIsDeterministic(t *testing.T) {
	build := func() *ir.Module {
		m := ir.NewModule()
		arena := m.Arena
		entry := m.Entry()

		x := push(entry, smt.DeclareConst(arena, ir.NewBitVecType(32)))
		c := bv.Constant(arena, 7, 32)
		add := bv.Add(arena, x.Result(0), c.Result(0))
		push(entry, smt.Assert(arena, smt.Distinct(arena, add.Result(0), c.Result(0)).Result(0)))
		push(entry, smt.CheckSat(arena))

		return m
	}

	out1 := smtprint.NewPrinter().Print(build())
	out2 := smtprint.NewPrinter().Print(build())

	if out1 != out2 {
		t.Fatalf("expected byte-identical output across independent builds:\n%s\n---\n%s", out1, out2)
	}
}
