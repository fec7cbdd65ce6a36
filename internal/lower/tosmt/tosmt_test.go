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
package tosmt_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/arith"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/comb"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/eff"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/fn"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
	"github.com/xdsl-smt/xdsl-smt-go/internal/lower/tosmt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/smtprint"
)

// push appends op to block's op list and links its Parent, mirroring
// smtprint_test's own helper.
func push(block *ir.Block, op *ir.Op) *ir.Op {
	block.Ops = append(block.Ops, op)
	op.Parent = block

	return op
}

// buildFunc wraps build's ops into a func.func named name, returning
// resultType, whose body is built against the function's fresh entry block
// (with the given argument types).
func buildFunc(arena *ir.Arena, name string, resultType ir.Type, argTypes []ir.Type, build func(entry *ir.Block, args []ir.Value) ir.Value) *ir.Op {
	def := fn.Func(arena, name, resultType)
	entry := ir.NewBlock(arena, def.Region(0), argTypes...)
	def.Region(0).Blocks = append(def.Region(0).Blocks, entry)

	args := make([]ir.Value, len(entry.Args))
	for i, a := range entry.Args {
		args[i] = a
	}

	result := build(entry, args)
	push(entry, fn.Return(arena, []ir.Value{result}))

	return def
}

func TestArithConstantLowersToZeroAryDefineFun(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "eight3", ir.NewBitVecType(8), nil, func(entry *ir.Block, _ []ir.Value) ir.Value {
		c := push(entry, arith.Constant(arena, 3, 8))
		return c.Result(0)
	})
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	lowered, err := tosmt.Lower(m, tosmt.IntegerTypeLowerer{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	out := smtprint.NewPrinter().Print(lowered)

	if !strings.Contains(out, "(define-fun eight3 ()") || !strings.Contains(out, "(_ bv3 8)") {
		t.Fatalf("expected a 0-ary define-fun returning (_ bv3 8), got:\n%s", out)
	}
}

func TestVariadicAddFoldsLeftToRight(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "sum3", ir.NewBitVecType(8),
		[]ir.Type{ir.NewBitVecType(8), ir.NewBitVecType(8), ir.NewBitVecType(8)},
		func(entry *ir.Block, args []ir.Value) ir.Value {
			sum := push(entry, comb.Variadic(arena, "add", 8, args))
			return sum.Result(0)
		})
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	lowered, err := tosmt.Lower(m, tosmt.IntegerTypeLowerer{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	out := smtprint.NewPrinter().Print(lowered)

	if strings.Count(out, "bvadd") != 2 || !strings.Contains(out, "(bvadd (bvadd sum3_arg0 sum3_arg1) sum3_arg2)") {
		t.Fatalf("expected a 3-operand left fold to use exactly two bvadd calls, got:\n%s", out)
	}
}

func TestVariadicAndIdentityIsLiteralOne(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "emptyAnd", ir.NewBitVecType(4), nil, func(entry *ir.Block, _ []ir.Value) ir.Value {
		id := push(entry, comb.Variadic(arena, "and", 4, nil))
		return id.Result(0)
	})
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	lowered, err := tosmt.Lower(m, tosmt.IntegerTypeLowerer{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	out := smtprint.NewPrinter().Print(lowered)

	if !strings.Contains(out, "(_ bv1 4)") {
		t.Fatalf("expected the zero-operand comb.and identity to be the literal value 1 at width 4, got:\n%s", out)
	}
}

func TestCombFixedDivisionPoisonsOnZeroDivisor(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "div", ir.NewBitVecType(8),
		[]ir.Type{ir.NewBitVecType(8), ir.NewBitVecType(8)},
		func(entry *ir.Block, args []ir.Value) ir.Value {
			d := push(entry, comb.DivU(arena, args[0], args[1]))
			return d.Result(0)
		})
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	lowered, err := tosmt.Lower(m, tosmt.IntegerPoisonTypeLowerer{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	out := smtprint.NewPrinter().Print(lowered)

	if !strings.Contains(out, "bvudiv") || !strings.Contains(out, "Pair_") || !strings.Contains(out, "declare-datatypes") ||
		!strings.Contains(out, "(_ bv0 8)") {
		t.Fatalf("expected a poison-tracking division over a declared Pair sort, poisoned on a zero divisor, got:\n%s", out)
	}
}

func TestIntegerPoisonTypeLowererWrapsParametersInPairs(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "identity", ir.NewBitVecType(16), []ir.Type{ir.NewBitVecType(16)},
		func(_ *ir.Block, args []ir.Value) ir.Value { return args[0] })
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	lowered, err := tosmt.Lower(m, tosmt.IntegerPoisonTypeLowerer{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	out := smtprint.NewPrinter().Print(lowered)

	if !strings.Contains(out, "Pair_BitVec16_Bool") {
		t.Fatalf("expected the poison-tracking parameter/result type to be a declared (BitVec16, Bool) pair, got:\n%s", out)
	}
}

func TestMemoryAllocWriteReadRoundTrip(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "roundtrip", ir.NewBitVecType(32), []ir.Type{ir.StateT},
		func(entry *ir.Block, args []ir.Value) ir.Value {
			size := push(entry, arith.Constant(arena, 4, 64))
			alloc := push(entry, eff.Alloc(arena, args[0], size.Result(0)))
			state1, ptr := alloc.Result(0), alloc.Result(1)

			val := push(entry, arith.Constant(arena, 0x2a, 32))
			write := push(entry, eff.Write(arena, state1, ptr, val.Result(0)))
			state2 := write.Result(0)

			read := push(entry, eff.Read(arena, state2, ptr, ir.NewBitVecType(32)))

			return read.Result(1)
		})
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	lowered, err := tosmt.Lower(m, tosmt.IntegerTypeLowerer{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	out := smtprint.NewPrinter().Print(lowered)

	for _, want := range []string{"(as const", "store", "select", "bvule"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected the alloc/write/read sequence to use %q, got:\n%s", want, out)
		}
	}
}

func TestMemoryOutOfBoundsReadSetsUB(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "oob", ir.BoolT, []ir.Type{ir.StateT},
		func(entry *ir.Block, args []ir.Value) ir.Value {
			size := push(entry, arith.Constant(arena, 4, 64))
			alloc := push(entry, eff.Alloc(arena, args[0], size.Result(0)))
			state1, ptr := alloc.Result(0), alloc.Result(1)

			delta := push(entry, arith.Constant(arena, 100, 64))
			farPtr := push(entry, eff.OffsetPointer(arena, ptr, delta.Result(0)))

			read := push(entry, eff.Read(arena, state1, farPtr.Result(0), ir.NewBitVecType(8)))
			state2 := read.Result(0)

			toBool := push(entry, eff.ToBool(arena, state2))
			return toBool.Result(0)
		})
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	lowered, err := tosmt.Lower(m, tosmt.IntegerTypeLowerer{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	out := smtprint.NewPrinter().Print(lowered)

	if !strings.Contains(out, "bvule") || !strings.Contains(out, "(not ") {
		t.Fatalf("expected the bounds check to feed the ub flag via a negated bvule comparison, got:\n%s", out)
	}
}

func TestCombParityIsNotImplemented(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	def := buildFunc(arena, "par", ir.NewBitVecType(1), []ir.Type{ir.NewBitVecType(8)},
		func(entry *ir.Block, args []ir.Value) ir.Value {
			p := push(entry, comb.Parity(arena, args[0]))
			return p.Result(0)
		})
	m.Entry().Ops = append(m.Entry().Ops, def)
	def.Parent = m.Entry()

	_, err := tosmt.Lower(m, tosmt.IntegerTypeLowerer{})
	if !errors.Is(err, tosmt.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented for comb.parity, got: %v", err)
	}
}

func TestUnsupportedTopLevelStatementErrors(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena

	push(m.Entry(), arith.Constant(arena, 1, 8))

	_, err := tosmt.Lower(m, tosmt.IntegerTypeLowerer{})
	if !errors.Is(err, tosmt.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for a bare arith.constant at module top level, got: %v", err)
	}
}
