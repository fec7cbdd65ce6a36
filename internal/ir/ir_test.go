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

import "testing"

func TestOpResultUseTracking(t *testing.T) {
	m := NewModule()
	arena := m.Arena

	c1 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, map[string]Attribute{
		"value": NewIntegerAttr(1, 8),
	}, 0)
	c2 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, map[string]Attribute{
		"value": NewIntegerAttr(2, 8),
	}, 0)
	add := NewOp(arena, "smt.bv.add", []Value{c1.Result(0), c2.Result(0)}, []Type{NewBitVecType(8)}, nil, 0)

	if len(c1.Result(0).Uses()) != 1 {
		t.Fatalf("expected c1's result to have exactly one use, got %d", len(c1.Result(0).Uses()))
	}

	if add.Operands[0] != Value(c1.Result(0)) {
		t.Fatalf("expected add's first operand to be c1's result")
	}
}

func TestReplaceOperandKeepsUsesConsistent(t *testing.T) {
	m := NewModule()
	arena := m.Arena

	c1 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
	c2 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
	add := NewOp(arena, "smt.bv.add", []Value{c1.Result(0), c1.Result(0)}, []Type{NewBitVecType(8)}, nil, 0)

	add.ReplaceOperand(1, c2.Result(0))

	if len(c1.Result(0).Uses()) != 1 {
		t.Fatalf("expected c1's result to retain exactly one use after replacement, got %d", len(c1.Result(0).Uses()))
	}

	if len(c2.Result(0).Uses()) != 1 {
		t.Fatalf("expected c2's result to gain exactly one use, got %d", len(c2.Result(0).Uses()))
	}
}

func TestBuilderInsertAndErase(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	arena := m.Arena

	c1 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
	m.Entry().Ops = append(m.Entry().Ops, c1)
	c1.Parent = m.Entry()

	c2 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
	b.InsertOpBefore(c1, c2)

	if m.Entry().Ops[0] != c2 || m.Entry().Ops[1] != c1 {
		t.Fatalf("expected insertion order [c2, c1], got %v", m.Entry().Ops)
	}

	if err := b.EraseOp(c2, true); err != nil {
		t.Fatalf("unexpected error erasing unused op: %v", err)
	}

	if len(m.Entry().Ops) != 1 {
		t.Fatalf("expected one remaining op after erase, got %d", len(m.Entry().Ops))
	}
}

func TestBuilderEraseSafeFailsWithUses(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	arena := m.Arena

	c1 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
	m.Entry().Ops = append(m.Entry().Ops, c1)
	add := NewOp(arena, "smt.bv.add", []Value{c1.Result(0), c1.Result(0)}, []Type{NewBitVecType(8)}, nil, 0)
	m.Entry().Ops = append(m.Entry().Ops, add)

	if err := b.EraseOp(c1, true); err == nil {
		t.Fatalf("expected safe erase of a used op to fail")
	}
}

func TestBuilderReplaceOp(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	arena := m.Arena

	c1 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
	m.Entry().Ops = append(m.Entry().Ops, c1)
	c1.Parent = m.Entry()
	add := NewOp(arena, "smt.bv.add", []Value{c1.Result(0), c1.Result(0)}, []Type{NewBitVecType(8)}, nil, 0)
	m.Entry().Ops = append(m.Entry().Ops, add)
	add.Parent = m.Entry()
	user := NewOp(arena, "smt.assert", []Value{add.Result(0)}, nil, nil, 0)
	m.Entry().Ops = append(m.Entry().Ops, user)
	user.Parent = m.Entry()

	replacement := NewOp(arena, "smt.bv.mul", []Value{c1.Result(0), c1.Result(0)}, []Type{NewBitVecType(8)}, nil, 0)

	if err := b.ReplaceOp(add, []*Op{replacement}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Operands[0] != Value(replacement.Result(0)) {
		t.Fatalf("expected user's operand to be rewired to the replacement's result")
	}

	if len(replacement.Result(0).Uses()) != 1 {
		t.Fatalf("expected replacement result to have exactly one use, got %d", len(replacement.Result(0).Uses()))
	}
}

func TestWalkDoesNotRevisitMidWalkInsertions(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	arena := m.Arena

	c1 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
	m.Entry().Ops = append(m.Entry().Ops, c1)
	c1.Parent = m.Entry()

	var visited []string

	err := Walk(m, func(op *Op) error {
		visited = append(visited, op.Name)

		if op == c1 {
			c2 := NewOp(arena, "smt.bv.constant", nil, []Type{NewBitVecType(8)}, nil, 0)
			b.InsertOpAfter(c1, c2)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(visited) != 1 {
		t.Fatalf("a single Walk call should not itself revisit insertions made mid-walk, got %v", visited)
	}
}

func TestIntervalFullRange(t *testing.T) {
	iv := FullRange(4)

	if iv.Min().Int64() != 0 {
		t.Fatalf("expected min 0, got %v", iv.Min())
	}

	if iv.Max().Int64() != 15 {
		t.Fatalf("expected max 15, got %v", iv.Max())
	}
}

func TestIntegerAttrInRange(t *testing.T) {
	tests := []struct {
		value int64
		width uint
		want  bool
	}{
		{0, 8, true},
		{255, 8, true},
		{256, 8, false},
		{-1, 8, false},
	}

	for _, tc := range tests {
		attr := NewIntegerAttr(tc.value, tc.width)
		if got := attr.InRange(); got != tc.want {
			t.Errorf("IntegerAttr{%d, %d}.InRange() = %v, want %v", tc.value, tc.width, got, tc.want)
		}
	}
}
