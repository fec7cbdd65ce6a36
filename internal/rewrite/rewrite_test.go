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
package rewrite_test

import (
	"errors"
	"testing"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/bv"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
	"github.com/xdsl-smt/xdsl-smt-go/internal/rewrite"
)

// doubleNegPattern rewrites bv.neg(bv.neg(x)) to x.
type doubleNegPattern struct{}

func (doubleNegPattern) Name() string  { return "double-neg" }
func (doubleNegPattern) Priority() int { return 0 }

func (doubleNegPattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "smt.bv.neg" {
		return rewrite.NotMatched()
	}

	inner, ok := op.Operands[0].(*ir.OpResult)
	if !ok || inner.Owner.Name != "smt.bv.neg" {
		return rewrite.NotMatched()
	}

	if err := b.ReplaceOp(op, nil, []ir.Value{inner.Owner.Operands[0]}); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// alwaysFailsPattern matches every op and always fails, used to exercise
// the PatternFailed error path.
type alwaysFailsPattern struct{}

func (alwaysFailsPattern) Name() string  { return "always-fails" }
func (alwaysFailsPattern) Priority() int { return -1 }

func (alwaysFailsPattern) TryRewrite(op *ir.Op, _ *ir.Builder) rewrite.Outcome {
	if op.Name != "smt.bv.add" {
		return rewrite.NotMatched()
	}

	return rewrite.Failed(errors.New("unsupported construct"))
}

func buildDoubleNeg(m *ir.Module) *ir.Op {
	arena := m.Arena
	entry := m.Entry()

	x := bv.Constant(arena, 5, 8)
	entry.Ops = append(entry.Ops, x)
	x.Parent = entry

	n1 := bv.Neg(arena, x.Result(0))
	entry.Ops = append(entry.Ops, n1)
	n1.Parent = entry

	n2 := bv.Neg(arena, n1.Result(0))
	entry.Ops = append(entry.Ops, n2)
	n2.Parent = entry

	use := bv.Add(arena, n2.Result(0), x.Result(0))
	entry.Ops = append(entry.Ops, use)
	use.Parent = entry

	return use
}

func TestApplyCollapsesDoubleNegation(t *testing.T) {
	m := ir.NewModule()
	use := buildDoubleNeg(m)

	if err := rewrite.Apply(m, []rewrite.Pattern{doubleNegPattern{}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	x, ok := use.Operands[1].(*ir.OpResult)
	if !ok {
		t.Fatalf("expected operand 1 to remain the original constant")
	}

	if use.Operands[0] != ir.Value(x) {
		t.Fatalf("expected double-negation to collapse to the original constant, got operand of type %T", use.Operands[0])
	}
}

func TestApplyReportsPatternFailure(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena
	entry := m.Entry()

	a := bv.Constant(arena, 1, 8)
	b := bv.Constant(arena, 2, 8)
	entry.Ops = append(entry.Ops, a, b)
	a.Parent, b.Parent = entry, entry

	add := bv.Add(arena, a.Result(0), b.Result(0))
	entry.Ops = append(entry.Ops, add)
	add.Parent = entry

	err := rewrite.Apply(m, []rewrite.Pattern{alwaysFailsPattern{}})
	if err == nil {
		t.Fatal("expected Apply to report the pattern's failure")
	}

	var rerr *rewrite.RewriteError
	if !errors.As(err, &rerr) || rerr.Kind != rewrite.PatternFailed {
		t.Fatalf("expected a PatternFailed RewriteError, got %v", err)
	}
}

// oscillatingPattern forever swaps a neg for another neg with a fresh
// operation identity, to exercise the oscillation guard.
type oscillatingPattern struct{}

func (oscillatingPattern) Name() string  { return "oscillating" }
func (oscillatingPattern) Priority() int { return 0 }

func (oscillatingPattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "smt.bv.neg" {
		return rewrite.NotMatched()
	}

	replacement := bv.Neg(b.Arena, op.Operands[0])
	if err := b.ReplaceOp(op, []*ir.Op{replacement}, nil); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

func TestApplyDetectsOscillation(t *testing.T) {
	m := ir.NewModule()
	arena := m.Arena
	entry := m.Entry()

	x := bv.Constant(arena, 1, 8)
	entry.Ops = append(entry.Ops, x)
	x.Parent = entry

	n := bv.Neg(arena, x.Result(0))
	entry.Ops = append(entry.Ops, n)
	n.Parent = entry

	err := rewrite.Apply(m, []rewrite.Pattern{oscillatingPattern{}})
	if err == nil {
		t.Fatal("expected Apply to detect oscillation")
	}

	var rerr *rewrite.RewriteError
	if !errors.As(err, &rerr) || rerr.Kind != rewrite.Oscillating {
		t.Fatalf("expected an Oscillating RewriteError, got %v", err)
	}
}
