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

// Package rewrite implements the greedy peephole rewrite engine: a
// worklist of candidate patterns applied to every reachable operation,
// revisiting newly inserted operations until the module reaches a fixed
// point (or oscillation is detected), generalised from the teacher's
// gadget-style local rewrites (pkg/air/gadgets) into a single reusable
// walker.
package rewrite

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// oscillationFactor bounds the total number of successful rewrites Apply
// will perform, as a multiple of the module's initial op count, before it
// gives up and reports oscillation. A rewrite that replaces an op erases it
// and mints a fresh one (see ir.Builder.ReplaceOp), so oscillating op
// identities cannot be tracked by OpID alone; bounding the aggregate rewrite
// count against module size catches a pattern set that never reaches a
// fixed point just as reliably, while tolerating legitimately long chains
// of simplification on a large module.
const oscillationFactor = 16

// oscillationFloor is the minimum rewrite budget regardless of module size,
// so a handful of ops cannot oscillate forever in fewer than this many
// steps.
const oscillationFloor = 16

// Outcome is the sum type a Pattern.TryRewrite returns: exactly one of
// NotMatched, Rewrote or Failed holds.
type Outcome struct {
	kind outcomeKind
	err  error
}

type outcomeKind int

const (
	outcomeNotMatched outcomeKind = iota
	outcomeRewrote
	outcomeFailed
)

// NotMatched reports that the pattern's precondition did not hold for this
// op; the applier should try the next pattern.
func NotMatched() Outcome { return Outcome{kind: outcomeNotMatched} }

// Rewrote reports that the pattern matched and has already mutated the
// module (via the supplied Builder); the applier should requeue any newly
// inserted ops and stop trying further patterns on the now-erased op.
func Rewrote() Outcome { return Outcome{kind: outcomeRewrote} }

// Failed reports that the pattern matched but could not complete the
// rewrite (e.g. an unsupported construct was encountered partway through);
// err describes why.
func Failed(err error) Outcome { return Outcome{kind: outcomeFailed, err: err} }

// Matched reports whether this outcome is Rewrote or Failed (i.e. not
// NotMatched): the op was claimed by this pattern, and the applier should
// not try any later pattern on it.
func (o Outcome) Matched() bool { return o.kind != outcomeNotMatched }

// IsRewrote reports whether the rewrite succeeded.
func (o Outcome) IsRewrote() bool { return o.kind == outcomeRewrote }

// Err returns the failure reason, or nil if the outcome is not Failed.
func (o Outcome) Err() error { return o.err }

// Pattern is a single candidate peephole transformation.  TryRewrite is
// given the current op and a builder scoped to its module; it returns
// NotMatched without touching the module if its precondition fails.
type Pattern interface {
	// Name identifies the pattern for logging and oscillation diagnostics.
	Name() string
	// Priority breaks ties when multiple patterns match the same op: higher
	// priority patterns are tried first.
	Priority() int
	TryRewrite(op *ir.Op, b *ir.Builder) Outcome
}

// ErrorKind enumerates the taxonomy of recoverable rewrite-engine failures.
type ErrorKind int

const (
	// HasUses indicates a safe erase was attempted on an op whose
	// results still have outstanding uses.
	HasUses ErrorKind = iota
	// PatternFailed indicates the pattern that claimed an op returned
	// Failed.
	PatternFailed
	// Oscillating indicates the total number of successful rewrites
	// exceeded the module's oscillation budget (see oscillationFactor)
	// without reaching a fixed point.
	Oscillating
)

func (k ErrorKind) String() string {
	switch k {
	case HasUses:
		return "HasUses"
	case PatternFailed:
		return "PatternFailed"
	case Oscillating:
		return "Oscillating"
	default:
		return "UnknownRewriteError"
	}
}

// RewriteError is a structured error describing why the applier stopped
// short of a fixed point.
type RewriteError struct {
	Kind ErrorKind
	// Op is the qualified name of the op in question, where applicable.
	Op  string
	Msg string
}

// Error implements the error interface.
func (e *RewriteError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Msg)
}

// sortedPatterns returns patterns ordered by descending priority, stable on
// registration order for ties.
func sortedPatterns(patterns []Pattern) []Pattern {
	out := append([]Pattern(nil), patterns...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() > out[j].Priority() })

	return out
}

// Apply runs patterns greedily over module to a fixed point: every
// reachable op is offered to each pattern (highest priority first) until
// one matches; a Rewrote outcome causes the whole module to be re-walked,
// since the rewrite may have inserted ops anywhere. Apply gives up and
// returns an *RewriteError once the total number of successful rewrites
// exceeds the module's oscillation budget (see oscillationFactor) without
// the module quiescing.
func Apply(m *ir.Module, patterns []Pattern) error {
	ordered := sortedPatterns(patterns)
	b := ir.NewBuilder(m)

	budget := countOps(m) * oscillationFactor
	if budget < oscillationFloor {
		budget = oscillationFloor
	}

	total := 0

	for {
		changed := false

		err := ir.Walk(m, func(op *ir.Op) error {
			for _, p := range ordered {
				outcome := p.TryRewrite(op, b)
				if !outcome.Matched() {
					continue
				}

				if outcome.Err() != nil {
					return &RewriteError{Kind: PatternFailed, Op: op.Name,
						Msg: fmt.Sprintf("pattern %q: %v", p.Name(), outcome.Err())}
				}

				total++
				if total > budget {
					log.WithFields(log.Fields{"op": op.Name, "pattern": p.Name(), "budget": budget}).Warn("rewrite oscillation budget exceeded")

					return &RewriteError{Kind: Oscillating, Op: op.Name,
						Msg: fmt.Sprintf("pattern %q: exceeded the %d-rewrite oscillation budget without reaching a fixed point", p.Name(), budget)}
				}

				log.WithFields(log.Fields{"op": op.Name, "pattern": p.Name()}).Debug("rewrote op")

				changed = true

				return nil
			}

			return nil
		})
		if err != nil {
			return err
		}

		if !changed {
			return nil
		}
	}
}

// countOps returns the number of operations currently reachable from
// module, used to scale the oscillation budget to the module's size.
func countOps(m *ir.Module) int {
	n := 0
	_ = ir.Walk(m, func(*ir.Op) error {
		n++
		return nil
	})

	return n
}
