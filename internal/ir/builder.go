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

// Builder bundles the handful of structural mutations the rewrite engine
// (and, indirectly, every lowering pass) performs against a module, keeping
// the invariants of §3 intact across each one.  It holds no state of its
// own beyond the arena needed to mint fresh block/region handles when
// splicing detached blocks.
type Builder struct {
	Arena *Arena
}

// NewBuilder constructs a builder sharing the given module's arena.
func NewBuilder(m *Module) *Builder { return &Builder{Arena: m.Arena} }

// InsertOpBefore splices op into anchor's block immediately before anchor.
// op must currently be detached (Parent == nil).
func (b *Builder) InsertOpBefore(anchor, op *Op) {
	blk := anchor.Parent
	idx := blk.IndexOf(anchor)

	if idx < 0 {
		panic("anchor not found in its own parent block")
	}

	b.spliceAt(blk, idx, op)
}

// InsertOpAfter splices op into anchor's block immediately after anchor.
func (b *Builder) InsertOpAfter(anchor, op *Op) {
	blk := anchor.Parent
	idx := blk.IndexOf(anchor)

	if idx < 0 {
		panic("anchor not found in its own parent block")
	}

	b.spliceAt(blk, idx+1, op)
}

func (b *Builder) spliceAt(blk *Block, idx int, op *Op) {
	op.Parent = blk
	blk.Ops = append(blk.Ops, nil)
	copy(blk.Ops[idx+1:], blk.Ops[idx:])
	blk.Ops[idx] = op
}

// ReplaceOp splices newOps before old, rewires every use of old's results
// to either newResults (supplied one-to-one with old's results) or, if
// newResults is nil, to the correspondingly-indexed results of the last op
// in newOps, then erases old (unsafe: its own results are abandoned, having
// just been rewired).
func (b *Builder) ReplaceOp(old *Op, newOps []*Op, newResults []Value) error {
	for _, op := range newOps {
		b.InsertOpBefore(old, op)
	}

	var results []Value

	switch {
	case newResults != nil:
		results = newResults
	case len(newOps) > 0:
		last := newOps[len(newOps)-1]
		results = make([]Value, len(last.Results))

		for i, r := range last.Results {
			results[i] = r
		}
	default:
		results = nil
	}

	if len(results) != len(old.Results) {
		return fmt.Errorf("replace_op: %s has %d results but replacement supplies %d",
			old.Name, len(old.Results), len(results))
	}

	for i, oldRes := range old.Results {
		b.replaceAllUsesWith(oldRes, results[i])
	}

	return b.EraseOp(old, false)
}

// replaceAllUsesWith rewires every current use of old onto new.
func (b *Builder) replaceAllUsesWith(old Value, new Value) {
	for _, u := range old.Uses() {
		u.User.ReplaceOperand(u.Index, new)
	}
}

// EraseOp unlinks op from its parent block and drops its operand uses.  If
// safe is true and any result still has uses, it fails with HasUses
// (modelled as *RewriteError by the caller; here reported as a plain error
// since this package must not import the rewrite package).
func (b *Builder) EraseOp(op *Op, safe bool) error {
	if safe {
		for _, r := range op.Results {
			if len(r.Uses()) > 0 {
				return fmt.Errorf("HasUses: cannot safely erase %s: result %d still has uses", op.Name, r.Index)
			}
		}
	}

	op.detachOperands()

	if op.Parent != nil {
		idx := op.Parent.IndexOf(op)
		if idx >= 0 {
			op.Parent.Ops = append(op.Parent.Ops[:idx], op.Parent.Ops[idx+1:]...)
		}

		op.Parent = nil
	}

	return nil
}

// ModifyValueType changes v's static type in place without re-seating any
// of its uses.  Callers (lowering passes) are responsible for only doing
// this when the new type is a structurally valid re-interpretation (e.g.
// iN -> BitVec(N), or State -> Pair(Memory, Bool)); the core does not
// second-guess that judgement.
func (b *Builder) ModifyValueType(v Value, t Type) { v.SetType(t) }

// InlineBlockBefore moves every operation out of block and splices them
// into anchor's block immediately before anchor, then discards the now
// empty source block.  block must have no arguments (or have had them
// already substituted by the caller before calling this).
func (b *Builder) InlineBlockBefore(anchor *Op, block *Block) error {
	if len(block.Args) > 0 {
		return fmt.Errorf("inline_block_before: block still has %d unbound arguments", len(block.Args))
	}

	dst := anchor.Parent
	idx := dst.IndexOf(anchor)

	if idx < 0 {
		panic("anchor not found in its own parent block")
	}

	ops := block.Ops
	block.Ops = nil

	for _, op := range ops {
		op.Parent = nil
	}

	for i, op := range ops {
		b.spliceAt(dst, idx+i, op)
	}

	if block.Parent != nil {
		rgn := block.Parent
		for i, blk := range rgn.Blocks {
			if blk == block {
				rgn.Blocks = append(rgn.Blocks[:i], rgn.Blocks[i+1:]...)
				break
			}
		}
	}

	return nil
}

// Walk performs a stable pre-order traversal of every operation reachable
// from module, descending into nested regions as it encounters them.  fn is
// invoked on each op before its nested regions are visited; returning an
// error aborts the walk immediately.
func Walk(m *Module, fn func(*Op) error) error {
	return walkRegion(m.Region, fn)
}

func walkRegion(r *Region, fn func(*Op) error) error {
	for _, blk := range r.Blocks {
		// Copy the op slice up front: fn may mutate blk.Ops (insertions,
		// erasures) as a side effect of rewriting.  The rewrite engine
		// relies on re-walking to pick up newly inserted ops; a single
		// Walk call only promises to visit what existed at the time each
		// block was reached.
		ops := append([]*Op(nil), blk.Ops...)

		for _, op := range ops {
			if op.Parent == nil {
				// Already erased by an earlier step in this same walk.
				continue
			}

			if err := fn(op); err != nil {
				return err
			}

			for _, rgn := range op.Regions {
				if err := walkRegion(rgn, fn); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
