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

// Package tosmt implements the lower-to-smt pipeline: a structural,
// bottom-up rewrite of a source-dialect module (arith, comb, fn, ub,
// mem_effect) into the pure smt/smt.bv/smt.utils/smt.array core dialects
// that internal/smtprint can render. Every opaque source type (State,
// Pointer, Memory, BlockID, Block) is given a concrete encoding by the
// configured TypeLowerer, and every source value is lowered exactly once
// and memoized, following the arena's own single-static-assignment shape.
package tosmt

import (
	"errors"
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/bv"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/comb"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/mem"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/smt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/utils"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// ErrNotImplemented is returned for source constructs this pass recognizes
// but deliberately does not lower, mirroring the source project's own
// raise NotImplementedError() bodies for these op kinds.
var ErrNotImplemented = errors.New("tosmt: not implemented")

// ErrUnsupported is returned for an op this pass has no lowering rule for
// at all (an unrecognized dialect, or a construct outside this module's
// scope).
var ErrUnsupported = errors.New("tosmt: unsupported operation")

// TypeLowerer picks the concrete encoding for every source type, and
// reports whether poison tracking is active for plain bit-vector/boolean
// values. Two implementations are provided: IntegerTypeLowerer (poison-
// free) and IntegerPoisonTypeLowerer (every bit-vector/boolean becomes a
// (value, poison) pair).
type TypeLowerer interface {
	LowerType(t ir.Type) ir.Type
	Poison() bool
}

// blockConcrete, memoryConcrete, stateConcrete and pointerConcrete are the
// fixed concrete encodings of the opaque memory-model types, shared by both
// TypeLowerer implementations: the memory model does not itself depend on
// whether ordinary values carry poison.
//
//	BlockID  -> (_ BitVec 32)
//	Block    -> (Pair (_ BitVec 64) (Pair Bool (Array (_ BitVec 64) (_ BitVec 8))))
//	             size                live    bytes
//	Memory   -> (Pair (_ BitVec 32) (Array (_ BitVec 32) Block))
//	             next-fresh-id        blocks
//	Pointer  -> (Pair (_ BitVec 32) (_ BitVec 64))
//	             block id             byte offset
//	State    -> (Pair Memory Bool)
//	             memory      ub-triggered
var (
	blockIDConcrete = ir.NewBitVecType(32)
	blockConcrete   = ir.PairType{
		First:  ir.NewBitVecType(64),
		Second: ir.PairType{First: ir.BoolT, Second: mem.BytesType},
	}
	memoryConcrete = ir.PairType{
		First:  ir.NewBitVecType(32),
		Second: ir.ArrayType{Key_: blockIDConcrete, Value: blockConcrete},
	}
	pointerConcrete = ir.PairType{First: blockIDConcrete, Second: ir.NewBitVecType(64)}
	stateConcrete   = ir.PairType{First: memoryConcrete, Second: ir.BoolT}
)

// lowerBaseType maps every source type onto its concrete form, independent
// of poison tracking; IntegerTypeLowerer uses this result directly for
// BitVec/Bool, while IntegerPoisonTypeLowerer wraps it in a further
// (value, poison) Pair for exactly those two cases.
func lowerBaseType(t ir.Type) ir.Type {
	switch t.(type) {
	case ir.MemoryType:
		return memoryConcrete
	case ir.BlockIDType:
		return blockIDConcrete
	case ir.BlockType:
		return blockConcrete
	case ir.PointerType:
		return pointerConcrete
	case ir.StateType:
		return stateConcrete
	default:
		return t
	}
}

// IntegerTypeLowerer lowers plain bit-vectors and booleans to themselves:
// no poison is tracked, and a division/remainder by zero is simply left
// unconstrained rather than surfaced as an explicit poison value. An
// out-of-bounds memory access still sets the state's UB flag.
type IntegerTypeLowerer struct{}

// LowerType implements TypeLowerer.
func (IntegerTypeLowerer) LowerType(t ir.Type) ir.Type { return lowerBaseType(t) }

// Poison implements TypeLowerer.
func (IntegerTypeLowerer) Poison() bool { return false }

// IntegerPoisonTypeLowerer lowers every bit-vector or boolean type t to
// (Pair t Bool): the value alongside a flag for whether it is poisoned.
// Every lowered op ORs its operands' poison flags into its result's; the
// division/remainder family also poisons its result on a zero divisor.
type IntegerPoisonTypeLowerer struct{}

// LowerType implements TypeLowerer.
func (IntegerPoisonTypeLowerer) LowerType(t ir.Type) ir.Type {
	base := lowerBaseType(t)

	switch base.(type) {
	case ir.BitVecType, ir.BoolType:
		return ir.PairType{First: base, Second: ir.BoolT}
	default:
		return base
	}
}

// Poison implements TypeLowerer.
func (IntegerPoisonTypeLowerer) Poison() bool { return true }

// context carries the per-module lowering state: the destination arena,
// the configured TypeLowerer, and a memo table from source value
// to its (already lowered) replacement, so a value used many times is only
// lowered once.
type context struct {
	arena   *ir.Arena
	lowerer TypeLowerer
	values  map[ir.ValueID]ir.Value
}

// Lower rewrites src into a fresh module over the pure SMT core dialects,
// under the given type-lowering policy. Every top-level func.func is
// lowered into a smt.define_fun; a top-level smt.declare_const,
// smt.assert, smt.check_sat or smt.define_fun is copied across unchanged,
// since it requires no source-dialect lowering. Any other top-level op
// fails with ErrUnsupported.
func Lower(src *ir.Module, lowerer TypeLowerer) (*ir.Module, error) {
	dst := ir.NewModule()
	c := &context{arena: dst.Arena, lowerer: lowerer, values: map[ir.ValueID]ir.Value{}}

	for _, op := range src.Entry().Ops {
		if op.Name == "func.func" {
			def, err := c.lowerFunc(op)
			if err != nil {
				return nil, err
			}

			dst.Entry().Ops = append(dst.Entry().Ops, def)
			def.Parent = dst.Entry()

			continue
		}

		lowered, err := c.lowerStatement(op)
		if err != nil {
			return nil, err
		}

		dst.Entry().Ops = append(dst.Entry().Ops, lowered...)
		for _, s := range lowered {
			s.Parent = dst.Entry()
		}
	}

	return dst, nil
}

// LowerSingleOp lowers a single, freshly constructed source op whose
// operands are themselves already-lowered SMT values (rather than source
// values requiring recursive lowering), dispatching through the same
// per-kind table Lower uses for a whole function body. This is
// internal/lower/pdltosmt's entry point for materializing and lowering the
// op a matched pdl.operation stands for, so a PDL pattern can exercise this
// pass's full arith/comb/mem_effect coverage rather than a hand-rolled
// subset.
func LowerSingleOp(arena *ir.Arena, lowerer TypeLowerer, op *ir.Op) ([]ir.Value, error) {
	c := &context{arena: arena, lowerer: lowerer, values: map[ir.ValueID]ir.Value{}}
	for _, v := range op.Operands {
		c.values[v.ID()] = v
	}

	return c.lowerOp(op)
}

// lowerStatement lowers a single top-level statement. smt.declare_const,
// smt.assert and smt.check_sat never need source-dialect lowering, so they
// are passed through as-is (scenario modules may build directly in terms of
// the pure core dialects alongside source-level functions).
func (c *context) lowerStatement(op *ir.Op) ([]*ir.Op, error) {
	switch op.Name {
	case "smt.declare_const", "smt.assert", "smt.check_sat", "smt.define_fun":
		return []*ir.Op{op}, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a valid top-level statement", ErrUnsupported, op.Name)
	}
}

// lowerFunc lowers a func.func into a smt.define_fun: its block arguments
// become smt.parameter values, its body is lowered structurally following
// its func.return operand, and the whole function becomes a single
// expression (this pass assumes, per the data model, that a source function
// has no internal control flow beyond straight-line def-use).
func (c *context) lowerFunc(op *ir.Op) (*ir.Op, error) {
	name := string(op.Attrs["name"].(ir.StringAttr))
	entry := op.Region(0).Blocks[0]

	params := make([]ir.Value, len(entry.Args))

	for i, arg := range entry.Args {
		lt := c.lowerer.LowerType(arg.Type())
		p := smt.Parameter(c.arena, fmt.Sprintf("%s_arg%d", name, i), lt)
		c.values[arg.ID()] = p.Result(0)
		params[i] = p.Result(0)
	}

	var ret *ir.Op

	for _, inner := range entry.Ops {
		if inner.Name == "func.return" {
			ret = inner
			continue
		}

		if _, err := c.lowerValue(inner.Result(0)); err != nil {
			return nil, err
		}
	}

	if ret == nil {
		return nil, fmt.Errorf("%w: func.func %q has no func.return", ErrUnsupported, name)
	}

	body, err := c.lowerValue(ret.Operands[0])
	if err != nil {
		return nil, err
	}

	resultType := c.lowerer.LowerType(op.Result(0).Type())

	return smt.DefineFun(c.arena, name, params, body, resultType), nil
}

// lowerValue returns op's lowered replacement value, memoized: every source
// value is lowered exactly once regardless of its use count, mirroring
// the arena's own hash-consing discipline.
func (c *context) lowerValue(v ir.Value) (ir.Value, error) {
	if lowered, ok := c.values[v.ID()]; ok {
		return lowered, nil
	}

	res, ok := v.(*ir.OpResult)
	if !ok {
		return nil, fmt.Errorf("%w: a block argument was referenced outside of its owning function's parameter list", ErrUnsupported)
	}

	results, err := c.lowerOp(res.Owner)
	if err != nil {
		return nil, err
	}

	for i, r := range results {
		c.values[res.Owner.Result(i).ID()] = r
	}

	return c.values[v.ID()], nil
}

// split decomposes a lowered (value, poison) pair into its raw value and
// poison flag; under a poison-free lowerer, poison is always nil and raw is
// just v unchanged.
func (c *context) split(v ir.Value) (raw ir.Value, poison ir.Value) {
	if !c.lowerer.Poison() {
		return v, nil
	}

	return utils.First(c.arena, v).Result(0), utils.Second(c.arena, v).Result(0)
}

// join re-composes a raw value and an optional poison flag into the shape
// lowerValue callers expect; poison == nil means "no poison tracking",
// and join returns raw unchanged.
func (c *context) join(raw ir.Value, poison ir.Value) ir.Value {
	if poison == nil {
		return raw
	}

	return utils.Pair(c.arena, raw, poison).Result(0)
}

// orPoisons ORs together every non-nil poison flag in ps, defaulting to a
// literal false when none of them carried one; returns nil outright when
// poison tracking is off.
func (c *context) orPoisons(ps []ir.Value) ir.Value {
	if !c.lowerer.Poison() {
		return nil
	}

	var acc ir.Value

	for _, p := range ps {
		if p == nil {
			continue
		}

		if acc == nil {
			acc = p
			continue
		}

		acc = smt.Or(c.arena, acc, p).Result(0)
	}

	if acc == nil {
		acc = smt.ConstantBool(c.arena, false).Result(0)
	}

	return acc
}

// splitState/joinState, splitMemory/joinMemory, splitPointer/joinPointer
// and splitBlock/joinBlock decompose and recompose the fixed memory-model
// product encodings. These are distinct from split/join above: a State's
// ub flag is an explicit effect-domain fact threaded by mem_effect lowering,
// not the generic poison duality plain arith/comb values carry, so the two
// mechanisms are kept deliberately separate.
func (c *context) splitState(v ir.Value) (memory ir.Value, ub ir.Value) {
	return utils.First(c.arena, v).Result(0), utils.Second(c.arena, v).Result(0)
}

func (c *context) joinState(memory, ub ir.Value) ir.Value {
	return utils.Pair(c.arena, memory, ub).Result(0)
}

func (c *context) splitMemory(v ir.Value) (counter ir.Value, blocks ir.Value) {
	return utils.First(c.arena, v).Result(0), utils.Second(c.arena, v).Result(0)
}

func (c *context) joinMemory(counter, blocks ir.Value) ir.Value {
	return utils.Pair(c.arena, counter, blocks).Result(0)
}

func (c *context) splitPointer(v ir.Value) (id ir.Value, offset ir.Value) {
	return utils.First(c.arena, v).Result(0), utils.Second(c.arena, v).Result(0)
}

func (c *context) joinPointer(id, offset ir.Value) ir.Value {
	return utils.Pair(c.arena, id, offset).Result(0)
}

func (c *context) splitBlock(v ir.Value) (size, live, bytes ir.Value) {
	size = utils.First(c.arena, v).Result(0)
	rest := utils.Second(c.arena, v).Result(0)
	live = utils.First(c.arena, rest).Result(0)
	bytes = utils.Second(c.arena, rest).Result(0)

	return
}

func (c *context) joinBlock(size, live, bytes ir.Value) ir.Value {
	return utils.Pair(c.arena, size, utils.Pair(c.arena, live, bytes).Result(0)).Result(0)
}

// arithCtor and combFixedCtor dispatch a source binary op's mnemonic
// (stripped of its dialect prefix) onto the smt.bv constructor it lowers
// to.
var arithCtor = map[string]func(*ir.Arena, ir.Value, ir.Value) *ir.Op{
	"add": bv.Add, "sub": bv.Sub, "mul": bv.Mul,
	"divs": bv.SDiv, "divu": bv.UDiv, "rems": bv.SRem, "remu": bv.URem,
	"shl": bv.Shl, "shrs": bv.AShr, "shru": bv.LShr,
}

var combFixedCtor = map[string]func(*ir.Arena, ir.Value, ir.Value) *ir.Op{
	"divs": bv.SDiv, "divu": bv.UDiv, "mods": bv.SMod, "modu": bv.URem,
	"shl": bv.Shl, "shrs": bv.AShr, "shru": bv.LShr,
}

// divisionOps names every fixed binary op whose rhs==0 is a poison-raising
// condition (the source's own division/remainder/modulo family).
var divisionOps = map[string]bool{
	"divs": true, "divu": true, "rems": true, "remu": true, "mods": true, "modu": true,
}

// variadicIdentity gives the literal (width w, not corrected beyond width)
// identity constant for every comb variadic family, per the source
// rewrite's own n==0 base case: 0 for add/or/xor, 1 for mul/and. The bvand
// identity is mathematically all-ones, not 1; this pass keeps the letter of
// that rule rather than "fixing" it, since only the identity constant's
// width (not its value) is a documented correction.
var variadicIdentity = map[string]int64{"add": 0, "or": 0, "xor": 0, "mul": 1, "and": 1}

func isVariadicComb(name string) bool {
	for _, n := range comb.VariadicNames {
		if "comb."+n == name {
			return true
		}
	}

	return false
}

// lowerOp lowers a single source op (already structurally reached via
// lowerValue) and returns its lowered result values, in result order.
func (c *context) lowerOp(op *ir.Op) ([]ir.Value, error) {
	switch {
	case op.Name == "arith.constant":
		return c.lowerArithConstant(op)
	case isArithBinary(op.Name):
		name := op.Name[len("arith."):]
		return c.lowerFixedBinary(op, arithCtor[name], name)
	case op.Name == "arith.cmp":
		return c.lowerCompare(op, string(op.Attrs["predicate"].(ir.StringAttr)))
	case op.Name == "comb.icmp":
		return c.lowerCompare(op, string(op.Attrs["predicate"].(ir.StringAttr)))
	case isVariadicComb(op.Name):
		return c.lowerVariadic(op)
	case isCombFixed(op.Name):
		name := op.Name[len("comb."):]
		return c.lowerFixedBinary(op, combFixedCtor[name], name)
	case op.Name == "comb.mux":
		return c.lowerMux(op)
	case op.Name == "comb.concat":
		return c.lowerConcat(op)
	case op.Name == "comb.parity":
		return nil, fmt.Errorf("%w: comb.parity", ErrNotImplemented)
	case op.Name == "comb.extract":
		return nil, fmt.Errorf("%w: comb.extract", ErrNotImplemented)
	case op.Name == "comb.replicate":
		return nil, fmt.Errorf("%w: comb.replicate", ErrNotImplemented)
	case op.Name == "func.call":
		return c.lowerCall(op)
	case op.Name == "ub.trigger":
		return c.lowerUBTrigger(op)
	case op.Name == "ub.to_bool":
		return c.lowerUBToBool(op)
	case op.Name == "mem_effect.alloc":
		return c.lowerAlloc(op)
	case op.Name == "mem_effect.offset_pointer":
		return c.lowerOffsetPointer(op)
	case op.Name == "mem_effect.read":
		return c.lowerRead(op)
	case op.Name == "mem_effect.write":
		return c.lowerWrite(op)
	default:
		return nil, fmt.Errorf("%w: %s has no tosmt lowering", ErrUnsupported, op.Name)
	}
}

func isArithBinary(name string) bool {
	for _, n := range []string{"add", "sub", "mul", "divs", "divu", "rems", "remu", "shl", "shrs", "shru"} {
		if "arith."+n == name {
			return true
		}
	}

	return false
}

func isCombFixed(name string) bool {
	for _, n := range []string{"divs", "divu", "mods", "modu", "shl", "shrs", "shru"} {
		if "comb."+n == name {
			return true
		}
	}

	return false
}

func (c *context) lowerArithConstant(op *ir.Op) ([]ir.Value, error) {
	val := op.Attrs["value"].(ir.IntegerAttr)
	result := bv.Constant(c.arena, val.Value.Int64(), val.Width).Result(0)

	if !c.lowerer.Poison() {
		return []ir.Value{result}, nil
	}

	return []ir.Value{c.join(result, smt.ConstantBool(c.arena, false).Result(0))}, nil
}

// lowerFixedBinary lowers any two-operand, same-width source op onto its
// smt.bv equivalent, ORing in both operands' poison and, for the
// division/remainder/modulo family, an extra poison condition for a zero
// divisor.
func (c *context) lowerFixedBinary(op *ir.Op, ctor func(*ir.Arena, ir.Value, ir.Value) *ir.Op, name string) ([]ir.Value, error) {
	la, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	lb, err := c.lowerValue(op.Operands[1])
	if err != nil {
		return nil, err
	}

	araw, apoison := c.split(la)
	braw, bpoison := c.split(lb)

	result := ctor(c.arena, araw, braw).Result(0)

	poisons := []ir.Value{apoison, bpoison}

	if divisionOps[name] {
		width := braw.Type().(ir.BitVecType).Width
		isZero := smt.Eq(c.arena, braw, bv.Constant(c.arena, 0, width).Result(0)).Result(0)
		poisons = append(poisons, isZero)
	}

	return []ir.Value{c.join(result, c.orPoisons(poisons))}, nil
}

// lowerCompare lowers arith.cmp/comb.icmp's shared predicate set: eq/ne go
// through smt.eq/smt.distinct, and the other eight through bv.PredicateOf.
func (c *context) lowerCompare(op *ir.Op, predicate string) ([]ir.Value, error) {
	la, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	lb, err := c.lowerValue(op.Operands[1])
	if err != nil {
		return nil, err
	}

	araw, apoison := c.split(la)
	braw, bpoison := c.split(lb)

	var result ir.Value

	switch predicate {
	case "eq":
		result = smt.Eq(c.arena, araw, braw).Result(0)
	case "ne":
		result = smt.Distinct(c.arena, araw, braw).Result(0)
	default:
		ctor, ok := bv.PredicateOf(predicate)
		if !ok {
			return nil, fmt.Errorf("%w: comparison predicate %q", ErrNotImplemented, predicate)
		}

		result = ctor(c.arena, araw, braw).Result(0)
	}

	return []ir.Value{c.join(result, c.orPoisons([]ir.Value{apoison, bpoison}))}, nil
}

// lowerVariadic folds a comb variadic family left-to-right, substituting
// the literal identity constant (see variadicIdentity) for the zero-operand
// case and passing a single operand through unchanged.
func (c *context) lowerVariadic(op *ir.Op) ([]ir.Value, error) {
	name := op.Name[len("comb."):]

	width, ok := op.Result(0).Type().(ir.BitVecType)
	if !ok {
		return nil, fmt.Errorf("%w: %s has a non-bit-vector result", ErrUnsupported, op.Name)
	}

	ctor := map[string]func(*ir.Arena, ir.Value, ir.Value) *ir.Op{
		"add": bv.Add, "mul": bv.Mul, "and": bv.And, "or": bv.Or, "xor": bv.Xor,
	}[name]

	if len(op.Operands) == 0 {
		result := bv.Constant(c.arena, variadicIdentity[name], width.Width).Result(0)

		if !c.lowerer.Poison() {
			return []ir.Value{result}, nil
		}

		return []ir.Value{c.join(result, smt.ConstantBool(c.arena, false).Result(0))}, nil
	}

	var (
		raws    []ir.Value
		poisons []ir.Value
	)

	for _, o := range op.Operands {
		lv, err := c.lowerValue(o)
		if err != nil {
			return nil, err
		}

		raw, poison := c.split(lv)
		raws = append(raws, raw)
		poisons = append(poisons, poison)
	}

	acc := raws[0]
	for _, r := range raws[1:] {
		acc = ctor(c.arena, acc, r).Result(0)
	}

	return []ir.Value{c.join(acc, c.orPoisons(poisons))}, nil
}

// lowerMux lowers comb.mux via smt.ite, composing poison so that a poisoned
// condition poisons the result outright and an unpoisoned condition
// forwards exactly the poison of whichever branch was actually selected.
func (c *context) lowerMux(op *ir.Op) ([]ir.Value, error) {
	lc, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	lt, err := c.lowerValue(op.Operands[1])
	if err != nil {
		return nil, err
	}

	lf, err := c.lowerValue(op.Operands[2])
	if err != nil {
		return nil, err
	}

	craw, cpoison := c.split(lc)
	traw, tpoison := c.split(lt)
	fraw, fpoison := c.split(lf)

	result := smt.Ite(c.arena, craw, traw, fraw).Result(0)

	if !c.lowerer.Poison() {
		return []ir.Value{result}, nil
	}

	branchPoison := smt.Ite(c.arena, craw, tpoison, fpoison).Result(0)
	poison := smt.Or(c.arena, cpoison, branchPoison).Result(0)

	return []ir.Value{c.join(result, poison)}, nil
}

// lowerConcat left-folds comb.concat's operands through smt.bv.concat,
// most-significant operand first, matching Concat's own width convention.
func (c *context) lowerConcat(op *ir.Op) ([]ir.Value, error) {
	if len(op.Operands) == 0 {
		return nil, fmt.Errorf("%w: comb.concat with zero operands", ErrUnsupported)
	}

	var (
		raws    []ir.Value
		poisons []ir.Value
	)

	for _, o := range op.Operands {
		lv, err := c.lowerValue(o)
		if err != nil {
			return nil, err
		}

		raw, poison := c.split(lv)
		raws = append(raws, raw)
		poisons = append(poisons, poison)
	}

	acc := raws[0]
	for _, r := range raws[1:] {
		acc = bv.Concat(c.arena, acc, r).Result(0)
	}

	return []ir.Value{c.join(acc, c.orPoisons(poisons))}, nil
}

// lowerCall lowers a func.call into a smt.call referencing the same callee
// name: the callee function itself is lowered independently (as its own
// top-level func.func), so only the call site's operands need lowering
// here.
func (c *context) lowerCall(op *ir.Op) ([]ir.Value, error) {
	callee := string(op.Attrs["callee"].(ir.StringAttr))

	args := make([]ir.Value, len(op.Operands))

	for i, o := range op.Operands {
		lv, err := c.lowerValue(o)
		if err != nil {
			return nil, err
		}

		args[i] = lv
	}

	resultType := c.lowerer.LowerType(op.Result(0).Type())

	return []ir.Value{smt.Call(c.arena, callee, args, resultType).Result(0)}, nil
}

func (c *context) lowerUBTrigger(op *ir.Op) ([]ir.Value, error) {
	sv, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	memory, _ := c.splitState(sv)

	return []ir.Value{c.joinState(memory, smt.ConstantBool(c.arena, true).Result(0))}, nil
}

func (c *context) lowerUBToBool(op *ir.Op) ([]ir.Value, error) {
	sv, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	_, ub := c.splitState(sv)

	return []ir.Value{ub}, nil
}

// lowerAlloc lowers mem_effect.alloc: the memory's fresh-id counter mints
// this allocation's BlockID and advances; a new, zero-initialized,
// live block of the requested size is stored at that id; the returned
// pointer addresses offset 0 of the new block.
func (c *context) lowerAlloc(op *ir.Op) ([]ir.Value, error) {
	sv, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	szv, err := c.lowerValue(op.Operands[1])
	if err != nil {
		return nil, err
	}

	memory, ub := c.splitState(sv)
	counter, blocks := c.splitMemory(memory)
	sizeRaw, sizePoison := c.split(szv)

	id := counter
	newCounter := bv.Add(c.arena, counter, bv.Constant(c.arena, 1, 32).Result(0)).Result(0)

	zeroByte := bv.Constant(c.arena, 0, 8).Result(0)
	zeroBytes := smt.ArrayConst(c.arena, mem.BytesType, zeroByte).Result(0)
	newBlock := c.joinBlock(sizeRaw, smt.ConstantBool(c.arena, true).Result(0), zeroBytes)

	newBlocks := smt.ArrayStore(c.arena, blocks, id, newBlock).Result(0)
	newMemory := c.joinMemory(newCounter, newBlocks)

	newUb := ub
	if sizePoison != nil {
		newUb = smt.Or(c.arena, ub, sizePoison).Result(0)
	}

	newState := c.joinState(newMemory, newUb)
	ptr := c.joinPointer(id, bv.Constant(c.arena, 0, 64).Result(0))

	return []ir.Value{newState, ptr}, nil
}

// lowerOffsetPointer lowers mem_effect.offset_pointer by adding delta's raw
// value into the pointer's byte offset. delta's poison (if any) has no
// channel to propagate through in this op's signature (Pointer carries no
// poison slot of its own), so it is dropped: a poisoned offset silently
// computes an offset pointer rather than failing here, surfacing instead
// only once that pointer is actually dereferenced and found out of bounds.
func (c *context) lowerOffsetPointer(op *ir.Op) ([]ir.Value, error) {
	pv, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	dv, err := c.lowerValue(op.Operands[1])
	if err != nil {
		return nil, err
	}

	id, offset := c.splitPointer(pv)
	deltaRaw, _ := c.split(dv)

	newOffset := bv.Add(c.arena, offset, deltaRaw).Result(0)

	return []ir.Value{c.joinPointer(id, newOffset)}, nil
}

// lowerRead lowers mem_effect.read: the target block is looked up by id,
// the access is bounds-checked (offset + access-width/8 <= block size), and
// the raw bytes are reinterpreted as the requested result type. An
// out-of-bounds access sets the returned state's ub flag; this byte-level
// memory model carries no per-byte poison of its own, so under poison
// tracking the returned value's poison flag is always false (the bounds
// violation is visible only via the state, not via extra value poisoning).
func (c *context) lowerRead(op *ir.Op) ([]ir.Value, error) {
	sv, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	pv, err := c.lowerValue(op.Operands[1])
	if err != nil {
		return nil, err
	}

	memory, ub := c.splitState(sv)
	_, blocks := c.splitMemory(memory)
	id, offset := c.splitPointer(pv)

	block := smt.ArraySelect(c.arena, blocks, id).Result(0)
	size, _, bytes := c.splitBlock(block)

	accessType, ok := op.Result(1).Type().(ir.BitVecType)
	if !ok {
		return nil, fmt.Errorf("%w: mem_effect.read of a non-bit-vector type", ErrUnsupported)
	}

	accessBytes := bv.Constant(c.arena, int64(accessType.Width/8), 64).Result(0)
	accessEnd := bv.Add(c.arena, offset, accessBytes).Result(0)
	inBounds := bv.Ule(c.arena, accessEnd, size).Result(0)
	outOfBounds := smt.Not(c.arena, inBounds).Result(0)

	rawValue := mem.ReadBytes(c.arena, bytes, offset, accessType).Result(0)

	var value ir.Value = rawValue
	if c.lowerer.Poison() {
		value = c.join(rawValue, smt.ConstantBool(c.arena, false).Result(0))
	}

	newUb := smt.Or(c.arena, ub, outOfBounds).Result(0)
	newState := c.joinState(memory, newUb)

	return []ir.Value{newState, value}, nil
}

// lowerWrite lowers mem_effect.write symmetrically to lowerRead: the target
// block's bytes are updated in place and the result array re-stored at the
// same id, with the same bounds check feeding the state's ub flag, plus
// the written value's own poison (if any).
func (c *context) lowerWrite(op *ir.Op) ([]ir.Value, error) {
	sv, err := c.lowerValue(op.Operands[0])
	if err != nil {
		return nil, err
	}

	pv, err := c.lowerValue(op.Operands[1])
	if err != nil {
		return nil, err
	}

	vv, err := c.lowerValue(op.Operands[2])
	if err != nil {
		return nil, err
	}

	memory, ub := c.splitState(sv)
	counter, blocks := c.splitMemory(memory)
	id, offset := c.splitPointer(pv)
	valueRaw, valuePoison := c.split(vv)

	block := smt.ArraySelect(c.arena, blocks, id).Result(0)
	size, live, bytes := c.splitBlock(block)

	width, ok := valueRaw.Type().(ir.BitVecType)
	if !ok {
		return nil, fmt.Errorf("%w: mem_effect.write of a non-bit-vector value", ErrUnsupported)
	}

	accessBytes := bv.Constant(c.arena, int64(width.Width/8), 64).Result(0)
	accessEnd := bv.Add(c.arena, offset, accessBytes).Result(0)
	inBounds := bv.Ule(c.arena, accessEnd, size).Result(0)
	outOfBounds := smt.Not(c.arena, inBounds).Result(0)

	newBytes := mem.WriteBytes(c.arena, valueRaw, bytes, offset).Result(0)
	newBlock := c.joinBlock(size, live, newBytes)
	newBlocks := smt.ArrayStore(c.arena, blocks, id, newBlock).Result(0)
	newMemory := c.joinMemory(counter, newBlocks)

	newUb := smt.Or(c.arena, ub, outOfBounds).Result(0)
	if valuePoison != nil {
		newUb = smt.Or(c.arena, newUb, valuePoison).Result(0)
	}

	newState := c.joinState(newMemory, newUb)

	return []ir.Value{newState}, nil
}
