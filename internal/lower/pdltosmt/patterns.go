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
package pdltosmt

import (
	"fmt"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/smt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/utils"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
	"github.com/xdsl-smt/xdsl-smt-go/internal/lower/tosmt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/rewrite"
)

// rewritePattern inlines a pdl.rewrite op's own body in place of itself,
// mirroring RewriteRewrite.
type rewritePattern struct{ ctx *loweringContext }

func (*rewritePattern) Name() string  { return "pdl.rewrite" }
func (*rewritePattern) Priority() int { return 0 }

func (p *rewritePattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.rewrite" {
		return rewrite.NotMatched()
	}

	if err := b.InlineBlockBefore(op, op.Region(0).Blocks[0]); err != nil {
		return rewrite.Failed(err)
	}

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// typePattern pins a constant pdl.type into the context's type table,
// mirroring TypeRewrite.
type typePattern struct{ ctx *loweringContext }

func (*typePattern) Name() string  { return "pdl.type" }
func (*typePattern) Priority() int { return 0 }

func (p *typePattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.type" {
		return rewrite.NotMatched()
	}

	attr, ok := op.Attr("constantType")
	if !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.type without a constant type", ErrUnsupported))
	}

	p.ctx.types[op.Result(0).ID()] = attr.(ir.TypeAttr).Type

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// attributePattern pins a constant pdl.attribute into the context's value
// table (as a DialectAttr-free wrapper is unnecessary: attributes are
// carried verbatim and only unwrapped where a synthesized op needs them),
// mirroring AttributeRewrite.
type attributePattern struct{ ctx *loweringContext }

func (*attributePattern) Name() string  { return "pdl.attribute" }
func (*attributePattern) Priority() int { return 0 }

func (p *attributePattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.attribute" {
		return rewrite.NotMatched()
	}

	attr, ok := op.Attr("value")
	if !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.attribute without a constant value", ErrUnsupported))
	}

	p.ctx.attrs[op.Result(0).ID()] = attr

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// operandPattern declares a fresh SMT constant standing in for a matched
// value, mirroring OperandRewrite.
type operandPattern struct{ ctx *loweringContext }

func (*operandPattern) Name() string  { return "pdl.operand" }
func (*operandPattern) Priority() int { return 0 }

func (p *operandPattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.operand" {
		return rewrite.NotMatched()
	}

	t, ok := p.ctx.types[op.Operands[0].ID()]
	if !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.operand references a non-constant pdl.type", ErrUnsupported))
	}

	decl := smt.DeclareConst(p.ctx.arena, p.ctx.lowerer.LowerType(t))
	b.InsertOpBefore(op, decl)

	p.ctx.values[op.Result(0).ID()] = decl.Result(0)

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// getPattern materializes a fresh (zeros, ones) known-bits fact for a
// matched bit-vector value, asserting its own soundness as a precondition,
// mirroring GetOpRewrite.
type getPattern struct{ ctx *loweringContext }

func (*getPattern) Name() string  { return "pdl.df.get" }
func (*getPattern) Priority() int { return 0 }

func (p *getPattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.df.get" {
		return rewrite.NotMatched()
	}

	domain := string(op.Attrs["domain"].(ir.StringAttr))

	value, ok := p.ctx.values[op.Operands[0].ID()]
	if !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.df.get over an unresolved value", ErrUnsupported))
	}

	if _, ok := value.Type().(ir.BitVecType); !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.df.get domain %q over a non-bit-vector value", ErrUnsupported, domain))
	}

	zerosOp := smt.DeclareConst(p.ctx.arena, value.Type())
	onesOp := smt.DeclareConst(p.ctx.arena, value.Type())
	zeros, ones := zerosOp.Result(0), onesOp.Result(0)

	if hint := value.NameHint(); hint != "" {
		zeros.SetNameHint(hint + "_zeros")
		ones.SetNameHint(hint + "_ones")
	}

	correct, _ := kbCorrectness(p.ctx.arena, value, zeros, ones)

	b.InsertOpBefore(op, zerosOp)
	b.InsertOpBefore(op, onesOp)

	p.ctx.Preconditions = append(p.ctx.Preconditions, correct)

	pair := utils.Pair(p.ctx.arena, zeros, ones)
	p.ctx.values[op.Result(0).ID()] = pair.Result(0)

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// operationPattern materializes the op a pdl.operation describes, lowers it
// through the full tosmt pass, and remembers its lowered results under the
// matched op's own handle, mirroring OperationRewrite (generalized from the
// source's arith_to_smt/comb_to_smt pair to the whole tosmt dispatch table,
// so memory-effect and poison-bearing matches are in scope too).
type operationPattern struct{ ctx *loweringContext }

func (*operationPattern) Name() string  { return "pdl.operation" }
func (*operationPattern) Priority() int { return 0 }

func (p *operationPattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.operation" {
		return rewrite.NotMatched()
	}

	name := string(op.Attrs["name"].(ir.StringAttr))

	var attrNames []string
	if a, ok := op.Attr("attrNames"); ok {
		for _, e := range a.(ir.ArrayAttr).Elements {
			attrNames = append(attrNames, string(e.(ir.StringAttr)))
		}
	}

	var operands []ir.Value

	var resultTypes []ir.Type

	attrs := map[string]ir.Attribute{}

	attrIdx := 0

	for _, arg := range op.Operands {
		switch arg.Type().(type) {
		case ir.PDLValType:
			v, ok := p.ctx.values[arg.ID()]
			if !ok {
				return rewrite.Failed(fmt.Errorf("%w: pdl.operation %q over an unresolved operand", ErrUnsupported, name))
			}

			operands = append(operands, v)
		case ir.PDLTypeType:
			t, ok := p.ctx.types[arg.ID()]
			if !ok {
				return rewrite.Failed(fmt.Errorf("%w: pdl.operation %q over a non-constant result type", ErrUnsupported, name))
			}

			resultTypes = append(resultTypes, t)
		case ir.PDLAttributeType:
			attr, ok := p.ctx.attrs[arg.ID()]
			if !ok {
				return rewrite.Failed(fmt.Errorf("%w: pdl.operation %q over a non-constant attribute", ErrUnsupported, name))
			}

			if attrIdx >= len(attrNames) {
				return rewrite.Failed(fmt.Errorf("%w: pdl.operation %q has more attribute operands than names", ErrUnsupported, name))
			}

			attrs[attrNames[attrIdx]] = attr
			attrIdx++
		default:
			return rewrite.Failed(fmt.Errorf("%w: pdl.operation %q has an operand of an unrecognized erased type", ErrUnsupported, name))
		}
	}

	synthesized := ir.NewOp(p.ctx.arena, name, operands, resultTypes, attrs, 0)

	lowered, err := tosmt.LowerSingleOp(p.ctx.arena, p.ctx.lowerer, synthesized)
	if err != nil {
		return rewrite.Failed(err)
	}

	p.ctx.opResults[op.Result(0).ID()] = lowered

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// resultPattern projects the index'th lowered result of a previously
// matched/constructed operation, mirroring ResultRewrite.
type resultPattern struct{ ctx *loweringContext }

func (*resultPattern) Name() string  { return "pdl.result" }
func (*resultPattern) Priority() int { return 0 }

func (p *resultPattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.result" {
		return rewrite.NotMatched()
	}

	results, ok := p.ctx.opResults[op.Operands[0].ID()]
	if !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.result references an unresolved operation", ErrUnsupported))
	}

	idx := int(op.Attrs["index"].(ir.IntegerAttr).Value.Int64())
	if idx < 0 || idx >= len(results) {
		return rewrite.Failed(fmt.Errorf("%w: pdl.result index %d out of range for %d results", ErrUnsupported, idx, len(results)))
	}

	p.ctx.values[op.Result(0).ID()] = results[idx]

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// replacePattern asserts the matched root's replacement is distinct from
// the original, conjoined with every precondition gathered so far: the
// whole pattern is sound exactly when this query is unsatisfiable.
// Mirrors ReplaceRewrite; multi-result operations are out of scope on
// either side of the replacement, per the source's own restriction.
type replacePattern struct{ ctx *loweringContext }

func (*replacePattern) Name() string  { return "pdl.replace" }
func (*replacePattern) Priority() int { return 0 }

func (p *replacePattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.replace" {
		return rewrite.NotMatched()
	}

	rootResults, ok := p.ctx.opResults[op.Operands[0].ID()]
	if !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.replace of an unresolved operation", ErrUnsupported))
	}

	if len(rootResults) != 1 {
		return rewrite.Failed(fmt.Errorf("%w: pdl.replace of a multi-result operation", ErrUnsupported))
	}

	replaced := rootResults[0]

	with := op.Operands[1:]
	if len(with) != 1 {
		return rewrite.Failed(fmt.Errorf("%w: pdl.replace with more than one replacement value", ErrUnsupported))
	}

	var replacing ir.Value

	switch with[0].Type().(type) {
	case ir.PDLValType:
		v, ok := p.ctx.values[with[0].ID()]
		if !ok {
			return rewrite.Failed(fmt.Errorf("%w: pdl.replace with an unresolved value", ErrUnsupported))
		}

		replacing = v
	case ir.PDLOpType:
		results, ok := p.ctx.opResults[with[0].ID()]
		if !ok || len(results) != 1 {
			return rewrite.Failed(fmt.Errorf("%w: pdl.replace with a multi-result (or unresolved) operation", ErrUnsupported))
		}

		replacing = results[0]
	default:
		return rewrite.Failed(fmt.Errorf("%w: pdl.replace with an unrecognized erased type", ErrUnsupported))
	}

	distinct := smt.Distinct(p.ctx.arena, replacing, replaced)

	pre, _ := andAll(p.ctx.arena, p.ctx.Preconditions)

	assertVal := distinct.Result(0)

	if pre != nil {
		combined := smt.And(p.ctx.arena, distinct.Result(0), pre)
		assertVal = combined.Result(0)
	}

	assertOp := smt.Assert(p.ctx.arena, assertVal)
	b.InsertOpBefore(op, assertOp)

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}

// attachPattern asserts that a constructed operation's result violates the
// attached known-bits fact, conjoined with every precondition gathered so
// far: this is the dual of a precondition, a proof obligation the rule
// incurs by claiming an analysis result about its own replacement. Mirrors
// AttachOpRewrite.
type attachPattern struct{ ctx *loweringContext }

func (*attachPattern) Name() string  { return "pdl.df.attach" }
func (*attachPattern) Priority() int { return 0 }

func (p *attachPattern) TryRewrite(op *ir.Op, b *ir.Builder) rewrite.Outcome {
	if op.Name != "pdl.df.attach" {
		return rewrite.NotMatched()
	}

	results, ok := p.ctx.opResults[op.Operands[0].ID()]
	if !ok || len(results) != 1 {
		return rewrite.Failed(fmt.Errorf("%w: pdl.df.attach over a multi-result (or unresolved) operation", ErrUnsupported))
	}

	value := results[0]

	fact, ok := p.ctx.values[op.Operands[1].ID()]
	if !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.df.attach with an unresolved fact", ErrUnsupported))
	}

	if _, ok := value.Type().(ir.BitVecType); !ok {
		return rewrite.Failed(fmt.Errorf("%w: pdl.df.attach over a non-bit-vector result", ErrUnsupported))
	}

	firstOp := utils.First(p.ctx.arena, fact)
	secondOp := utils.Second(p.ctx.arena, fact)
	zeros, ones := firstOp.Result(0), secondOp.Result(0)

	correct, _ := kbCorrectness(p.ctx.arena, value, zeros, ones)
	notCorrect := smt.Not(p.ctx.arena, correct)

	pre, _ := andAll(p.ctx.arena, p.ctx.Preconditions)

	assertVal := notCorrect.Result(0)

	if pre != nil {
		implies := smt.And(p.ctx.arena, pre, notCorrect.Result(0))
		assertVal = implies.Result(0)
	}

	assertOp := smt.Assert(p.ctx.arena, assertVal)
	b.InsertOpBefore(op, assertOp)

	if err := b.EraseOp(op, false); err != nil {
		return rewrite.Failed(err)
	}

	return rewrite.Rewrote()
}
