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

// Package irtext parses the textual IR format read by cmd/xdsl-smt and
// cmd/xdsl-tv. This input side is deliberately left unspecified upstream
// (the verifier is handed already-parsed modules in every other entry
// point), so this package defines a minimal, fully-specified S-expression
// notation for straight-line arith/comb functions and builds it directly
// into an internal/ir module, ready for internal/lower/tosmt.Lower.
//
// A module is a sequence of function definitions:
//
//	(func NAME
//	  (params (ARG0 (bv 8)) (ARG1 (bv 8)))
//	  (result (bv 8))
//	  (body
//	    (let T0 (comb.mul ARG0 ARG1))
//	    (return T0)))
//
// Every body statement is either a (let NAME (OP OPERAND...)) binding or
// the closing (return REF). An OPERAND token is a name bound so far, a
// bare integer literal, or a bare predicate symbol (e.g. "ult"); which op
// needs which shape at which position is fixed by its own builder function
// below, mirroring the fixed argument order of
// the corresponding internal/dialect/{arith,comb} constructor.
package irtext

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/arith"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/comb"
	"github.com/xdsl-smt/xdsl-smt-go/internal/dialect/fn"
	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// ErrSyntax reports a malformed or unrecognized textual-IR construct.
var ErrSyntax = errors.New("irtext: syntax error")

// ParseModule parses text into a module of func.func definitions.
func ParseModule(text string) (*ir.Module, error) {
	forms, err := newParser(text).parseAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	m := ir.NewModule()

	for _, form := range forms {
		op, err := buildFunc(m.Arena, form)
		if err != nil {
			return nil, err
		}

		m.Entry().Ops = append(m.Entry().Ops, op)
		op.Parent = m.Entry()
	}

	return m, nil
}

// ParseSingleFunc parses text, requiring it to hold exactly one function,
// and returns the fresh module (with its own arena) holding that single
// func.func op. This is cmd/xdsl-tv's entry point: each of its two
// input files is parsed independently, mirroring xdsl_tv.py's requirement
// that each file holds a single func.func operation.
func ParseSingleFunc(text string) (*ir.Module, error) {
	m, err := ParseModule(text)
	if err != nil {
		return nil, err
	}

	if len(m.Entry().Ops) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one function, found %d", ErrSyntax, len(m.Entry().Ops))
	}

	return m, nil
}

func asList(s sexp) (*list, error) {
	l, ok := s.(*list)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, found %q", ErrSyntax, s)
	}

	return l, nil
}

func head(l *list) (string, []sexp, error) {
	if len(l.elements) == 0 {
		return "", nil, fmt.Errorf("%w: empty list", ErrSyntax)
	}

	sym, ok := l.elements[0].(symbol)
	if !ok {
		return "", nil, fmt.Errorf("%w: expected a leading symbol, found %q", ErrSyntax, l.elements[0])
	}

	return string(sym), l.elements[1:], nil
}

// scope is the binding environment threaded through a single function
// body: parameter and let-bound names resolve to their already-built
// values.
type scope struct {
	arena  *ir.Arena
	values map[string]ir.Value
}

func buildFunc(arena *ir.Arena, form sexp) (*ir.Op, error) {
	l, err := asList(form)
	if err != nil {
		return nil, err
	}

	name, rest, err := head(l)
	if err != nil {
		return nil, err
	}

	if name != "func" || len(rest) < 4 {
		return nil, fmt.Errorf("%w: expected (func NAME (params ...) (result T) (body ...)), found %q", ErrSyntax, l)
	}

	fnName, ok := rest[0].(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: expected a function name, found %q", ErrSyntax, rest[0])
	}

	paramNames, paramTypes, err := parseParams(rest[1])
	if err != nil {
		return nil, err
	}

	resultType, err := parseResult(rest[2])
	if err != nil {
		return nil, err
	}

	funcOp := fn.Func(arena, string(fnName), resultType)
	entry := ir.NewBlock(arena, funcOp.Region(0), paramTypes...)
	funcOp.Region(0).Blocks = append(funcOp.Region(0).Blocks, entry)

	sc := &scope{arena: arena, values: map[string]ir.Value{}}
	for i, n := range paramNames {
		sc.values[n] = entry.Args[i]
	}

	ret, err := buildBody(sc, entry, rest[3])
	if err != nil {
		return nil, err
	}

	entry.Ops = append(entry.Ops, ret)
	ret.Parent = entry

	return funcOp, nil
}

func parseParams(form sexp) ([]string, []ir.Type, error) {
	l, err := asList(form)
	if err != nil {
		return nil, nil, err
	}

	name, rest, err := head(l)
	if err != nil || name != "params" {
		return nil, nil, fmt.Errorf("%w: expected (params ...), found %q", ErrSyntax, l)
	}

	names := make([]string, 0, len(rest))
	types := make([]ir.Type, 0, len(rest))

	for _, p := range rest {
		pl, err := asList(p)
		if err != nil {
			return nil, nil, err
		}

		if len(pl.elements) != 2 {
			return nil, nil, fmt.Errorf("%w: expected (ARGNAME TYPE), found %q", ErrSyntax, pl)
		}

		argName, ok := pl.elements[0].(symbol)
		if !ok {
			return nil, nil, fmt.Errorf("%w: expected a parameter name, found %q", ErrSyntax, pl.elements[0])
		}

		t, err := parseType(pl.elements[1])
		if err != nil {
			return nil, nil, err
		}

		names = append(names, string(argName))
		types = append(types, t)
	}

	return names, types, nil
}

func parseResult(form sexp) (ir.Type, error) {
	l, err := asList(form)
	if err != nil {
		return nil, err
	}

	name, rest, err := head(l)
	if err != nil || name != "result" || len(rest) != 1 {
		return nil, fmt.Errorf("%w: expected (result TYPE), found %q", ErrSyntax, l)
	}

	return parseType(rest[0])
}

func parseType(form sexp) (ir.Type, error) {
	switch t := form.(type) {
	case symbol:
		if t == "bool" {
			return ir.BoolT, nil
		}
	case *list:
		name, rest, err := head(t)
		if err == nil && name == "bv" && len(rest) == 1 {
			w, err := parseUint(rest[0])
			if err != nil {
				return nil, err
			}

			return ir.NewBitVecType(w), nil
		}
	}

	return nil, fmt.Errorf("%w: expected a type (bv N) or bool, found %q", ErrSyntax, form)
}

func parseUint(form sexp) (uint, error) {
	sym, ok := form.(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: expected an integer, found %q", ErrSyntax, form)
	}

	n, err := strconv.ParseUint(string(sym), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	return uint(n), nil
}

// buildBody lowers every (let NAME (OP ...)) binding of a (body ...) form
// into ops pushed onto entry, returning the closing func.return op.
func buildBody(sc *scope, entry *ir.Block, form sexp) (*ir.Op, error) {
	l, err := asList(form)
	if err != nil {
		return nil, err
	}

	name, rest, err := head(l)
	if err != nil || name != "body" || len(rest) == 0 {
		return nil, fmt.Errorf("%w: expected (body ...), found %q", ErrSyntax, l)
	}

	for _, stmt := range rest[:len(rest)-1] {
		if err := buildLet(sc, entry, stmt); err != nil {
			return nil, err
		}
	}

	retForm, err := asList(rest[len(rest)-1])
	if err != nil {
		return nil, err
	}

	retName, retRest, err := head(retForm)
	if err != nil || retName != "return" || len(retRest) != 1 {
		return nil, fmt.Errorf("%w: expected (return REF) as the last body statement, found %q", ErrSyntax, retForm)
	}

	v, err := sc.resolve(retRest[0])
	if err != nil {
		return nil, err
	}

	return fn.Return(sc.arena, []ir.Value{v}), nil
}

func buildLet(sc *scope, entry *ir.Block, form sexp) error {
	l, err := asList(form)
	if err != nil {
		return err
	}

	name, rest, err := head(l)
	if err != nil || name != "let" || len(rest) != 2 {
		return fmt.Errorf("%w: expected (let NAME (OP ...)), found %q", ErrSyntax, l)
	}

	boundName, ok := rest[0].(symbol)
	if !ok {
		return fmt.Errorf("%w: expected a binding name, found %q", ErrSyntax, rest[0])
	}

	exprList, err := asList(rest[1])
	if err != nil {
		return err
	}

	op, err := sc.buildExpr(exprList)
	if err != nil {
		return err
	}

	entry.Ops = append(entry.Ops, op)
	op.Parent = entry
	sc.values[string(boundName)] = op.Result(0)

	return nil
}

// resolve looks an operand token up as a previously bound value.
func (sc *scope) resolve(form sexp) (ir.Value, error) {
	sym, ok := form.(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: expected a value reference, found %q", ErrSyntax, form)
	}

	v, ok := sc.values[string(sym)]
	if !ok {
		return nil, fmt.Errorf("%w: undefined name %q", ErrSyntax, sym)
	}

	return v, nil
}

func (sc *scope) resolveInt(form sexp) (int64, error) {
	sym, ok := form.(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: expected an integer literal, found %q", ErrSyntax, form)
	}

	n, err := strconv.ParseInt(string(sym), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	return n, nil
}

func (sc *scope) resolvePredicate(form sexp) (string, error) {
	sym, ok := form.(symbol)
	if !ok {
		return "", fmt.Errorf("%w: expected a predicate symbol, found %q", ErrSyntax, form)
	}

	return string(sym), nil
}

func (sc *scope) resolveOperands(forms []sexp) ([]ir.Value, error) {
	vs := make([]ir.Value, len(forms))

	for i, f := range forms {
		v, err := sc.resolve(f)
		if err != nil {
			return nil, err
		}

		vs[i] = v
	}

	return vs, nil
}

// arithBinops and combFixedBinops mirror internal/lower/tosmt's own
// isArithBinary/isCombFixed dispatch tables, reused here so a textual-IR
// binary op and its eventual lowering stay in lockstep.
var arithBinops = map[string]func(*ir.Arena, ir.Value, ir.Value) *ir.Op{
	"add": arith.Add, "sub": arith.Sub, "mul": arith.Mul,
	"divs": arith.DivS, "divu": arith.DivU, "rems": arith.RemS, "remu": arith.RemU,
	"shl": arith.Shl, "shrs": arith.ShrS, "shru": arith.ShrU,
}

var combFixedBinops = map[string]func(*ir.Arena, ir.Value, ir.Value) *ir.Op{
	"divs": comb.DivS, "divu": comb.DivU, "mods": comb.ModS, "modu": comb.ModU,
	"shl": comb.Shl, "shrs": comb.ShrS, "shru": comb.ShrU,
}

var combVariadic = map[string]bool{"and": true, "or": true, "xor": true, "mul": true}

// buildExpr constructs the op denoted by exprList = (OP OPERAND...),
// dispatching on OP by the fixed argument order of its corresponding
// internal/dialect constructor.
func (sc *scope) buildExpr(exprList *list) (*ir.Op, error) {
	name, rest, err := head(exprList)
	if err != nil {
		return nil, err
	}

	switch {
	case name == "arith.constant":
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: (arith.constant VALUE WIDTH) takes two integers, found %q", ErrSyntax, exprList)
		}

		value, err := sc.resolveInt(rest[0])
		if err != nil {
			return nil, err
		}

		width, err := sc.resolveInt(rest[1])
		if err != nil {
			return nil, err
		}

		return arith.Constant(sc.arena, value, uint(width)), nil

	case isDotted("arith.", name, arithBinops):
		return sc.buildBinop(arithBinops[name[len("arith."):]], name, rest)

	case name == "arith.cmp" || name == "comb.icmp":
		if len(rest) != 3 {
			return nil, fmt.Errorf("%w: (%s PREDICATE A B), found %q", ErrSyntax, name, exprList)
		}

		predicate, err := sc.resolvePredicate(rest[0])
		if err != nil {
			return nil, err
		}

		a, err := sc.resolve(rest[1])
		if err != nil {
			return nil, err
		}

		b, err := sc.resolve(rest[2])
		if err != nil {
			return nil, err
		}

		if name == "arith.cmp" {
			return arith.Cmp(sc.arena, predicate, a, b), nil
		}

		return comb.Icmp(sc.arena, predicate, a, b), nil

	case name == "comb.and" || name == "comb.or" || name == "comb.xor" || name == "comb.mul":
		opName := name[len("comb."):]
		if !combVariadic[opName] {
			break
		}

		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: %s requires at least one operand, found %q", ErrSyntax, name, exprList)
		}

		operands, err := sc.resolveOperands(rest)
		if err != nil {
			return nil, err
		}

		bv, ok := operands[0].Type().(ir.BitVecType)
		if !ok {
			return nil, fmt.Errorf("%w: %s operands must be bit-vectors, found %s", ErrSyntax, name, operands[0].Type())
		}

		return comb.Variadic(sc.arena, opName, bv.Width, operands), nil

	case isDotted("comb.", name, combFixedBinops):
		return sc.buildBinop(combFixedBinops[name[len("comb."):]], name, rest)

	case name == "comb.mux":
		if len(rest) != 3 {
			return nil, fmt.Errorf("%w: (comb.mux COND TRUE FALSE), found %q", ErrSyntax, exprList)
		}

		operands, err := sc.resolveOperands(rest)
		if err != nil {
			return nil, err
		}

		return comb.Mux(sc.arena, operands[0], operands[1], operands[2]), nil

	case name == "comb.concat":
		if len(rest) < 2 {
			return nil, fmt.Errorf("%w: comb.concat requires at least two operands, found %q", ErrSyntax, exprList)
		}

		operands, err := sc.resolveOperands(rest)
		if err != nil {
			return nil, err
		}

		return comb.Concat(sc.arena, operands), nil

	case name == "comb.extract":
		if len(rest) != 3 {
			return nil, fmt.Errorf("%w: (comb.extract A LOWBIT WIDTH), found %q", ErrSyntax, exprList)
		}

		a, err := sc.resolve(rest[0])
		if err != nil {
			return nil, err
		}

		lowBit, err := sc.resolveInt(rest[1])
		if err != nil {
			return nil, err
		}

		width, err := sc.resolveInt(rest[2])
		if err != nil {
			return nil, err
		}

		return comb.Extract(sc.arena, a, uint(lowBit), uint(width)), nil

	case name == "comb.replicate":
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: (comb.replicate A WIDTH), found %q", ErrSyntax, exprList)
		}

		a, err := sc.resolve(rest[0])
		if err != nil {
			return nil, err
		}

		width, err := sc.resolveInt(rest[1])
		if err != nil {
			return nil, err
		}

		return comb.Replicate(sc.arena, a, uint(width)), nil

	case name == "comb.parity":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: (comb.parity A), found %q", ErrSyntax, exprList)
		}

		a, err := sc.resolve(rest[0])
		if err != nil {
			return nil, err
		}

		return comb.Parity(sc.arena, a), nil
	}

	return nil, fmt.Errorf("%w: unrecognized operation %q", ErrSyntax, name)
}

func (sc *scope) buildBinop(ctor func(*ir.Arena, ir.Value, ir.Value) *ir.Op, name string, rest []sexp) (*ir.Op, error) {
	if len(rest) != 2 {
		return nil, fmt.Errorf("%w: (%s A B) takes two operands, found %d", ErrSyntax, name, len(rest))
	}

	a, err := sc.resolve(rest[0])
	if err != nil {
		return nil, err
	}

	b, err := sc.resolve(rest[1])
	if err != nil {
		return nil, err
	}

	return ctor(sc.arena, a, b), nil
}

func isDotted(prefix, name string, table map[string]func(*ir.Arena, ir.Value, ir.Value) *ir.Op) bool {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false
	}

	_, ok := table[name[len(prefix):]]

	return ok
}
