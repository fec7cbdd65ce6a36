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
package smtprint

import (
	"fmt"
	"strings"

	"github.com/xdsl-smt/xdsl-smt-go/internal/ir"
)

// simpleSMTLibNames maps every registered smt.*/smt.bv.* mnemonic printed
// in plain prefix form ("(name arg1 ... argn)") onto its bare SMT-LIB
// symbol, for operations whose dialect-qualified name does not match the
// standard SMT-LIB spelling one-for-one.
var simpleSMTLibNames = map[string]string{
	"smt.and": "and", "smt.or": "or", "smt.not": "not", "smt.implies": "=>",
	"smt.eq": "=", "smt.distinct": "distinct", "smt.ite": "ite",
	"smt.bv.neg": "bvneg", "smt.bv.add": "bvadd", "smt.bv.sub": "bvsub", "smt.bv.mul": "bvmul",
	"smt.bv.udiv": "bvudiv", "smt.bv.sdiv": "bvsdiv", "smt.bv.urem": "bvurem",
	"smt.bv.srem": "bvsrem", "smt.bv.smod": "bvsmod",
	"smt.bv.shl": "bvshl", "smt.bv.lshr": "bvlshr", "smt.bv.ashr": "bvashr",
	"smt.bv.not": "bvnot", "smt.bv.and": "bvand", "smt.bv.or": "bvor", "smt.bv.xor": "bvxor",
	"smt.bv.nand": "bvnand", "smt.bv.nor": "bvnor", "smt.bv.xnor": "bvxnor",
	"smt.bv.ule": "bvule", "smt.bv.ult": "bvult", "smt.bv.uge": "bvuge", "smt.bv.ugt": "bvugt",
	"smt.bv.sle": "bvsle", "smt.bv.slt": "bvslt", "smt.bv.sge": "bvsge", "smt.bv.sgt": "bvsgt",
	"smt.bv.concat": "concat",
	"smt.array.select": "select", "smt.array.store": "store",
}

// Printer renders a fully lowered module's top-level statements into an
// SMT-LIB v2 script. A fresh Printer must be used per module: it tracks
// global symbol names (declare-const results, function parameters) and the
// set of Pair sorts it has had to declare across the whole script.
type Printer struct {
	// globalNames covers every Value with a script-wide visible symbol:
	// smt.declare_const results and smt.parameter results.
	globalNames map[ir.ValueID]string
	tmpCounter  int
	pairSorts   map[string]ir.PairType
	sortOrder   []string
}

// NewPrinter constructs an empty Printer.
func NewPrinter() *Printer {
	return &Printer{
		globalNames: map[ir.ValueID]string{},
		pairSorts:   map[string]ir.PairType{},
	}
}

// Print renders every top-level statement of module's entry block, in
// order, as a newline-separated SMT-LIB v2 script, prefixed by
// declare-datatypes commands for every Pair sort the script ends up
// needing.
func (p *Printer) Print(m *ir.Module) string {
	var stmts []string

	for _, op := range m.Entry().Ops {
		stmts = append(stmts, p.statement(op))
	}

	var b strings.Builder

	for _, name := range p.sortOrder {
		b.WriteString(p.declarePairSort(name, p.pairSorts[name]))
		b.WriteByte('\n')
	}

	for _, s := range stmts {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	return b.String()
}

func (p *Printer) statement(op *ir.Op) string {
	switch op.Name {
	case "smt.declare_const":
		name := p.freshGlobalName(op.Result(0))
		return NewList(Symbol("declare-const"), Symbol(name), p.sort(op.Result(0).Type())).String()
	case "smt.assert":
		return NewList(Symbol("assert"), Symbol(p.renderExpr(op.Operands[0]))).String()
	case "smt.check_sat":
		return "(check-sat)"
	case "smt.define_fun":
		return p.defineFun(op)
	default:
		panic(fmt.Sprintf("smtprint: %q is not a valid top-level statement", op.Name))
	}
}

func (p *Printer) defineFun(op *ir.Op) string {
	name := op.Attrs["name"].(ir.StringAttr)
	body := op.Operands[0]
	params := op.Operands[1:]

	var paramList []SExp

	for _, pv := range params {
		pname := string(pv.(*ir.OpResult).Owner.Attrs["name"].(ir.StringAttr))
		p.globalNames[pv.ID()] = pname
		paramList = append(paramList, NewList(Symbol(pname), p.sort(pv.Type())))
	}

	bodyExpr := p.renderExpr(body)

	return NewList(
		Symbol("define-fun"), Symbol(string(name)), NewList(paramList...),
		p.sort(op.Result(0).Type()), Symbol(bodyExpr),
	).String()
}

// renderExpr renders a single top-level statement's expression operand,
// introducing a nested let for every value reachable from root that is
// used more than once (a shared subexpression), so the emitted text stays
// linear in the size of the expression DAG rather than the tree it
// represents.
func (p *Printer) renderExpr(root ir.Value) string {
	e := &exprPrinter{p: p, local: map[ir.ValueID]string{}}
	body := e.render(root)

	for i := len(e.lets) - 1; i >= 0; i-- {
		b := e.lets[i]
		body = NewList(Symbol("let"), NewList(NewList(Symbol(b.name), Symbol(b.expr))), Symbol(body)).String()
	}

	return body
}

type letBinding struct {
	name string
	expr string
}

// exprPrinter renders one statement's expression tree; its local cache and
// let accumulator do not survive past a single renderExpr call, since
// SMT-LIB let bindings are only visible within their own let's body.
type exprPrinter struct {
	p     *Printer
	local map[ir.ValueID]string
	lets  []letBinding
}

func (e *exprPrinter) render(v ir.Value) string {
	if name, ok := e.p.globalNames[v.ID()]; ok {
		return name
	}

	if name, ok := e.local[v.ID()]; ok {
		return name
	}

	res, ok := v.(*ir.OpResult)
	if !ok {
		panic("smtprint: block arguments do not appear in a fully lowered, region-free expression tree")
	}

	text := e.renderOp(res.Owner)

	if len(v.Uses()) <= 1 {
		return text
	}

	name := fmt.Sprintf("tmp_%d", e.p.tmpCounter)
	e.p.tmpCounter++
	e.local[v.ID()] = name
	e.lets = append(e.lets, letBinding{name, text})

	return name
}

func (e *exprPrinter) renderOp(op *ir.Op) string {
	if name, ok := simpleSMTLibNames[op.Name]; ok {
		elems := []SExp{Symbol(name)}
		for _, o := range op.Operands {
			elems = append(elems, Symbol(e.render(o)))
		}

		return NewList(elems...).String()
	}

	switch op.Name {
	case "smt.constant_bool":
		if bool(op.Attrs["value"].(ir.BoolAttr)) {
			return "true"
		}

		return "false"
	case "smt.bv.constant":
		attr := op.Attrs["value"].(ir.IntegerAttr)
		return NewList(Symbol("_"), Symbol(fmt.Sprintf("bv%s", attr.Value.String())), Symbol(fmt.Sprintf("%d", attr.Width))).String()
	case "smt.bv.extract":
		lo := op.Attrs["lo"].(ir.IntegerAttr).Value.Int64()
		hi := op.Attrs["hi"].(ir.IntegerAttr).Value.Int64()

		return NewList(
			NewList(Symbol("_"), Symbol("extract"), Symbol(fmt.Sprintf("%d", hi)), Symbol(fmt.Sprintf("%d", lo))),
			Symbol(e.render(op.Operands[0])),
		).String()
	case "smt.call":
		callee := string(op.Attrs["callee"].(ir.StringAttr))
		elems := []SExp{Symbol(callee)}

		for _, o := range op.Operands {
			elems = append(elems, Symbol(e.render(o)))
		}

		return NewList(elems...).String()
	case "smt.array.const":
		arrSort := e.p.sort(op.Result(0).Type())
		return NewList(
			NewList(Symbol("as"), Symbol("const"), arrSort),
			Symbol(e.render(op.Operands[0])),
		).String()
	case "smt.utils.pair":
		sortName := e.p.registerPairSort(ir.PairType{First: op.Operands[0].Type(), Second: op.Operands[1].Type()})
		return NewList(Symbol("mk-"+sortName), Symbol(e.render(op.Operands[0])), Symbol(e.render(op.Operands[1]))).String()
	case "smt.utils.first":
		pair := op.Operands[0].Type().(ir.PairType)
		sortName := e.p.registerPairSort(pair)

		return NewList(Symbol(sortName+"-first"), Symbol(e.render(op.Operands[0]))).String()
	case "smt.utils.second":
		pair := op.Operands[0].Type().(ir.PairType)
		sortName := e.p.registerPairSort(pair)

		return NewList(Symbol(sortName+"-second"), Symbol(e.render(op.Operands[0]))).String()
	case "smt.parameter":
		panic("smtprint: a smt.parameter value escaped its defining smt.define_fun's param list")
	default:
		panic(fmt.Sprintf("smtprint: %q has no registered SMT-LIB rendering", op.Name))
	}
}

func (p *Printer) freshGlobalName(v ir.Value) string {
	if hint := v.NameHint(); hint != "" {
		p.globalNames[v.ID()] = hint
		return hint
	}

	name := fmt.Sprintf("tmp_%d", p.tmpCounter)
	p.tmpCounter++
	p.globalNames[v.ID()] = name

	return name
}

func (p *Printer) sort(t ir.Type) SExp {
	switch v := t.(type) {
	case ir.BoolType:
		return Symbol("Bool")
	case ir.BitVecType:
		return NewList(Symbol("_"), Symbol("BitVec"), Symbol(fmt.Sprintf("%d", v.Width)))
	case ir.PairType:
		return Symbol(p.registerPairSort(v))
	case ir.ArrayType:
		return NewList(Symbol("Array"), p.sort(v.Key_), p.sort(v.Value))
	case ir.SortType:
		return Symbol(v.Name)
	default:
		panic(fmt.Sprintf("smtprint: type %s has no SMT-LIB sort rendering", t))
	}
}

// registerPairSort ensures a declare-datatypes command will be emitted for
// t and returns its mangled sort name.
func (p *Printer) registerPairSort(t ir.PairType) string {
	name := pairSortName(t)
	if _, ok := p.pairSorts[name]; !ok {
		p.pairSorts[name] = t
		p.sortOrder = append(p.sortOrder, name)
	}

	return name
}

func (p *Printer) declarePairSort(name string, t ir.PairType) string {
	ctor := NewList(
		Symbol("mk-"+name),
		NewList(Symbol(name+"-first"), p.sort(t.First)),
		NewList(Symbol(name+"-second"), p.sort(t.Second)),
	)

	return NewList(
		Symbol("declare-datatypes"),
		NewList(NewList(Symbol(name), Symbol("0"))),
		NewList(NewList(ctor)),
	).String()
}

func pairSortName(t ir.PairType) string {
	return "Pair_" + mangleSort(t.First) + "_" + mangleSort(t.Second)
}

func mangleSort(t ir.Type) string {
	switch v := t.(type) {
	case ir.BoolType:
		return "Bool"
	case ir.BitVecType:
		return fmt.Sprintf("BitVec%d", v.Width)
	case ir.PairType:
		return pairSortName(v)
	case ir.SortType:
		return v.Name
	default:
		return strings.Map(func(r rune) rune {
			if r == ' ' || r == '(' || r == ')' {
				return '_'
			}

			return r
		}, t.String())
	}
}
