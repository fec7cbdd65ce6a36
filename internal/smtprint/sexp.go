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

// Package smtprint renders a fully lowered IR module (smt.*, smt.bv.*,
// smt.utils.* operations only) into an SMT-LIB v2 script. The textual
// representation is built as an intermediate S-expression tree, adapted
// from pkg/util/source/sexp's List/Symbol shapes but retargeted from
// source-position-tracking parse trees to pure output trees: there is no
// parser here, only a writer.
package smtprint

import "strings"

// SExp is a node of the intermediate output tree.
type SExp interface {
	String() string
}

// List is an S-expression list, printed as "(" + space-joined children + ")".
type List struct {
	Elements []SExp
}

// NewList constructs a List from the given children.
func NewList(elements ...SExp) *List { return &List{elements} }

// String implements SExp.
func (l *List) String() string {
	var b strings.Builder

	b.WriteByte('(')

	for i, e := range l.Elements {
		if i != 0 {
			b.WriteByte(' ')
		}

		b.WriteString(e.String())
	}

	b.WriteByte(')')

	return b.String()
}

// Symbol is an atomic, unquoted token: an identifier, a sort name, or an
// already-formatted literal (e.g. "#b0101").
type Symbol string

// String implements SExp.
func (s Symbol) String() string { return string(s) }
