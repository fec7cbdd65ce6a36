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

package cmdutil

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// defaultWidth is used whenever stderr is not a terminal (e.g. piped into a
// file or another process), matching pkg/util/termio/terminal.go's own
// fallback for non-interactive output.
const defaultWidth = 80

// PrintDiagnostic writes a verification/lowering failure to stderr, word
// wrapped to the terminal's width so a long error message (e.g. a rendered
// SMT-LIB counterexample) stays readable rather than running off-screen.
func PrintDiagnostic(err error) {
	fmt.Fprintln(os.Stderr, wrap(err.Error(), width()))
}

func width() int {
	fd := int(os.Stderr.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}

	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}

	return w
}

func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}

	var b strings.Builder

	lineLen := 0

	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteByte('\n')
				lineLen = 0
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}

		b.WriteString(word)
		lineLen += len(word)
	}

	return b.String()
}
