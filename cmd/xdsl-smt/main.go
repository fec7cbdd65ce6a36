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

// Command xdsl-smt lowers a single textual-IR function (see internal/irtext)
// into an SMT-LIB v2 script and prints it to stdout, mirroring
// xdsl_smt.py's command-line behaviour.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xdsl-smt/xdsl-smt-go/internal/cmdutil"
	"github.com/xdsl-smt/xdsl-smt-go/internal/irtext"
	"github.com/xdsl-smt/xdsl-smt-go/internal/lower/tosmt"
	"github.com/xdsl-smt/xdsl-smt-go/internal/smtprint"
)

var rootCmd = &cobra.Command{
	Use:   "xdsl-smt [flags] FILE",
	Short: "Lower a textual IR function to an SMT-LIB v2 query.",
	Long: "Lower a textual IR function to an SMT-LIB v2 query through the arith+comb " +
		"lowering, with the plain integer-type lowerer when --circt is given (or --poison=false), " +
		"or the poison-tracking lowerer otherwise. --circt does not restrict the input to comb " +
		"ops: arith ops are still lowered.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(cmd, args[0]); err != nil {
			cmdutil.PrintDiagnostic(err)
			os.Exit(exitCode(err))
		}
	},
}

func init() {
	rootCmd.Flags().Bool("circt", false, "select the plain integer-type lowerer (arith ops are still lowered)")
	rootCmd.Flags().Bool("poison", true, "track poison through plain bit-vector/boolean values (ignored with --circt)")
}

// main runs the command, exiting the process on a cobra-level error
// (bad flags, wrong argument count).
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	module, err := irtext.ParseSingleFunc(string(src))
	if err != nil {
		return err
	}

	circt := cmdutil.GetFlag(cmd, "circt")
	poison := cmdutil.GetFlag(cmd, "poison")

	var lowerer tosmt.TypeLowerer = tosmt.IntegerPoisonTypeLowerer{}
	if circt || !poison {
		lowerer = tosmt.IntegerTypeLowerer{}
	}

	lowered, err := tosmt.Lower(module, lowerer)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	fmt.Fprintln(out, smtprint.NewPrinter().Print(lowered))

	return nil
}

// exitCode maps a failure to spec.md's exit-code convention: 1 for a
// parse/verification failure, 2 for a recognized-but-unsupported
// construct.
func exitCode(err error) int {
	if errors.Is(err, tosmt.ErrUnsupported) || errors.Is(err, tosmt.ErrNotImplemented) {
		return 2
	}

	return 1
}
