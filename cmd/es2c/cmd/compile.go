package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kindahl/es2c/internal/driver"
	"github.com/spf13/cobra"
)

var (
	outputBase     string
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [files...]",
	Short: "Compile ECMAScript 5.1 source files to C",
	Long: `Compile one or more ECMAScript 5.1 source files to C source and a
textual IR dump.

Examples:
  # Compile a single file, writing a.cc and a.cc.ir
  es2c compile prog.js

  # Compile to a specific output base
  es2c compile prog.js -o build/prog.cc

  # Compile several files, each to its own output derived from its name
  es2c compile a.js b.js`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputBase, "output", "o", "", "output base path (default: a.cc, or one per input file when compiling more than one)")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func runCompile(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		base := outputBaseFor(path, len(args))
		if compileVerbose {
			fmt.Fprintf(os.Stderr, "compiling %s -> %s (%s.ir)\n", path, base, base)
		}

		result, err := driver.CompileFile(path, base)
		if err != nil {
			fmt.Fprintf(os.Stderr, "in: %s: %s\n", path, err)
			failed++
			continue
		}

		if compileVerbose {
			fmt.Fprintf(os.Stderr, "wrote %s and %s\n", result.OutputPath, result.IRPath)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to compile", failed, len(args))
	}
	return nil
}

// outputBaseFor resolves the output base path for one source file. -o only
// applies when exactly one source file is given: the spec's `-o PATH`
// contract (spec §6) is written for a single-file invocation, and letting
// every file race to overwrite the same two output paths when several are
// given would silently discard all but the last. With more than one file,
// each gets its own output base derived from its path (extension replaced
// with .cc, or .cc appended if there is none).
func outputBaseFor(path string, numArgs int) string {
	if numArgs == 1 {
		// driver.CompileFile applies the literal "a.cc" default itself
		// when outputBase is empty (spec §6).
		return outputBase
	}
	ext := filepath.Ext(path)
	if ext != "" {
		return strings.TrimSuffix(path, ext) + ".cc"
	}
	return path + ".cc"
}
