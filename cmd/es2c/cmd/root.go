package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "es2c",
	Short: "ECMAScript 5.1 to C ahead-of-time compiler",
	Long: `es2c compiles ECMAScript 5.1 source to portable C source that links
against a small runtime library providing the language's object model,
property access, and control-flow semantics.

It is a one-shot ahead-of-time compiler, not an interpreter: each
invocation lexes, parses, analyzes, and lowers one or more source files
to a typed control-flow IR, then emits C source and a textual IR dump
for inspection.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
