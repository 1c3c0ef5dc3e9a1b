// Command es2c compiles ECMAScript 5.1 source to its C target.
package main

import (
	"fmt"
	"os"

	"github.com/kindahl/es2c/cmd/es2c/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
