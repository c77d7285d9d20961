// Package main provides functest, a helper for the functional tests of the
// web extension. It inspects the extension manifest and smoke-runs the
// browser drivers used by the suite.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
