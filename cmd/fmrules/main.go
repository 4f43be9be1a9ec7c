// Command fmrules is the reference host for the front-matter rule engine:
// a thin CLI that owns file I/O, the clock, and file_context, and hands
// everything else to the internal packages.
package main

import (
	"os"

	"github.com/frontmatter-rules/engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
