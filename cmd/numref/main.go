// Command numref numbers the headings and figures of a document, resolves
// its references and prints the rendered result.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "numref:", err)
		os.Exit(1)
	}
}
