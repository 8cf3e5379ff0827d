// vlink turns plain mentions of glossary notes into virtual links.
// Single binary: a local daemon for editors, plus one-shot commands.
package main

import (
	"os"

	"github.com/corey/vlink/cmd/vlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
