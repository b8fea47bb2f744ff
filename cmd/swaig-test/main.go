// Command swaig-test exercises a running agent: it lists declared SWAIG
// functions, dumps the generated SWML document, invokes functions directly
// and simulates conversations through a language model.
package main

import (
	"os"

	"github.com/hupe1980/callmesh/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
