// Command mediamind answers questions over a PDF library.
package main

import (
	"os"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
