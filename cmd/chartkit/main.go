package main

import (
	"os"

	"github.com/rustyeddy/chartkit/cmd/chartkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
