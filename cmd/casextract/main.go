package main

import (
	"os"

	"github.com/fundsight/casextract/cmd/casextract/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
