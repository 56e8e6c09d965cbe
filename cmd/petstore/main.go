package main

import (
	"os"

	"github.com/Skotchmaster/petstore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
