package main

import (
	"os"

	"github.com/yosoyorhan/Fikir-motoru/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
