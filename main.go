package main

import (
	"os"

	"github.com/abhisek/lasi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
