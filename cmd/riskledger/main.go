package main

import (
	"os"

	"github.com/riskledger/riskledger/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
