package main

import (
	"os"

	"github.com/commons-tools/fpc-bot/cmd/fpc-bot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
