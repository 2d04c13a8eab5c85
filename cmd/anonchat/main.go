package main

import (
	"os"

	"anonchat/cmd/anonchat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
