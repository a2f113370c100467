package main

import (
	"os"

	"doctranslate-backend/cmd/doctool/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
