package main

import (
	"os"

	"pallet-queue-service/cmd/palletctl/commands"
)

func main() {
	// Errors are already printed by the commands.
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
