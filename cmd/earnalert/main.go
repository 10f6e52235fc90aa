package main

import (
	"os"

	"github.com/wonny/earnalert/cmd/earnalert/commands"
)

// main is the entry point for the earnalert CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
