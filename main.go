package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/hoststack/concierge/cmd"
)

func main() {
	// Best effort: API keys and carrier secrets are commonly kept in a .env
	// file during development. Missing file is not an error.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
