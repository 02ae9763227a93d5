package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for base URL / model overrides during development.
	_ = godotenv.Load()
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
