package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ansera/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	// Optional; API keys can come from a local .env file.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
