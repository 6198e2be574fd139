package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/csvcut/internal/cli"
	"github.com/JonMunkholm/csvcut/internal/config"
	"github.com/JonMunkholm/csvcut/internal/core"
)

func main() {
	// Load .env file if it exists; real environment variables take precedence
	_ = godotenv.Load()

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cli.New(cfg).Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", core.FormatUserError(err))
		os.Exit(1)
	}
}
