package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/giygas/speclist/cli"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	os.Exit(cli.Execute())
}
