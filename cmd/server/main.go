// Package main implements the entry point for the flashcards API server.
// It serves the REST API, applies database migrations and mints development
// tokens.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
