package main

import (
	"os"

	"github.com/wonny/inout/backend/cmd/inout/commands"
)

// main is the entry point for the in/out CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/inout [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
