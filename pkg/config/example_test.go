package config_test

import (
	"fmt"

	"github.com/wonny/inout/backend/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Strategy file: %s\n", cfg.StrategyFile)
	fmt.Printf("Price source: %s\n", cfg.Prices.Source)
	fmt.Printf("State store: %s\n", cfg.State.Store)
}
