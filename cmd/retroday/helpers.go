package main

import (
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/retroday/internal/config"
	"github.com/abelbrown/retroday/internal/otel"
)

// loadConfig loads configuration, reporting (but surviving) any problem.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "retroday: config: %v (continuing with defaults)\n", err)
	}
	return cfg
}

// openLogger opens the event log or falls back to a discarding logger.
func openLogger(path string) *otel.Logger {
	l, err := otel.OpenFile(path)
	if err != nil {
		log.Printf("event log unavailable: %v", err)
		return otel.NewNullLogger()
	}
	return l
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
