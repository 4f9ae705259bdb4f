// Package ui provides the Bubble Tea TUI for RetroDay.
package ui

import (
	"time"

	"github.com/abelbrown/retroday/internal/facts"
)

// BundleResolved is sent when a background resolution finishes. Gen is the
// request generation; messages for superseded generations are dropped.
// Err is non-nil for a terminal fault, in which case Bundle is empty.
type BundleResolved struct {
	Gen    uint64
	Date   string
	Bundle facts.Bundle
	Dur    time.Duration
	Err    error
}
