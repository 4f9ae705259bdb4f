package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing resolution stats, per-tier
// outcomes, the tier attempts behind the current bundle, and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, attempts []facts.Attempt, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(15)

	// --- Stats section (keyed lookups, not map iteration) ---
	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Resolution Stats"))
	lines = append(lines, fmt.Sprintf("  Requests:   %d started, %d complete, %d rejected, %d stale",
		stats[otel.KindResolveStart], stats[otel.KindResolveComplete], stats[otel.KindResolveRejected], stats[otel.KindResolveStale]))
	lines = append(lines, fmt.Sprintf("  Faults:     %d terminal, %d category panics",
		stats[otel.KindResolveFault], stats[otel.KindCategoryPanic]))
	lines = append(lines, fmt.Sprintf("  Tiers:      %d success, %d failure",
		stats[otel.KindTierSuccess], stats[otel.KindTierFailure]))
	lines = append(lines, fmt.Sprintf("  Wiki:       %d not found, %d transport",
		stats[otel.KindWikiNotFound], stats[otel.KindWikiTransport]))
	lines = append(lines, fmt.Sprintf("  Cache:      %d hit, %d stored, %d errors",
		stats[otel.KindCacheHit], stats[otel.KindCacheStore], stats[otel.KindCacheError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	if tiers := ring.TierStats(); len(tiers) > 0 {
		keys := make([]otel.TierKey, 0, len(tiers))
		for k := range tiers {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Category != keys[j].Category {
				return keys[i].Category < keys[j].Category
			}
			return keys[i].Tier < keys[j].Tier
		})
		lines = append(lines, DebugHeaderStyle.Render("Tier Outcomes"))
		for _, k := range keys {
			c := tiers[k]
			lines = append(lines, fmt.Sprintf("  %-11s %-10s %3d ok %3d fail", k.Category, k.Tier, c.Success, c.Failure))
		}
		lines = append(lines, "")
	}

	if len(attempts) > 0 {
		lines = append(lines, DebugHeaderStyle.Render("Attempts"))
		for _, a := range attempts {
			mark := "ok"
			if !a.Succeeded {
				mark = "FAIL"
			}
			line := fmt.Sprintf("  %-11s %-10s %-4s", a.Category, a.Tier, mark)
			if a.Reason != "" {
				line += "  " + truncateRunes(a.Reason, 40)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	// --- Recent events section ---
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		age := time.Since(e.Time)
		ageStr := formatAge(age)

		line := fmt.Sprintf("  %6s  %-20s", ageStr, string(e.Kind))
		if e.Category != "" {
			line += "  " + e.Category
		}
		if e.Tier != "" {
			line += "/" + e.Tier
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.Gen != 0 {
			line += fmt.Sprintf("  gen:%d", e.Gen)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 84
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// truncateRunes shortens s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("?") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
