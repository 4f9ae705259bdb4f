// Package extract pulls year- and decade-scoped event lines out of plain-text
// encyclopedia articles. It is pure: callers supply the article text, so the
// heuristics can be exercised without network access.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/abelbrown/retroday/internal/facts"
)

// Strategy names which extraction step produced a result.
type Strategy string

const (
	StrategyNone    Strategy = ""
	StrategyYear    Strategy = "year"
	StrategyDecade  Strategy = "decade"
	StrategySection Strategy = "section"
)

// blockSeparators introduce the description after an anchor, in priority order.
var blockSeparators = []string{"–", "—", " - "}

var (
	eventsHeadingRe = regexp.MustCompile(`^==\s*Events\s*==$`)
	level2HeadingRe = regexp.MustCompile(`^==[^=].*==$`)
	yearTokenRe     = regexp.MustCompile(`\b\d{4}\b`)
)

// Article runs the extraction steps in order and returns the first non-empty
// result, capped to facts.MaxEvents, along with the step that produced it.
func Article(text string, year int) ([]string, Strategy) {
	lines := splitLines(text)

	if events := blocks(lines, strconv.Itoa(year)); len(events) > 0 {
		return capEvents(events), StrategyYear
	}

	decade := fmt.Sprintf("%ds", (year/10)*10)
	if events := blocks(lines, decade); len(events) > 0 {
		return capEvents(events), StrategyDecade
	}

	if events := eventsSection(lines); len(events) > 0 {
		return capEvents(events), StrategySection
	}

	return nil, StrategyNone
}

// Blocks returns "anchor: line" entries for every block introduced by anchor.
func Blocks(text, anchor string) []string {
	return blocks(splitLines(text), anchor)
}

// EventsSection returns list items from the "== Events ==" section that
// mention a four-digit year.
func EventsSection(text string) []string {
	return eventsSection(splitLines(text))
}

// blocks finds lines of the form "<anchor> ... – description". The block runs
// until the next blank line or the next line starting with a digit, and every
// non-empty line in it becomes one entry prefixed with the anchor.
func blocks(lines []string, anchor string) []string {
	var out []string
	for i := 0; i < len(lines); i++ {
		first, ok := blockStart(lines[i], anchor)
		if !ok {
			continue
		}

		captured := []string{first}
		j := i + 1
		for ; j < len(lines); j++ {
			next := lines[j]
			if strings.TrimSpace(next) == "" || startsWithDigit(next) {
				break
			}
			captured = append(captured, next)
		}

		for _, c := range captured {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, anchor+": "+c)
			}
		}
		// The terminating line may open the next block.
		i = j - 1
	}
	return out
}

// blockStart reports whether line opens a block for anchor and returns the
// text after the separator.
func blockStart(line, anchor string) (string, bool) {
	if !strings.HasPrefix(line, anchor) {
		return "", false
	}
	rest := line[len(anchor):]
	// "1969" must not match "19690" or "1969s".
	if r := firstRune(rest); r != 0 && (unicode.IsDigit(r) || unicode.IsLetter(r)) {
		return "", false
	}
	for _, sep := range blockSeparators {
		if idx := strings.Index(rest, sep); idx >= 0 {
			return rest[idx+len(sep):], true
		}
	}
	return "", false
}

func eventsSection(lines []string) []string {
	start := -1
	for i, l := range lines {
		if eventsHeadingRe.MatchString(strings.TrimSpace(l)) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var items []string
	var cur []string
	flush := func() {
		if len(cur) == 0 {
			return
		}
		item := strings.Join(cur, " ")
		if yearTokenRe.MatchString(item) {
			items = append(items, item)
		}
		cur = nil
	}

	for _, l := range lines[start:] {
		trimmed := strings.TrimSpace(l)
		if level2HeadingRe.MatchString(trimmed) {
			break
		}
		switch {
		case strings.HasPrefix(trimmed, "*"):
			flush()
			cur = append(cur, strings.TrimSpace(strings.TrimLeft(trimmed, "*")))
		case trimmed == "":
			flush()
		case len(cur) > 0:
			cur = append(cur, trimmed)
		}
	}
	flush()
	return items
}

func capEvents(events []string) []string {
	if len(events) > facts.MaxEvents {
		return events[:facts.MaxEvents]
	}
	return events
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func startsWithDigit(s string) bool {
	r := firstRune(s)
	return r != 0 && unicode.IsDigit(r)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
