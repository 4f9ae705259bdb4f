package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/retroday/internal/otel"
)

// eventRecord is one decoded line of the event log.
type eventRecord = otel.Event

var levelRanks = map[otel.Level]int{
	otel.LevelDebug: 0,
	otel.LevelInfo:  1,
	otel.LevelWarn:  2,
	otel.LevelError: 3,
}

// eventFilter holds the events subcommand's match criteria. Zero fields match
// everything.
type eventFilter struct {
	kind     string // prefix, so "tier" matches tier.success and tier.failure
	level    string // minimum level
	comp     string
	date     string
	category string
	gen      uint64
}

func (f eventFilter) match(ev eventRecord) bool {
	switch {
	case f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind):
		return false
	case f.level != "" && levelRanks[ev.Level] < levelRanks[otel.Level(f.level)]:
		return false
	case f.comp != "" && ev.Comp != f.comp:
		return false
	case f.date != "" && ev.Date != f.date:
		return false
	case f.category != "" && ev.Category != f.category:
		return false
	case f.gen != 0 && ev.Gen != f.gen:
		return false
	}
	return true
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent matching events to show")
	follow := fs.Bool("f", false, "Keep printing new events as they are written")
	stats := fs.Bool("stats", false, "Print per-tier success/failure counts instead of events")
	rawJSON := fs.Bool("json", false, "Print raw JSON lines")
	var filter eventFilter
	fs.StringVar(&filter.kind, "kind", "", "Event kind prefix (e.g. 'tier', 'resolve.fault')")
	fs.StringVar(&filter.level, "level", "", "Minimum level: debug, info, warn, error")
	fs.StringVar(&filter.comp, "comp", "", "Component: coord, resolve, aggregate, cache, ui, main")
	fs.StringVar(&filter.date, "date", "", "Resolved date (YYYY-MM-DD)")
	fs.StringVar(&filter.category, "category", "", "Fact category")
	fs.Uint64Var(&filter.gen, "gen", 0, "Request generation")
	fs.Parse(os.Args[1:])

	logPath := loadConfig().EventLog
	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "retroday: no event log at %s: %v\n", logPath, err)
		fmt.Fprintln(os.Stderr, "  Resolve a date first to create it.")
		os.Exit(1)
	}
	defer f.Close()

	if *stats {
		writeTierStats(os.Stdout, readTailLines(f, otel.DefaultRingSize, filter.match))
		return
	}

	show := func(ev eventRecord, raw []byte) {
		if *rawJSON {
			fmt.Println(string(raw))
			return
		}
		fmt.Println(formatEvent(ev))
	}

	for _, l := range readTailLines(f, *tail, filter.match) {
		show(l.ev, l.raw)
	}
	if *follow {
		followLog(f, filter, show)
	}
}

// followLog polls f, already read to EOF, for appended events.
func followLog(f *os.File, filter eventFilter, show func(eventRecord, []byte)) {
	r := bufio.NewReader(f)
	for {
		raw, err := r.ReadBytes('\n')
		if err == io.EOF {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		raw = trimLine(raw)
		var ev eventRecord
		if len(raw) == 0 || json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if filter.match(ev) {
			show(ev, raw)
		}
	}
}

// writeTierStats tallies tier outcomes through a ring buffer, the same view
// the TUI debug overlay shows.
func writeTierStats(w io.Writer, lines []parsedLine) {
	ring := otel.NewRingBuffer(max(len(lines), 1))
	for _, l := range lines {
		ring.Push(l.ev)
	}
	counts := ring.TierStats()
	if len(counts) == 0 {
		fmt.Fprintln(w, "no tier events")
		return
	}

	keys := make([]otel.TierKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].Tier < keys[j].Tier
	})

	fmt.Fprintf(w, "%-11s %-10s %6s %6s\n", "CATEGORY", "TIER", "OK", "FAIL")
	for _, k := range keys {
		c := counts[k]
		fmt.Fprintf(w, "%-11s %-10s %6d %6d\n", k.Category, k.Tier, c.Success, c.Failure)
	}
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(ev eventRecord) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s [%-9s] %-20s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)

	add := func(s string) {
		b.WriteByte(' ')
		b.WriteString(s)
	}
	if ev.Gen != 0 {
		add(fmt.Sprintf("gen=%d", ev.Gen))
	}
	if ev.Date != "" {
		add(ev.Date)
	}
	switch {
	case ev.Category != "" && ev.Tier != "":
		add(ev.Category + "/" + ev.Tier)
	case ev.Category != "":
		add(ev.Category)
	case ev.Tier != "":
		add("tier=" + ev.Tier)
	}
	if ev.Msg != "" {
		add("| " + truncate(ev.Msg, 120))
	}
	if ev.DurMs > 0 {
		add(fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		add(fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Source != "" {
		add("src=" + ev.Source)
	}
	if ev.Err != "" {
		add("err=" + truncate(ev.Err, 200))
	}
	return b.String()
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines returns the last n decodable lines of r accepted by match,
// oldest first. Lines that are not JSON are skipped.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	window := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		var ev eventRecord
		if len(raw) == 0 || json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		if len(window) == n {
			window = append(window[:0], window[1:]...)
		}
		window = append(window, parsedLine{ev: ev, raw: append([]byte(nil), raw...)})
	}
	return window
}

func trimLine(b []byte) []byte {
	return []byte(strings.TrimRight(string(b), "\r\n"))
}

func durPrecision(ms float64) int {
	switch {
	case ms >= 100:
		return 0
	case ms >= 1:
		return 1
	}
	return 2
}
