package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abelbrown/retroday/internal/config"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
)

const sampleLog = `{"t":"2026-01-02T10:00:00Z","level":"info","kind":"resolve.start","comp":"coord","gen":1,"date":"1969-07-20"}
{"t":"2026-01-02T10:00:01Z","level":"warn","kind":"tier.failure","comp":"resolve","date":"1969-07-20","category":"events","tier":"knowledge","err":"article not found"}
not json
{"t":"2026-01-02T10:00:02Z","level":"info","kind":"tier.success","comp":"resolve","date":"1969-07-20","category":"events","tier":"scrape","dur_ms":12.5}
{"t":"2026-01-02T10:00:03Z","level":"info","kind":"resolve.complete","comp":"coord","gen":1,"date":"1969-07-20","count":7}
`

func TestReadTailLines(t *testing.T) {
	all := func(eventRecord) bool { return true }

	lines := readTailLines(strings.NewReader(sampleLog), 2, all)
	if len(lines) != 2 {
		t.Fatalf("len = %d, want 2", len(lines))
	}
	if lines[0].ev.Kind != "tier.success" || lines[1].ev.Kind != "resolve.complete" {
		t.Errorf("tail kinds = %s, %s", lines[0].ev.Kind, lines[1].ev.Kind)
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"kind prefix", eventFilter{kind: "tier"}, 2},
		{"min level", eventFilter{level: "warn"}, 1},
		{"component", eventFilter{comp: "coord"}, 2},
		{"category", eventFilter{category: "events"}, 2},
		{"date", eventFilter{date: "1970-01-01"}, 0},
		{"generation", eventFilter{gen: 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := readTailLines(strings.NewReader(sampleLog), 50, tt.filter.match)
			if len(lines) != tt.want {
				t.Errorf("matched %d, want %d", len(lines), tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog), 50, eventFilter{kind: "tier.failure"}.match)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	out := formatEvent(lines[0].ev)
	for _, want := range []string{"WARN", "tier.failure", "events/knowledge", "err=article not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted line missing %q: %s", want, out)
		}
	}
}

func TestWriteTierStats(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog+sampleLog), 50, eventFilter{}.match)

	var out bytes.Buffer
	writeTierStats(&out, lines)
	text := out.String()
	for _, want := range []string{
		"CATEGORY",
		"events      knowledge       0      2",
		"events      scrape          2      0",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("stats missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "knowledge") > strings.Index(text, "scrape") {
		t.Errorf("rows not sorted:\n%s", text)
	}

	out.Reset()
	writeTierStats(&out, nil)
	if !strings.Contains(out.String(), "no tier events") {
		t.Errorf("empty stats = %q", out.String())
	}
}

// testConfig points every upstream at a server that always fails.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Endpoints.Wikipedia = server.URL + "/w/api.php"
	cfg.Endpoints.OnThisDay = server.URL
	cfg.TimeoutSeconds = 2
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	return cfg
}

func TestRunOnceJSON(t *testing.T) {
	orch := newOrchestrator(testConfig(t), otel.NewNullLogger())

	var out bytes.Buffer
	if code := runOnce(orch, "1969-07-20", true, &out); code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	var b facts.Bundle
	if err := json.Unmarshal(out.Bytes(), &b); err != nil {
		t.Fatalf("output is not a bundle: %v\n%s", err, out.String())
	}
	if b.Decade != 1960 || len(b.Events) != 3 || b.Events[2] != "Humans land on the moon (1969)" {
		t.Errorf("unexpected bundle %+v", b)
	}
	if len(b.AttemptsFor(facts.CategoryEvents)) != 3 {
		t.Errorf("events attempts = %+v", b.AttemptsFor(facts.CategoryEvents))
	}
}

func TestRunOnceText(t *testing.T) {
	orch := newOrchestrator(testConfig(t), otel.NewNullLogger())

	var out bytes.Buffer
	if code := runOnce(orch, "1955-03-01", false, &out); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	text := out.String()
	for _, want := range []string{"March 01, 1955", "Rear Window (1954), dir. Alfred Hitchcock", "Hound Dog - Elvis Presley"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunOnceInvalidDate(t *testing.T) {
	orch := newOrchestrator(testConfig(t), otel.NewNullLogger())
	var out bytes.Buffer
	if code := runOnce(orch, "2023-02-30", false, &out); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if out.Len() != 0 {
		t.Errorf("no output expected for invalid date, got %q", out.String())
	}
}
