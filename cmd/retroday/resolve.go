package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/retroday/internal/aggregate"
	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/config"
	"github.com/abelbrown/retroday/internal/coord"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/fetch"
	"github.com/abelbrown/retroday/internal/imagecache"
	"github.com/abelbrown/retroday/internal/onthisday"
	"github.com/abelbrown/retroday/internal/otel"
	"github.com/abelbrown/retroday/internal/tmdb"
	"github.com/abelbrown/retroday/internal/ui"
	"github.com/abelbrown/retroday/internal/wiki"
)

func runResolve(args []string) int {
	fs := flag.NewFlagSet("retroday", flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	date := fs.String("date", "", "Date to resolve, YYYY-MM-DD")
	asJSON := fs.Bool("json", false, "Print the bundle as JSON")
	tui := fs.Bool("tui", false, "Open the TUI on -date")
	fs.Parse(args)

	cfg := loadConfig()
	logger := openLogger(cfg.EventLog)
	defer logger.Close()

	logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main",
		Msg: "retroday starting", Extra: map[string]any{"keys": cfg.ConfiguredKeys()}})
	logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindConfig, Comp: "main",
		Extra: map[string]any{
			"wikipedia": cfg.Endpoints.Wikipedia,
			"onthisday": cfg.Endpoints.OnThisDay,
			"tmdb":      cfg.Endpoints.TMDB,
			"timeout_s": cfg.TimeoutSeconds,
			"cache_dir": cfg.CacheDir,
		}})
	defer logger.Info(otel.KindShutdown, "main", "retroday exiting")

	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	logger.SetRingBuffer(ring)

	orch := newOrchestrator(cfg, logger)
	defer orch.Cancel()

	if *date == "" || *tui {
		return runTUI(orch, ring, logger, *date)
	}
	return runOnce(orch, *date, *asJSON, os.Stdout)
}

// newOrchestrator wires the full pipeline from configuration.
func newOrchestrator(cfg *config.Config, logger *otel.Logger) *coord.Orchestrator {
	fetcher := fetch.NewFetcher(cfg.Timeout())

	src := aggregate.Sources{
		Articles: wiki.NewClient(cfg.Endpoints.Wikipedia, fetcher),
		Days:     onthisday.NewScraper(cfg.Endpoints.OnThisDay, fetcher),
	}
	if cfg.Keys.TMDB != "" {
		src.Movies = tmdb.NewClient(cfg.Keys.TMDB, cfg.Endpoints.TMDB, cfg.Endpoints.TMDBImages, fetcher)
	}

	images := imagecache.New(cfg.CacheDir, fetcher, logger)
	agg := aggregate.New(aggregate.DefaultChains(src, logger), images, logger)
	return coord.New(agg, logger)
}

func runTUI(orch *coord.Orchestrator, ring *otel.RingBuffer, logger *otel.Logger, initial string) int {
	app := ui.NewAppWithConfig(ui.AppConfig{
		Resolver:    orch,
		Obs:         ui.ObsConfig{Ring: ring, Logger: logger},
		InitialDate: initial,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error(otel.KindError, "main", err)
		fmt.Fprintf(os.Stderr, "retroday: %v\n", err)
		return 1
	}
	return 0
}

func runOnce(orch *coord.Orchestrator, date string, asJSON bool, w io.Writer) int {
	d, err := calendar.Parse(date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "retroday: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := orch.Run(ctx, d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "retroday: %v\n", err)
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			fmt.Fprintf(os.Stderr, "retroday: %v\n", err)
			return 1
		}
		return 0
	}
	printBundle(w, d, b)
	return 0
}

// printBundle writes a plain-text rendering of b.
func printBundle(w io.Writer, d calendar.Date, b facts.Bundle) {
	fmt.Fprintf(w, "%s\n%s\n", d.String(), strings.Repeat("=", len(d.String())))
	fmt.Fprintf(w, "%s\n", b.Era)

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s\n", title)
		for _, l := range lines {
			fmt.Fprintf(w, "  - %s\n", l)
		}
	}

	section("Events", b.Events)

	movies := make([]string, len(b.Movies))
	for i, m := range b.Movies {
		line := fmt.Sprintf("%s (%d)", m.Title, m.ReleaseYear)
		if m.Director != "" {
			line += ", dir. " + m.Director
		}
		if m.PosterPath != "" {
			line += " [" + m.PosterPath + "]"
		}
		movies[i] = line
	}
	section("Movies", movies)

	songs := make([]string, len(b.Music.Songs))
	for i, s := range b.Music.Songs {
		songs[i] = s.Title + " - " + s.Artist
	}
	section("Songs", songs)
	section("Artists", b.Music.Artists)
	section("Music Trivia", b.Music.Trivia)

	section("Gadgets", b.Technology.Gadgets)
	section("Tech Milestones", b.Technology.Milestones)
	if b.Technology.ComputingNarrative != "" {
		section("Computing", []string{b.Technology.ComputingNarrative})
	}

	section("Clothing", b.Fashion.Clothing)
	section("Hairstyles", b.Fashion.Hairstyles)
	section("Style Icons", b.Fashion.Icons)
}
