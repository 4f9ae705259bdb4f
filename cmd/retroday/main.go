// Command retroday shows what the world looked like on a given date.
//
// Usage:
//
//	retroday                       Interactive TUI
//	retroday -date 1969-07-20      Resolve one date and print it
//	retroday -date 1969-07-20 -json
//	retroday events                JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `retroday: historical facts for any date since 1950

Usage:
  retroday [flags]            Start the interactive TUI
  retroday -date YYYY-MM-DD   Resolve one date and print the result
  retroday events [flags]     JSONL event log viewer

Flags:
  -date YYYY-MM-DD   Date to resolve (with no TUI unless -tui is set)
  -json              Print the bundle as JSON (with -date)
  -tui               Open the TUI on -date instead of printing

Environment:
  RETRODAY_CONFIG    Config file (default: ~/.retroday/config.yaml)
  TMDB_API_KEY       Movie database API key (overrides api_keys.json)
  RETRODAY_TRACE     Log every UI message to the event log

Run 'retroday events -h' for event viewer flags.
`

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "events":
			// Strip the program name + subcommand so flag sets see only their flags
			os.Args = os.Args[1:]
			runEvents()
			return
		case "-h", "--help", "help":
			fmt.Print(usage)
			return
		}
	}
	os.Exit(runResolve(os.Args[1:]))
}
