package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
)

// Resolver starts background resolutions and judges their results.
// Satisfied by *coord.Orchestrator.
type Resolver interface {
	Resolve(year, month, day int) (tea.Cmd, uint64, error)
	Deliver(msg BundleResolved) bool
}

// ObsConfig wires observability into the App. Both fields are optional.
type ObsConfig struct {
	Ring   *otel.RingBuffer
	Logger *otel.Logger
}

// AppConfig configures a new App.
type AppConfig struct {
	Resolver Resolver
	Obs      ObsConfig
	// InitialDate, if set, is resolved as soon as the program starts.
	InitialDate string
}

// App is the root Bubble Tea model.
// IMPORTANT: App never resolves anything itself. It asks the Resolver for a
// command and receives the bundle back as a BundleResolved message.
type App struct {
	resolver Resolver
	ring     *otel.RingBuffer
	logger   *otel.Logger

	input   textinput.Model
	spinner spinner.Model

	bundle  *facts.Bundle
	title   string
	theme   Theme
	tab     int
	pending uint64 // generation we are waiting for, 0 when idle
	loading bool
	err     error

	initial      string
	debugVisible bool
	width        int
	height       int
	ready        bool
}

// NewApp creates an App backed by resolver.
func NewApp(resolver Resolver) App {
	return NewAppWithConfig(AppConfig{Resolver: resolver})
}

// NewAppWithConfig creates an App from cfg.
func NewAppWithConfig(cfg AppConfig) App {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.Prompt = "Date: "
	ti.CharLimit = 10
	ti.Width = 12
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	logger := cfg.Obs.Logger
	if logger == nil {
		logger = otel.NewNullLogger()
	}

	return App{
		resolver: cfg.Resolver,
		ring:     cfg.Obs.Ring,
		logger:   logger,
		input:    ti,
		spinner:  sp,
		theme:    DefaultTheme,
		initial:  cfg.InitialDate,
	}
}

// Init starts the cursor blink and, if configured, the initial resolution.
func (a App) Init() tea.Cmd {
	if a.initial == "" {
		return textinput.Blink
	}
	return func() tea.Msg { return submitDate{value: a.initial} }
}

// submitDate asks the App to resolve a date string as if typed by the user.
type submitDate struct {
	value string
}

// Update handles messages and returns the updated model and any commands.
// This is the only place presentation state changes.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case submitDate:
		a.input.SetValue(msg.value)
		return a.submit()

	case BundleResolved:
		return a.handleResolved(msg)

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleResolved applies a delivered bundle, dropping superseded ones.
func (a App) handleResolved(msg BundleResolved) (tea.Model, tea.Cmd) {
	if a.resolver == nil || !a.resolver.Deliver(msg) {
		return a, nil
	}
	if msg.Gen == a.pending {
		a.pending = 0
		a.loading = false
	}

	if msg.Err != nil {
		a.bundle = nil
		a.err = msg.Err
		return a, nil
	}

	b := msg.Bundle
	a.bundle = &b
	a.err = nil
	a.theme = ThemeFor(b.Decade)
	a.title = b.Date
	if d, err := calendar.Parse(b.Date); err == nil {
		a.title = d.String()
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return a, tea.Quit

	case "?":
		a.debugVisible = !a.debugVisible
		return a, nil

	case "enter":
		return a.submit()

	case "tab":
		a.tab = (a.tab + 1) % len(facts.Categories())
		return a, nil

	case "shift+tab":
		n := len(facts.Categories())
		a.tab = (a.tab + n - 1) % n
		return a, nil
	}

	// Clear any existing error once the user edits the date
	a.err = nil

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// errDateFormat is shown when the input is not YYYY-MM-DD.
var errDateFormat = errors.New("enter a date as YYYY-MM-DD")

// submit validates the typed date through the Resolver and starts resolution.
func (a App) submit() (tea.Model, tea.Cmd) {
	y, m, d, err := parseDateInput(a.input.Value())
	if err != nil {
		a.err = err
		return a, nil
	}
	if a.resolver == nil {
		return a, nil
	}

	cmd, gen, err := a.resolver.Resolve(y, m, d)
	if err != nil {
		a.err = err
		return a, nil
	}

	a.err = nil
	a.pending = gen
	a.loading = true
	return a, tea.Batch(cmd, a.spinner.Tick)
}

// parseDateInput splits "YYYY-MM-DD" into numbers. Range checks are left to
// the calendar package.
func parseDateInput(s string) (int, int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, errDateFormat
	}
	var nums [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return 0, 0, 0, errDateFormat
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, errDateFormat
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		var attempts []facts.Attempt
		if a.bundle != nil {
			attempts = a.bundle.Attempts
		}
		return debugOverlay(a.ring, attempts, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	var b strings.Builder
	b.WriteString(renderHeader(a.title, a.theme, a.width))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")

	switch {
	case a.loading:
		b.WriteString(a.spinner.View() + " Resolving " + a.input.Value() + "...\n")
	case a.bundle != nil:
		b.WriteString(renderBundle(*a.bundle, a.tab, a.theme))
	default:
		b.WriteString(HelpStyle.Render("Type a date between 1950 and today, then press enter."))
		b.WriteString("\n")
	}

	if a.err != nil {
		b.WriteString(ErrorStyle.Width(a.width).Render("Error: " + a.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(RenderStatusBar(a.width, a.loading))
	return b.String()
}

// Bundle returns the displayed bundle, or nil (for testing).
func (a App) Bundle() *facts.Bundle {
	return a.bundle
}

// Tab returns the selected category (for testing).
func (a App) Tab() facts.Category {
	return facts.Categories()[a.tab]
}

// Err returns the error shown to the user (for testing).
func (a App) Err() error {
	return a.err
}

// Loading reports whether a resolution is pending (for testing).
func (a App) Loading() bool {
	return a.loading
}
