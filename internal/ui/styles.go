package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application chrome. Decade colors live in Theme.
var (
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
)

// Theme is the decade-dependent palette.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
}

var decadeThemes = map[int]Theme{
	1950: {Name: "1950s", Primary: "#FFD700", Accent: "#E34234"},
	1960: {Name: "1960s", Primary: "#FF6B6B", Accent: "#4ECDC4"},
	1970: {Name: "1970s", Primary: "#F2C94C", Accent: "#8B5A2B"},
	1980: {Name: "1980s", Primary: "#00BFFF", Accent: "#FF1493"},
	1990: {Name: "1990s", Primary: "#6A0DAD", Accent: "#00FF00"},
	2000: {Name: "2000s", Primary: "#4E5166", Accent: "#00FFFF"},
	2010: {Name: "2010s", Primary: "#292F36", Accent: "#4ECDC4"},
	2020: {Name: "2020s", Primary: "#2D3142", Accent: "#EF8354"},
}

// DefaultTheme is used before the first bundle and for decades without a palette.
var DefaultTheme = Theme{Name: "default", Primary: "62", Accent: "212"}

// ThemeFor maps a decade bucket to its palette. Pure.
func ThemeFor(decade int) Theme {
	if t, ok := decadeThemes[decade]; ok {
		return t
	}
	return DefaultTheme
}

// TitleStyle renders the application title bar in the theme's colors.
func TitleStyle(t Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(t.Primary).
		Padding(0, 1)
}

// ActiveTab style for the selected category tab.
func ActiveTab(t Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Underline(true).
		Padding(0, 1)
}

// InactiveTab style for unselected category tabs.
var InactiveTab = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// SectionHeader style for headings inside a category pane.
func SectionHeader(t Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		MarginTop(1)
}

// EraStyle for the decade summary line.
var EraStyle = lipgloss.NewStyle().
	Italic(true).
	Foreground(colorSecondary).
	Padding(0, 1)

// ItemStyle for list entries.
var ItemStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 2)

// MutedItem style for placeholders and secondary details.
var MutedItem = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 2)

// PosterBadge marks movies whose poster is cached locally.
var PosterBadge = lipgloss.NewStyle().
	Foreground(colorSuccess)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for section headings inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
