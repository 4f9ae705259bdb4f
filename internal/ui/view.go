package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/retroday/internal/facts"
)

// tabLabels are the display names for each category, in facts.Categories order.
var tabLabels = map[facts.Category]string{
	facts.CategoryEvents:     "Events",
	facts.CategoryMovies:     "Movies",
	facts.CategoryMusic:      "Music",
	facts.CategoryTechnology: "Technology",
	facts.CategoryFashion:    "Fashion",
}

// renderHeader renders the title bar. title is empty before the first bundle.
func renderHeader(title string, theme Theme, width int) string {
	text := "RetroDay"
	if title != "" {
		text += "  ·  " + title
	}
	return TitleStyle(theme).Width(width).Render(text)
}

// renderBundle renders the era summary, the category tabs, and the selected
// category's pane. Pure function.
func renderBundle(b facts.Bundle, tab int, theme Theme) string {
	var out strings.Builder

	out.WriteString(EraStyle.Render(b.Era))
	out.WriteString("\n")
	if b.Highlight != "" {
		out.WriteString(ItemStyle.Render("★ " + b.Highlight))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	cats := facts.Categories()
	tabs := make([]string, len(cats))
	for i, c := range cats {
		if i == tab {
			tabs[i] = ActiveTab(theme).Render(tabLabels[c])
		} else {
			tabs[i] = InactiveTab.Render(tabLabels[c])
		}
	}
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	out.WriteString("\n")

	cat := cats[tab]
	if b.Empty(cat) {
		out.WriteString(MutedItem.Render("No " + strings.ToLower(tabLabels[cat]) + " data for this date."))
		out.WriteString("\n")
		return out.String()
	}

	switch cat {
	case facts.CategoryEvents:
		out.WriteString(renderList("", b.Events, theme))
	case facts.CategoryMovies:
		out.WriteString(renderMovies(b.Movies))
	case facts.CategoryMusic:
		songs := make([]string, len(b.Music.Songs))
		for i, s := range b.Music.Songs {
			songs[i] = fmt.Sprintf("%s - %s", s.Title, s.Artist)
		}
		out.WriteString(renderList("Popular Songs", songs, theme))
		out.WriteString(renderList("Artists", b.Music.Artists, theme))
		out.WriteString(renderList("Trivia", b.Music.Trivia, theme))
	case facts.CategoryTechnology:
		out.WriteString(renderList("Gadgets", b.Technology.Gadgets, theme))
		out.WriteString(renderList("Milestones", b.Technology.Milestones, theme))
		if b.Technology.ComputingNarrative != "" {
			out.WriteString(SectionHeader(theme).Render("Computing"))
			out.WriteString("\n")
			out.WriteString(ItemStyle.Render(b.Technology.ComputingNarrative))
			out.WriteString("\n")
		}
	case facts.CategoryFashion:
		out.WriteString(renderList("Clothing", b.Fashion.Clothing, theme))
		out.WriteString(renderList("Hairstyles", b.Fashion.Hairstyles, theme))
		out.WriteString(renderList("Style Icons", b.Fashion.Icons, theme))
	}
	return out.String()
}

func renderList(heading string, items []string, theme Theme) string {
	if len(items) == 0 {
		return ""
	}
	var out strings.Builder
	if heading != "" {
		out.WriteString(SectionHeader(theme).Render(heading))
		out.WriteString("\n")
	}
	for _, it := range items {
		out.WriteString(ItemStyle.Render("• " + it))
		out.WriteString("\n")
	}
	return out.String()
}

func renderMovies(movies []facts.Movie) string {
	var out strings.Builder
	for _, m := range movies {
		line := fmt.Sprintf("• %s (%d)", m.Title, m.ReleaseYear)
		if m.Director != "" {
			line += ", dir. " + m.Director
		}
		out.WriteString(ItemStyle.Render(line))
		if m.PosterPath != "" {
			out.WriteString(" " + PosterBadge.Render("[poster]"))
		}
		out.WriteString("\n")
	}
	return out.String()
}

// RenderStatusBar renders the bottom key-hint bar.
func RenderStatusBar(width int, loading bool) string {
	hints := []string{
		StatusBarKey.Render("enter") + StatusBarText.Render(":resolve"),
		StatusBarKey.Render("tab") + StatusBarText.Render(":category"),
		StatusBarKey.Render("?") + StatusBarText.Render(":debug"),
		StatusBarKey.Render("esc") + StatusBarText.Render(":quit"),
	}
	text := strings.Join(hints, "  ")
	if loading {
		text += "  " + StatusBarText.Render("resolving…")
	}
	return StatusBar.Width(width).Render(text)
}
