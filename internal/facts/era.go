package facts

import "fmt"

var eraDescriptions = map[int]string{
	1950: "The 1950s: Post-war prosperity, suburban growth, rock 'n' roll, and the birth of modern youth culture.",
	1960: "The 1960s: Civil rights movement, space race, Beatlemania, and counterculture revolution.",
	1970: "The 1970s: Disco fever, oil crisis, Watergate, and the rise of personal computing.",
	1980: "The 1980s: Reagan/Thatcher era, MTV, video games, and neon everything.",
	1990: "The 1990s: Internet boom, grunge music, Seinfeld, and the end of the Cold War.",
	2000: "The 2000s: 9/11 aftermath, iPods, reality TV, and the dawn of social media.",
	2010: "The 2010s: Smartphones everywhere, streaming services, social media dominance, and climate activism.",
	2020: "The 2020s: COVID-19 pandemic, remote work revolution, TikTok, and increasing climate concerns.",
}

// EraDescription returns a one-line summary of a decade, or a bare label
// like "The 1940s" when none is curated.
func EraDescription(decade int) string {
	if d, ok := eraDescriptions[decade]; ok {
		return d
	}
	return fmt.Sprintf("The %ds", decade)
}
