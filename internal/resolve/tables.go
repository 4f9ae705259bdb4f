package resolve

import "github.com/abelbrown/retroday/internal/facts"

// Curated decade tables. Only the 1950s and 1960s are populated.

var staticEvents = map[int][]string{
	1950: {
		"The post-war economic boom leads to suburban expansion",
		"Rock 'n' roll music emerges as a cultural force",
		"The Cold War begins between the US and Soviet Union",
	},
	1960: {
		"Civil Rights Movement gains momentum",
		"The Beatles revolutionize popular music",
		"Humans land on the moon (1969)",
	},
}

var staticMovies = map[int][]facts.Movie{
	1950: {
		{Title: "Singin' in the Rain", ReleaseYear: 1952, Director: "Gene Kelly, Stanley Donen"},
		{Title: "Rear Window", ReleaseYear: 1954, Director: "Alfred Hitchcock"},
		{Title: "Some Like It Hot", ReleaseYear: 1959, Director: "Billy Wilder"},
	},
	1960: {
		{Title: "Psycho", ReleaseYear: 1960, Director: "Alfred Hitchcock"},
		{Title: "The Sound of Music", ReleaseYear: 1965, Director: "Robert Wise"},
		{Title: "2001: A Space Odyssey", ReleaseYear: 1968, Director: "Stanley Kubrick"},
	},
}

var staticMusic = map[int]facts.Music{
	1950: {
		Songs: []facts.Song{
			{Title: "Hound Dog", Artist: "Elvis Presley"},
			{Title: "Johnny B. Goode", Artist: "Chuck Berry"},
			{Title: "What'd I Say", Artist: "Ray Charles"},
		},
		Artists: []string{"Elvis Presley", "Chuck Berry", "Little Richard", "Frank Sinatra"},
		Trivia: []string{
			"Rock 'n' roll emerged in the mid-1950s, blending rhythm and blues with country music.",
			"The 45 rpm single became the standard format for hit songs.",
		},
	},
	1960: {
		Songs: []facts.Song{
			{Title: "Hey Jude", Artist: "The Beatles"},
			{Title: "(I Can't Get No) Satisfaction", Artist: "The Rolling Stones"},
			{Title: "Respect", Artist: "Aretha Franklin"},
		},
		Artists: []string{"The Beatles", "The Rolling Stones", "Bob Dylan", "Aretha Franklin"},
		Trivia: []string{
			"The British Invasion, led by The Beatles, changed American music in 1964.",
			"Woodstock Festival in 1969 became a defining moment for 1960s counterculture.",
		},
	},
}

var staticTechnology = map[int]facts.Technology{
	1950: {
		Gadgets: []string{"Transistor radio", "Black-and-white TV", "Electric typewriter"},
		Milestones: []string{
			"First commercial computer (UNIVAC I) released in 1951",
			"First transistor radio introduced in 1954",
			"Sputnik 1, the first artificial satellite, launched in 1957",
		},
		ComputingNarrative: "Computers were room-sized machines used mainly by governments and large corporations. Programming was done with punch cards.",
	},
	1960: {
		Gadgets: []string{"Portable cassette player", "Color TV", "Electronic calculator"},
		Milestones: []string{
			"First video game (Spacewar!) created in 1962",
			"ARPANET, precursor to the internet, developed in 1969",
			"First human on the moon in 1969",
		},
		ComputingNarrative: "Mainframe computers became more widespread in businesses. The concept of personal computing was still in its infancy.",
	},
}

var staticFashion = map[int]facts.Fashion{
	1950: {
		Clothing:   []string{"Poodle skirts with sweater sets", "Men's suits with narrow ties", "Pedal pushers and saddle shoes"},
		Hairstyles: []string{"Pompadour for men", "Poodle cut for women", "Ducktail hairstyle"},
		Icons:      []string{"Marilyn Monroe", "James Dean", "Audrey Hepburn"},
	},
	1960: {
		Clothing:   []string{"Mini skirts and go-go boots", "Mod suits with skinny ties", "Tie-dye and psychedelic prints"},
		Hairstyles: []string{"Beehive hairdos", "Long, straight hair (hippie style)", "The Beatles mop-top"},
		Icons:      []string{"Twiggy", "The Beatles", "Jacqueline Kennedy"},
	},
}
