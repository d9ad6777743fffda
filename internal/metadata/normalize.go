package metadata

// platformAliases maps catalogue platform names onto the canonical set.
// Names not listed pass through unchanged.
var platformAliases = map[string]string{
	"PlayStation 5":    "PlayStation 5",
	"PlayStation 4":    "PlayStation 4",
	"PlayStation 3":    "PlayStation 3",
	"PlayStation 2":    "PlayStation 2",
	"PlayStation":      "PlayStation",
	"Xbox Series S/X":  "Xbox Series X",
	"Xbox One":         "Xbox One",
	"Xbox 360":         "Xbox 360",
	"Xbox":             "Xbox",
	"Nintendo Switch":  "Nintendo Switch",
	"Nintendo 3DS":     "Nintendo 3DS",
	"Nintendo DS":      "Nintendo DS",
	"Wii U":            "Wii U",
	"Wii":              "Wii",
	"GameCube":         "GameCube",
	"Nintendo 64":      "Nintendo 64",
	"SNES":             "SNES",
	"NES":              "NES",
	"Game Boy Advance": "Game Boy Advance",
	"Game Boy Color":   "Game Boy Color",
	"Game Boy":         "Game Boy",
	"PC":               "PC",
	"macOS":            "PC",
	"Linux":            "PC",
	"iOS":              "Mobile",
	"Android":          "Mobile",
	"PSP":              "PSP",
	"PS Vita":          "PS Vita",
	"Dreamcast":        "Dreamcast",
	"Sega Saturn":      "Sega Saturn",
	"Sega Genesis":     "Sega Genesis",
	"Sega CD":          "Sega CD",
	"Sega 32X":         "Sega 32X",
	"Game Gear":        "Game Gear",
	"Atari":            "Atari",
}

// NormalizePlatform maps one catalogue name.
func NormalizePlatform(name string) string {
	if p, ok := platformAliases[name]; ok {
		return p
	}
	return name
}

// NormalizePlatforms maps names and drops duplicates, keeping first-seen order.
func NormalizePlatforms(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		p := NormalizePlatform(n)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
