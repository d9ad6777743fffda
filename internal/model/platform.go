package model

import "strings"

// PlatformAll is the filter sentinel meaning "no platform filter".
const PlatformAll = "All Platforms"

// Platforms is the closed set of platform names the application recognizes.
var Platforms = []string{
	"PlayStation 5",
	"PlayStation 4",
	"PlayStation 3",
	"PlayStation 2",
	"PlayStation",
	"Xbox Series X",
	"Xbox One",
	"Xbox 360",
	"Xbox",
	"Nintendo Switch",
	"Nintendo 3DS",
	"Nintendo DS",
	"Wii U",
	"Wii",
	"GameCube",
	"Nintendo 64",
	"SNES",
	"NES",
	"Game Boy Advance",
	"Game Boy Color",
	"Game Boy",
	"PC",
	"Mobile",
	"PSP",
	"PS Vita",
	"Dreamcast",
	"Sega Saturn",
	"Sega Genesis",
	"Sega CD",
	"Sega 32X",
	"Game Gear",
	"Atari",
}

var platformSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Platforms))
	for _, p := range Platforms {
		m[p] = struct{}{}
	}
	return m
}()

// IsPlatform reports whether p is in the canonical set (exact match).
func IsPlatform(p string) bool {
	_, ok := platformSet[p]
	return ok
}

// IsAllPlatforms reports whether p is the "no filter" sentinel.
func IsAllPlatforms(p string) bool {
	p = strings.TrimSpace(p)
	return p == "" || p == PlatformAll || strings.EqualFold(p, "all")
}

// LookupPlatform resolves a user-typed platform name case-insensitively.
func LookupPlatform(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, p := range Platforms {
		if strings.EqualFold(p, name) {
			return p, true
		}
	}
	return "", false
}
