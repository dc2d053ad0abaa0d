package dino

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxSpeciesChars is the longest species name left untouched by TruncateSpecies.
	MaxSpeciesChars = 8

	truncateKeep   = 7
	truncateSuffix = "..."
	pluralSuffix   = "us"
)

// MakeSingular strips a trailing "us" from the species name.
// The match is exact and case-sensitive.
func MakeSingular(d Dino) Dino {
	out := clone(d)
	out.Species = strings.TrimSuffix(out.Species, pluralSuffix)
	return out
}

// TruncateSpecies shortens species names longer than MaxSpeciesChars
// characters to their first 7 characters followed by "...".
func TruncateSpecies(d Dino) Dino {
	out := clone(d)
	if utf8.RuneCountInString(out.Species) > MaxSpeciesChars {
		runes := []rune(out.Species)
		out.Species = string(runes[:truncateKeep]) + truncateSuffix
	}
	return out
}

// MakeExtinct marks the record as extinct.
func MakeExtinct(d Dino) Dino {
	out := clone(d)
	out.Extinct = true
	return out
}
