package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// reservedChars are the characters that break file names on common file systems.
var reservedChars = regexp.MustCompile(`[*|><:"?/\\]`)

// pictographs matches emoji and the joiners/modifiers used to compose them.
var pictographs = runes.Predicate(func(r rune) bool {
	switch {
	case unicode.Is(unicode.So, r), unicode.Is(unicode.Me, r):
		return true
	case unicode.Is(unicode.Variation_Selector, r):
		return true
	case r == '\u200d':
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	}
	return false
})

// SanitizeName strips reserved file name characters and emoji from s.
func SanitizeName(s string) string {
	t := transform.Chain(norm.NFC, runes.Remove(pictographs))
	clean, _, err := transform.String(t, s)
	if err != nil {
		clean = s
	}
	clean = reservedChars.ReplaceAllString(clean, "")
	return strings.Join(strings.Fields(clean), " ")
}

// TrackStem builds the file stem of a track: its sanitised name followed by the
// first three characters of its sanitised artist names.
func TrackStem(name, artists string) string {
	a := []rune(SanitizeName(artists))
	if len(a) > 3 {
		a = a[:3]
	}
	return SanitizeName(name) + "-" + string(a)
}
