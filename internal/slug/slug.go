// Package slug derives URL-safe identifiers for job pages.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// folds lists the only accented letters mapped to ASCII. Anything else outside
// [a-z0-9] becomes a separator, so published URLs stay the same as before.
var folds = map[rune]rune{
	'à': 'a', 'á': 'a', 'ä': 'a', 'â': 'a',
	'è': 'e', 'é': 'e', 'ë': 'e', 'ê': 'e',
	'ì': 'i', 'í': 'i', 'ï': 'i', 'î': 'i',
	'ò': 'o', 'ó': 'o', 'ö': 'o', 'ô': 'o',
	'ù': 'u', 'ú': 'u', 'ü': 'u', 'û': 'u',
	'ç': 'c',
}

// Derive builds the slug for a job from its title and location.
func Derive(title, location string) string {
	return Normalize(title + "-" + location)
}

// Normalize lowercases s, folds the French accented vowels and ç to ASCII,
// collapses every run of characters outside [a-z0-9] into one hyphen and trims
// edge hyphens. Normalize is idempotent.
func Normalize(s string) string {
	folded := fold(strings.ToLower(s))
	folded = nonAlnumRun.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// Valid reports whether s is a non-empty, well-formed slug.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}

// fold composes s first so "e" followed by a combining acute folds like "é".
// Letters outside the table (ñ, ã, å, œ) are left alone and later collapse
// into a separator.
func fold(s string) string {
	t := transform.Chain(norm.NFC, runes.Map(func(r rune) rune {
		if f, ok := folds[r]; ok {
			return f
		}
		return r
	}))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
