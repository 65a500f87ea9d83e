package library

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/s0up4200/moviemanager/tmdb"
)

var stringNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// TitleMatches reports whether two titles are the same once case, accents
// and punctuation are ignored.
//
// TMDB localises titles inconsistently, so "Amélie" and "Amelie" or
// "Spider-Man: No Way Home" and "spider man no way home" must match.
func TitleMatches(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	normalizedA := normalizeTitle(a)
	return normalizedA != "" && normalizedA == normalizeTitle(b)
}

// MatchTitle returns the movies whose title or original title matches title
func MatchTitle(movies []tmdb.Movie, title string) []tmdb.Movie {
	var matches []tmdb.Movie
	for _, m := range movies {
		if TitleMatches(m.Title, title) || (m.OriginalTitle != "" && TitleMatches(m.OriginalTitle, title)) {
			matches = append(matches, m)
		}
	}
	return matches
}

// normalizeTitle strips diacritics, lowercases and collapses every run of
// non-alphanumeric characters into one space
func normalizeTitle(input string) string {
	stripped, _, err := transform.String(stringNormalizer, input)
	if err != nil {
		stripped = input
	}

	var b strings.Builder
	lastSpace := true

	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}
