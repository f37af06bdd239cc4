// Package match implements forgiving name matching for narrowing the
// review checklist to a subset of the library.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanName normalizes an artist or album name for matching.
// Lowercases, removes accents, drops a leading article, replaces
// punctuation with spaces and collapses whitespace.
func CleanName(name string) string {
	s := strings.ToLower(name)
	s = removeAccents(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	s = strings.Join(strings.Fields(b.String()), " ")
	return stripLeadingArticle(s)
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) && len(s) > len(art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
