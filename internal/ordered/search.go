package ordered

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics, "Épilation" becomes "epilation".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.ToLower(strings.TrimSpace(out))
}

// Search returns the records whose search text contains query, ignoring case and
// accents. An empty query matches everything.
func (s *Store[T, P]) Search(query string) []T {
	q := Fold(query)
	if q == "" {
		return s.List()
	}

	var out []T

	for i := range s.items {
		if strings.Contains(Fold(P(&s.items[i]).SearchText()), q) {
			out = append(out, s.items[i])
		}
	}

	return out
}
