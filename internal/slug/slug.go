// Package slug provides tag name normalization and slug derivation.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength caps derived slugs.
const MaxSlugLength = 60

// stripMarks removes combining marks left over after canonical decomposition,
// folding accented characters to their base form ("café" → "cafe").
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeName converts raw tag input to a canonical display name.
//
// Rules:
//  1. Trim surrounding whitespace
//  2. Strip a single leading '#'
//  3. Collapse internal whitespace runs to one space
//
// Returns the empty string for input that normalizes to nothing.
func NormalizeName(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "#")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// Make derives a URL-safe slug from a normalized tag name.
// The slug is the tag's dedup key: two names that slugify identically are
// the same tag.
//
// Rules:
//  1. Fold diacritics to base characters
//  2. Lowercase
//  3. Word separators (whitespace, underscores, slashes) become dashes
//  4. Everything that is not a letter, digit, or dash is dropped;
//     non-Latin letters survive so CJK tags keep their identity
//  5. Collapse dash runs, trim leading/trailing dashes
//  6. Truncate to MaxSlugLength runes
//
// Returns the empty string when nothing slug-worthy remains.
func Make(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		// Transform only fails on malformed UTF-8. Fall back to the raw name.
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '/' || r == '-':
			b.WriteRune('-')
		}
		// Everything else is dropped.
	}

	s := b.String()
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if r := []rune(s); len(r) > MaxSlugLength {
		s = strings.Trim(string(r[:MaxSlugLength]), "-")
	}
	return s
}
