package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"docvault/internal/storage"
)

var (
	revToken  = regexp.MustCompile(`(?i)\brev\s*\.?\s*\d+\b`)
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	stripMark = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// SeriesMatch reports whether two filenames denote versions of the same
// logical document, ignoring "REV nn"-style revision tokens, punctuation,
// accents and case. Two unrelated documents that normalize to the same
// base name will conflate; that looseness is inherited behavior, not a
// bug to tighten here.
func SeriesMatch(a, b string) bool {
	na := normalizeSeries(a)
	return na != "" && na == normalizeSeries(b)
}

func normalizeSeries(fileName string) string {
	s := strings.ToLower(storage.BaseName(fileName))
	if folded, _, err := transform.String(stripMark, s); err == nil {
		s = folded
	}
	s = revToken.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
