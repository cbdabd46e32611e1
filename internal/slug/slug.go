// Package slug turns organisation names into stable URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
)

const maxLen = 60

// DefaultSuffixes are stripped once from the end of a name before slugging,
// so that "Greggs PLC" and "Greggs Limited" produce the same identifier.
// Order is the check order; only the first match is removed.
var DefaultSuffixes = []string{" limited", " ltd", " plc", " llp", " inc", " uk"}

var (
	parenRe    = regexp.MustCompile(`\s*\([^)]*\)`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Make derives a slug from an organisation name: lowercase, one trailing
// corporate suffix removed, parentheticals dropped, non-alphanumerics
// stripped, whitespace collapsed to hyphens, capped at 60 characters.
// Total and idempotent; an empty or all-punctuation name yields "".
func Make(name string) string {
	return MakeWith(name, nil)
}

// MakeWith is Make with a replacement suffix list; empty means the default.
// Entries carry their leading space, e.g. " ltd".
func MakeWith(name string, suffixes []string) string {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}

	s := strings.ToLower(strings.TrimSpace(name))

	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	s = parenRe.ReplaceAllString(s, "")
	// Hyphens act as word separators so that slugging is idempotent:
	// feeding "aldi-stores" back in yields "aldi-stores", not "aldistores".
	s = strings.ReplaceAll(s, "-", " ")
	s = nonAlnumRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), "-")

	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.TrimRight(s, "-")
}
