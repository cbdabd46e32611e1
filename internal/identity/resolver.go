// Package identity derives the consumer-facing brand string used to find an
// operator's premises in OSM.
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/camatlas/camatlas/internal/model"
)

// Suffixes stripped repeatedly from the end of a legal name when deriving a
// brand. Longer than the slug list: generic business words rarely survive
// into how premises are tagged ("ALDI Stores Limited" is tagged "Aldi").
var DefaultSuffixes = []string{
	"supermarkets", "restaurants", "holdings", "international",
	"professional services", "services", "solutions",
	"stores", "retail", "foods", "foodstore",
	"great britain", "cinemas", "entertainment", "hotels",
	"limited", "ltd", "plc", "llp", "inc",
	"group", "uk", "corp", "corporation",
	"& co", "and co",
}

var (
	parenRe   = regexp.MustCompile(`\s*\([^)]*\)`)
	titleCase = cases.Title(language.BritishEnglish)
)

// Resolver maps operators to search identities. Overrides encode human
// knowledge of corporate-name/brand divergence (Whitbread trades as Premier
// Inn); everything else is derived by suffix stripping.
type Resolver struct {
	Overrides map[string]string // operator ID -> brand, returned verbatim
	Suffixes  []string
}

// NewResolver builds a resolver with the default suffix list and the
// built-in override table, both replaceable from configuration.
func NewResolver(overrides map[string]string, suffixes []string) *Resolver {
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	return &Resolver{Overrides: overrides, Suffixes: suffixes}
}

// Resolve returns the search identity for an operator. Overrides win; next,
// a cleaned primary trading name is preferred over the cleaned legal name
// when it is non-empty, strictly shorter, and case-insensitively different
// (shorter distinct names are usually the consumer-facing brand).
func (r *Resolver) Resolve(op model.Operator) model.SearchIdentity {
	if brand, ok := r.Overrides[op.ID]; ok {
		return model.SearchIdentity{Value: brand, Source: model.SourceOverride}
	}

	cleaned := r.Clean(op.Name)

	if trading := op.PrimaryTradingName(); trading != "" {
		cleanedTrading := r.Clean(strings.TrimRight(strings.TrimSpace(trading), "."))
		if cleanedTrading != "" &&
			len(cleanedTrading) < len(cleaned) &&
			!strings.EqualFold(cleanedTrading, cleaned) {
			return model.SearchIdentity{Value: cleanedTrading, Source: model.SourceTradingName}
		}
	}

	return model.SearchIdentity{Value: cleaned, Source: model.SourceLegalName}
}

// Clean strips parentheticals and trailing corporate suffixes from a name
// until no suffix applies, then title-cases all-caps results longer than
// three characters. The length guard is a deliberate heuristic: short
// all-caps names tend to be genuine brand initialisms.
func (r *Resolver) Clean(name string) string {
	s := strings.TrimSpace(name)
	s = parenRe.ReplaceAllString(s, "")

	for {
		prev := s
		for _, suffix := range r.Suffixes {
			s = trimSuffixFold(s, suffix)
		}
		s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ","))
		if s == prev {
			break
		}
	}

	if s == strings.ToUpper(s) && len(s) > 3 {
		s = titleCase.String(strings.ToLower(s))
	}

	return strings.TrimSpace(s)
}

// trimSuffixFold removes a whitespace-preceded suffix from the end of s,
// case-insensitively.
func trimSuffixFold(s, suffix string) string {
	trimmed := strings.TrimRight(s, " \t")
	if len(trimmed) <= len(suffix) {
		return s
	}
	tail := trimmed[len(trimmed)-len(suffix):]
	if !strings.EqualFold(tail, suffix) {
		return s
	}
	head := trimmed[:len(trimmed)-len(suffix)]
	if !strings.HasSuffix(head, " ") && !strings.HasSuffix(head, "\t") {
		return s
	}
	return strings.TrimRight(head, " \t")
}
