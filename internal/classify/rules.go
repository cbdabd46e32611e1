// Package classify decides which register rows describe organisations
// likely to operate public-facing CCTV, and collapses duplicate rows into
// canonical operators.
package classify

import (
	"regexp"

	"github.com/rotisserie/eris"

	"github.com/camatlas/camatlas/internal/model"
)

// Rules configures the inclusion/exclusion decision. All matching is
// case-insensitive.
type Rules struct {
	// BrandTerms are matched as substrings of the organisation name plus
	// trading names. High precision: a hit includes the row at any tier.
	BrandTerms []string

	// NamePatterns are institutional regexes (NHS, police, councils, ...).
	// A hit includes the row only above the lowest tier; sole-trader
	// registrants produce too many false positives for loose keywords.
	NamePatterns []*regexp.Regexp

	// ExcludePatterns reject a row outright, before any inclusion check.
	ExcludePatterns []*regexp.Regexp

	// AutoTier is included unconditionally (the largest registrants).
	AutoTier model.Tier

	// SlugSuffixes replaces the default corporate-suffix list used when
	// deriving operator identifiers; empty keeps slug.DefaultSuffixes.
	SlugSuffixes []string
}

// RuleFile is the YAML shape for overriding the built-in rules.
type RuleFile struct {
	BrandTerms      []string `yaml:"brand_terms"`
	NamePatterns    []string `yaml:"name_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	AutoTier        string   `yaml:"auto_tier"`
	SlugSuffixes    []string `yaml:"slug_suffixes"`
}

// Compile builds Rules from a RuleFile, leaving zero-value fields at the
// given defaults.
func (f RuleFile) Compile(defaults Rules) (Rules, error) {
	out := defaults
	if len(f.BrandTerms) > 0 {
		out.BrandTerms = f.BrandTerms
	}
	if len(f.NamePatterns) > 0 {
		compiled, err := compileAll(f.NamePatterns)
		if err != nil {
			return Rules{}, eris.Wrap(err, "classify: name patterns")
		}
		out.NamePatterns = compiled
	}
	if len(f.ExcludePatterns) > 0 {
		compiled, err := compileAll(f.ExcludePatterns)
		if err != nil {
			return Rules{}, eris.Wrap(err, "classify: exclude patterns")
		}
		out.ExcludePatterns = compiled
	}
	if f.AutoTier != "" {
		t := model.ParseTier(f.AutoTier)
		if t == model.TierUnknown {
			return Rules{}, eris.Errorf("classify: unknown auto tier %q", f.AutoTier)
		}
		out.AutoTier = t
	}
	if len(f.SlugSuffixes) > 0 {
		out.SlugSuffixes = f.SlugSuffixes
	}
	return out, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, eris.Wrapf(err, "compile %q", p)
		}
		out = append(out, re)
	}
	return out, nil
}

func mustCompileAll(patterns []string) []*regexp.Regexp {
	out, err := compileAll(patterns)
	if err != nil {
		panic(err)
	}
	return out
}

// DefaultRules returns the built-in rule set: national retail, food,
// financial, transport and leisure brands, institutional name patterns, and
// exclusions for registrants too small to run CCTV the public encounters.
func DefaultRules() Rules {
	return Rules{
		BrandTerms: []string{
			// Supermarkets
			"tesco", "asda", "sainsbury", "morrisons", "aldi", "lidl",
			"marks and spencer", "m&s ", "waitrose", "co-op group", "cooperative group",
			"iceland foods",
			// Retail
			"argos", "primark", "john lewis", "b&q", "homebase", "ikea",
			"next plc", "next retail", "h&m", "tk maxx", "tjx",
			"poundland", "wilko", "home bargains", "superdrug",
			"boots uk", "boots opticians", "currys", "dixons",
			"sports direct", "jd sports", "halfords",
			// Food & drink
			"mcdonald", "greggs", "costa coffee", "starbucks", "pret a manger",
			"kfc", "subway", "nando", "wetherspoon", "pizza hut", "domino's pizza",
			"burger king", "five guys",
			// Banks / financial
			"barclays", "hsbc", "lloyds bank", "natwest", "nationwide building",
			"santander uk", "virgin money", "halifax",
			// Telecoms
			"vodafone", "telefonica", "ee limited", "three uk", "bt group",
			// Petrol
			"shell uk", "bp ", "esso ", "texaco",
			// Leisure
			"odeon", "cineworld", "vue entertainment",
			"david lloyd", "puregym", "the gym group", "virgin active",
			// Parking / transport
			"national car parks", "ncp", "apcoa",
			"network rail", "transport for london", "transport for greater manchester",
			"british transport police",
			// Hotels
			"premier inn", "travelodge", "hilton",
			// Health
			"bupa", "nuffield health",
			// Online retail with physical estate
			"amazon uk",
		},
		NamePatterns: mustCompileAll([]string{
			// NHS
			`\bnhs\b`,
			`\bhospital\b`,
			`\btrust\b.*\bnhs\b`,
			`\bnhs\b.*\btrust\b`,
			`\bhealth board\b`,
			`\bambulance\b`,
			// Police
			`\bpolice\b`,
			`\bconstabulary\b`,
			// Councils
			`\bcouncil\b`,
			`\bborough\b`,
			`\bcity of\b`,
			`\bcounty\b.*\bcouncil\b`,
			// Transport
			`\btransport for\b`,
			// Universities
			`\buniversity\b`,
		}),
		ExcludePatterns: mustCompileAll([]string{
			`\bparish council\b`,
			`\bcommunity council\b`,
			`\btown council\b`,
			`\bparochial\b`,
		}),
		AutoTier: model.Tier3,
	}
}
