package classify

import (
	"sort"
	"strings"

	"github.com/camatlas/camatlas/internal/model"
	"github.com/camatlas/camatlas/internal/registry"
	"github.com/camatlas/camatlas/internal/slug"
)

// Engine filters register rows and merges duplicates.
type Engine struct {
	rules Rules

	byID  map[string]model.Operator
	order []string // first-seen order of IDs, for stable iteration in tests

	scanned  int
	rejected int
}

// NewEngine creates a classification engine with the given rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{
		rules: rules,
		byID:  make(map[string]model.Operator),
	}
}

// Match reports whether a row passes the inclusion rules. Exclusions are
// evaluated first and always win; the institutional-pattern check is gated
// to tiers above the lowest because sole-trader rows match loose keywords
// like "trust" too often.
func (e *Engine) Match(row registry.Row) bool {
	name := row.Name()
	if name == "" {
		return false
	}

	for _, re := range e.rules.ExcludePatterns {
		if re.MatchString(name) {
			return false
		}
	}

	tier := row.Tier()
	if tier == e.rules.AutoTier {
		return true
	}

	combined := strings.ToLower(name + " " + strings.Join(row.TradingNames(), " "))
	for _, term := range e.rules.BrandTerms {
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}

	if tier != model.Tier1 {
		for _, re := range e.rules.NamePatterns {
			if re.MatchString(name) {
				return true
			}
		}
	}

	return false
}

// Add classifies one row and, if it passes, folds it into the deduplicated
// operator set. Never fails; rows it cannot use are counted and dropped.
func (e *Engine) Add(row registry.Row) {
	e.scanned++

	if !e.Match(row) {
		e.rejected++
		return
	}

	id := slug.MakeWith(row.Name(), e.rules.SlugSuffixes)
	if id == "" {
		e.rejected++
		return
	}

	candidate := model.Operator{
		ID:              id,
		Name:            row.Name(),
		TradingNames:    row.TradingNames(),
		ICOReg:          row.Registration(),
		Tier:            row.Tier(),
		PrivacyEmail:    row.PrivacyEmail(),
		PostalAddress:   row.PostalAddress(),
		PublicAuthority: row.PublicAuthority(),
	}

	existing, ok := e.byID[id]
	if !ok {
		e.byID[id] = candidate
		e.order = append(e.order, id)
		return
	}
	e.byID[id] = e.merge(existing, candidate)
}

// merge resolves two rows that slug to the same identifier: the incumbent
// wins unless the newcomer is at the auto-include tier and the incumbent is
// not. Row order beyond that is the tie-break, so the comparator stays a
// two-candidate reduction.
func (e *Engine) merge(existing, candidate model.Operator) model.Operator {
	if candidate.Tier == e.rules.AutoTier && existing.Tier != e.rules.AutoTier {
		return candidate
	}
	return existing
}

// Operators returns the surviving records sorted by case-insensitive name.
func (e *Engine) Operators() []model.Operator {
	out := make([]model.Operator, 0, len(e.byID))
	for _, id := range e.order {
		out = append(out, e.byID[id])
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Stats reports how many rows were scanned and rejected so far.
func (e *Engine) Stats() (scanned, kept, rejected int) {
	return e.scanned, len(e.byID), e.rejected
}

// TierCounts tallies surviving operators per tier.
func (e *Engine) TierCounts() map[model.Tier]int {
	counts := make(map[model.Tier]int)
	for _, op := range e.byID {
		counts[op.Tier]++
	}
	return counts
}
