// Package model defines the domain records shared across the pipeline.
package model

import "strings"

// Tier is the ICO payment tier, an ordinal size category of a registrant.
// Tier 3 covers the largest organisations; Tier 1 covers sole traders and
// other small registrants. Zero means the tier field was missing or
// unrecognised.
type Tier int

const (
	TierUnknown Tier = 0
	Tier1       Tier = 1
	Tier2       Tier = 2
	Tier3       Tier = 3
)

// ParseTier converts the register's "Tier N" strings to a Tier.
func ParseTier(s string) Tier {
	switch strings.TrimSpace(s) {
	case "Tier 1":
		return Tier1
	case "Tier 2":
		return Tier2
	case "Tier 3":
		return Tier3
	default:
		return TierUnknown
	}
}

// String renders the tier in the register's own format.
func (t Tier) String() string {
	switch t {
	case Tier1:
		return "Tier 1"
	case Tier2:
		return "Tier 2"
	case Tier3:
		return "Tier 3"
	default:
		return "unknown"
	}
}

// Operator is one canonical CCTV-operating organisation distilled from the
// ICO register. ID is a slug derived from the legal name; rows whose names
// slug identically merge into a single Operator.
type Operator struct {
	ID              string   `json:"slug"`
	Name            string   `json:"name"`
	TradingNames    []string `json:"trading_names,omitempty"`
	ICOReg          string   `json:"ico_reg,omitempty"`
	Tier            Tier     `json:"tier"`
	PrivacyEmail    string   `json:"privacy_email,omitempty"`
	PostalAddress   string   `json:"postal_address,omitempty"`
	PublicAuthority bool     `json:"public_authority,omitempty"`
}

// PrimaryTradingName returns the first trading name, or empty if none.
func (o Operator) PrimaryTradingName() string {
	if len(o.TradingNames) == 0 {
		return ""
	}
	return o.TradingNames[0]
}

// IdentitySource records how a search identity was derived. Diagnostic only;
// behaviour never branches on it.
type IdentitySource string

const (
	SourceOverride    IdentitySource = "override"
	SourceLegalName   IdentitySource = "derived_from_legal_name"
	SourceTradingName IdentitySource = "derived_from_trading_name"
)

// SearchIdentity is the brand string used to query OSM for an operator's
// premises, plus where it came from.
type SearchIdentity struct {
	Value  string         `json:"value"`
	Source IdentitySource `json:"source"`
}

// Queryable reports whether the identity is long enough to be worth sending
// to Overpass. One-character identities match far too much.
func (s SearchIdentity) Queryable() bool {
	return len(s.Value) >= 2
}

// Camera is a presumed camera site: one OSM feature matched to an operator.
// ID is globally unique by construction (operator slug + OSM kind + OSM id).
type Camera struct {
	ID           string  `json:"id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	LocationDesc string  `json:"location_desc,omitempty"`
	OperatorID   string  `json:"operator_id"`
}
