// Package registry adapts raw ICO register-of-fee-payers CSV rows into
// typed accessors. The register's schema is not enforced: absent columns
// read as empty strings.
package registry

import (
	"fmt"
	"strings"

	"github.com/camatlas/camatlas/internal/model"
)

// Column names in the register CSV.
const (
	ColName            = "Organisation_name"
	ColTradingNames    = "Trading_names"
	ColTier            = "Payment_tier"
	ColRegistration    = "Registration_number"
	ColPostcode        = "Organisation_postcode"
	ColPublicAuthority = "Public_authority"
	ColDPOEmail        = "DPO_or_Person_responsible_for_DP_Email"

	addressLines = 5
)

// Row is one register record, keyed by CSV header.
type Row map[string]string

func (r Row) get(col string) string {
	return strings.TrimSpace(r[col])
}

// Name returns the registered organisation name.
func (r Row) Name() string { return r.get(ColName) }

// TradingNames returns the pipe-delimited trading names as a slice, with
// empty entries dropped. The first entry is the primary trading name.
func (r Row) TradingNames() []string {
	raw := r.get(ColTradingNames)
	if raw == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, "|") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Tier returns the parsed payment tier.
func (r Row) Tier() model.Tier { return model.ParseTier(r.get(ColTier)) }

// Registration returns the ICO registration number.
func (r Row) Registration() string { return r.get(ColRegistration) }

// PublicAuthority reports whether the registrant declared itself a public
// authority.
func (r Row) PublicAuthority() bool { return r.get(ColPublicAuthority) == "Y" }

// PrivacyEmail returns the DPO contact email, if recorded.
func (r Row) PrivacyEmail() string { return r.get(ColDPOEmail) }

// PostalAddress joins the address line columns and postcode with commas,
// skipping blanks.
func (r Row) PostalAddress() string {
	var parts []string
	for i := 1; i <= addressLines; i++ {
		if v := r.get(fmt.Sprintf("Organisation_address_line_%d", i)); v != "" {
			parts = append(parts, v)
		}
	}
	if pc := r.get(ColPostcode); pc != "" {
		parts = append(parts, pc)
	}
	return strings.Join(parts, ", ")
}
