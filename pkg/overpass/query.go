// Package overpass builds and executes Overpass QL queries against the
// OpenStreetMap Overpass API.
package overpass

import (
	"fmt"
	"regexp"
	"strings"
)

// TagFilter constrains a query clause to features carrying an exact tag,
// e.g. {Key: "shop", Value: "supermarket"}.
type TagFilter struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// QuerySpec is a declarative description of a brand search. Area is an
// ISO3166-1 country code; TimeoutSecs is the server-side query budget.
type QuerySpec struct {
	Brand       string
	Area        string
	Filters     []TagFilter
	TimeoutSecs int
}

// DefaultArea scopes queries to Great Britain.
const DefaultArea = "GB"

const defaultTimeoutSecs = 180

// BrandPattern returns the regex used to match a brand tag value, allowing
// an optional trailing "s" or "'s" so "Wetherspoon" finds premises tagged
// "Wetherspoons".
func BrandPattern(brand string) string {
	escaped := strings.ReplaceAll(regexp.QuoteMeta(brand), `"`, `\"`)
	return fmt.Sprintf("^%s('?s)?$", escaped)
}

// Build renders a QuerySpec as Overpass QL. For every tag filter (or once,
// unconstrained, if there are none) it emits two clauses: an exact-style
// regex match on the brand tag, and the same match on the free-text name
// tag, since many contributors set only name. Line and area features are
// collapsed to center points by `out center`.
func Build(spec QuerySpec) string {
	area := spec.Area
	if area == "" {
		area = DefaultArea
	}
	timeout := spec.TimeoutSecs
	if timeout <= 0 {
		timeout = defaultTimeoutSecs
	}

	pattern := BrandPattern(spec.Brand)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n", timeout)
	fmt.Fprintf(&b, "area[\"ISO3166-1\"=%q]->.a;\n", area)
	b.WriteString("(\n")

	writeClauses := func(filter string) {
		fmt.Fprintf(&b, "  nw[\"brand\"~%q,i]%s(area.a);\n", pattern, filter)
		fmt.Fprintf(&b, "  nw[\"name\"~%q,i]%s(area.a);\n", pattern, filter)
	}

	if len(spec.Filters) == 0 {
		writeClauses("")
	} else {
		for _, f := range spec.Filters {
			writeClauses(fmt.Sprintf("[%q=%q]", f.Key, f.Value))
		}
	}

	b.WriteString(");\n")
	b.WriteString("out center;")
	return b.String()
}
