// Package locate runs the per-operator reconciliation pipeline: resolve a
// search identity, query Overpass, normalize the results, persist.
package locate

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/camatlas/camatlas/internal/model"
	"github.com/camatlas/camatlas/pkg/overpass"
)

const (
	coordPrecision = 7   // decimal places, about 1 cm
	maxDescLen     = 200
)

// addrKeys are the address tags folded into a location description, in
// display order.
var addrKeys = []string{
	"addr:housename", "addr:housenumber", "addr:street",
	"addr:city", "addr:postcode",
}

// CamerasFromElements converts raw Overpass elements into camera records
// for one operator. Elements without resolvable coordinates are dropped, as
// are duplicates within the batch: the query unions overlapping brand and
// name clauses, so the same feature can arrive twice. Total, never errors.
func CamerasFromElements(elements []overpass.Element, operatorID string) []model.Camera {
	cameras := make([]model.Camera, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))

	for _, el := range elements {
		lat, lng, ok := coordinates(el)
		if !ok {
			continue
		}

		id := fmt.Sprintf("%s-osm-%s%d", operatorID, kindLetter(el.Type), el.ID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		cameras = append(cameras, model.Camera{
			ID:           id,
			Lat:          round(lat),
			Lng:          round(lng),
			LocationDesc: describe(el.Tags),
			OperatorID:   operatorID,
		})
	}

	return cameras
}

// coordinates resolves an element's point: nodes carry lat/lon directly,
// ways and relations only a center.
func coordinates(el overpass.Element) (lat, lng float64, ok bool) {
	if el.Type == "node" {
		return el.Lat, el.Lon, el.Lat != 0 || el.Lon != 0
	}
	if el.Center == nil {
		return 0, 0, false
	}
	return el.Center.Lat, el.Center.Lon, el.Center.Lat != 0 || el.Center.Lon != 0
}

func kindLetter(osmType string) string {
	switch osmType {
	case "node":
		return "n"
	case "way":
		return "w"
	case "relation":
		return "r"
	default:
		return osmType
	}
}

func round(v float64) float64 {
	scale := math.Pow10(coordPrecision)
	return math.Round(v*scale) / scale
}

// describe builds "name, addr fragments..." from the element tags, using
// whichever parts exist, capped at 200 characters.
func describe(tags map[string]string) string {
	name := strings.TrimSpace(tags["name"])

	var addrParts []string
	for _, k := range addrKeys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			addrParts = append(addrParts, v)
		}
	}
	addr := strings.Join(addrParts, ", ")

	var desc string
	switch {
	case name != "" && addr != "":
		desc = name + ", " + addr
	case name != "":
		desc = name
	default:
		desc = addr
	}

	return truncate(desc, maxDescLen)
}

// truncate cuts s to at most max bytes without splitting a rune; OSM names
// are frequently non-ASCII and the store rejects invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
