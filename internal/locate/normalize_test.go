package locate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camatlas/camatlas/pkg/overpass"
)

func TestCamerasFromElements_NodeAndWay(t *testing.T) {
	elements := []overpass.Element{
		{Type: "node", ID: 10, Lat: 51.50073256, Lon: -0.12720031},
		{Type: "way", ID: 10, Center: &overpass.LatLon{Lat: 53.4807593, Lon: -2.2426305}},
	}

	cams := CamerasFromElements(elements, "tesco")
	require.Len(t, cams, 2)

	// A node and a way sharing a numeric id stay distinct: the kind letter
	// is part of the composite key.
	assert.Equal(t, "tesco-osm-n10", cams[0].ID)
	assert.Equal(t, "tesco-osm-w10", cams[1].ID)
	assert.Equal(t, "tesco", cams[0].OperatorID)

	// Coordinates are rounded to 7 decimal places.
	assert.Equal(t, 51.5007326, cams[0].Lat)
	assert.Equal(t, -0.1272003, cams[0].Lng)
}

func TestCamerasFromElements_Relation(t *testing.T) {
	cams := CamerasFromElements([]overpass.Element{
		{Type: "relation", ID: 7, Center: &overpass.LatLon{Lat: 55.9533, Lon: -3.1883}},
	}, "ncp")
	require.Len(t, cams, 1)
	assert.Equal(t, "ncp-osm-r7", cams[0].ID)
}

func TestCamerasFromElements_DropsMissingCoordinates(t *testing.T) {
	elements := []overpass.Element{
		{Type: "node", ID: 1},               // no coordinates at all
		{Type: "way", ID: 2},                // area element without a center
		{Type: "node", ID: 3, Lat: 51.5, Lon: -0.1},
	}

	cams := CamerasFromElements(elements, "greggs")
	require.Len(t, cams, 1)
	assert.Equal(t, "greggs-osm-n3", cams[0].ID)
}

func TestCamerasFromElements_DedupesWithinBatch(t *testing.T) {
	// The query unions brand and name clauses, so the same feature can be
	// returned twice; only the first survives.
	el := overpass.Element{Type: "node", ID: 42, Lat: 51.5, Lon: -0.1}

	cams := CamerasFromElements([]overpass.Element{el, el, el}, "asda")
	assert.Len(t, cams, 1)
}

func TestCamerasFromElements_Description(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{
			"name and address",
			map[string]string{
				"name":             "Tesco Express",
				"addr:housenumber": "12",
				"addr:street":      "High Street",
				"addr:city":        "Leeds",
				"addr:postcode":    "LS1 1AA",
			},
			"Tesco Express, 12, High Street, Leeds, LS1 1AA",
		},
		{
			"name only",
			map[string]string{"name": "Tesco Extra"},
			"Tesco Extra",
		},
		{
			"address only",
			map[string]string{"addr:street": "Mill Lane", "addr:city": "York"},
			"Mill Lane, York",
		},
		{"no tags", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cams := CamerasFromElements([]overpass.Element{
				{Type: "node", ID: 1, Lat: 51.5, Lon: -0.1, Tags: tt.tags},
			}, "tesco")
			require.Len(t, cams, 1)
			assert.Equal(t, tt.want, cams[0].LocationDesc)
		})
	}
}

func TestCamerasFromElements_DescriptionTruncated(t *testing.T) {
	cams := CamerasFromElements([]overpass.Element{
		{Type: "node", ID: 1, Lat: 51.5, Lon: -0.1, Tags: map[string]string{
			"name": strings.Repeat("Very Long Name ", 30),
		}},
	}, "tesco")
	require.Len(t, cams, 1)
	assert.Len(t, cams[0].LocationDesc, 200)
}

func TestCamerasFromElements_TruncationKeepsValidUTF8(t *testing.T) {
	// A multi-byte rune straddling the cap must be dropped whole, not split:
	// the store rejects invalid UTF-8 and Welsh and accented names are
	// common in GB data.
	name := strings.Repeat("a", 199) + "éé"
	cams := CamerasFromElements([]overpass.Element{
		{Type: "node", ID: 1, Lat: 51.5, Lon: -0.1, Tags: map[string]string{"name": name}},
	}, "caffi")
	require.Len(t, cams, 1)

	desc := cams[0].LocationDesc
	assert.True(t, utf8.ValidString(desc))
	assert.LessOrEqual(t, len(desc), 200)
	assert.Equal(t, strings.Repeat("a", 199), desc)
}
