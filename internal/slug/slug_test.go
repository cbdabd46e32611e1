package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Greggs PLC", "greggs"},
		{"limited suffix", "ALDI Stores Limited", "aldi-stores"},
		{"single suffix only", "Iceland Foods Ltd", "iceland-foods"},
		{"parenthetical removed", "Next (Retail) Limited", "next"},
		{"punctuation dropped", "B&Q Limited", "bq"},
		{"apostrophe dropped", "Sainsbury's Supermarkets Ltd", "sainsburys-supermarkets"},
		{"hyphen as separator", "Co-operative Group Limited", "co-operative-group"},
		{"whitespace collapsed", "  J   D  Wetherspoon  PLC ", "j-d-wetherspoon"},
		{"uk suffix", "Shell UK", "shell"},
		{"empty", "", ""},
		{"only punctuation", "&&&", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMake_TruncatesAt60(t *testing.T) {
	long := strings.Repeat("verylongword ", 10)
	got := Make(long)
	assert.LessOrEqual(t, len(got), 60)
	assert.False(t, strings.HasSuffix(got, "-"), "trailing hyphens must be trimmed after truncation")
}

func TestMake_Idempotent(t *testing.T) {
	inputs := []string{
		"ALDI Stores Limited",
		"Next (Retail) Limited",
		"Co-operative Group Limited",
		"Marks and Spencer PLC",
		"B&Q Limited",
		strings.Repeat("word ", 20),
	}
	for _, in := range inputs {
		once := Make(in)
		assert.Equal(t, once, Make(once), "Make(Make(%q))", in)
	}
}

func TestMakeWith_CustomSuffixes(t *testing.T) {
	// The replacement list fully supplants the default one.
	assert.Equal(t, "siemens", MakeWith("Siemens GmbH", []string{" gmbh"}))
	assert.Equal(t, "siemens-ltd", MakeWith("Siemens Ltd", []string{" gmbh"}))
	// Empty falls back to the defaults.
	assert.Equal(t, "siemens", MakeWith("Siemens Ltd", nil))
}

func TestMake_OnlySingleSuffixStripped(t *testing.T) {
	// Slugging removes one trailing suffix, not a chain: "X Retail Services
	// Limited" keeps "retail-services" so distinct legal entities stay distinct.
	assert.Equal(t, "x-retail-services", Make("X Retail Services Limited"))
}
