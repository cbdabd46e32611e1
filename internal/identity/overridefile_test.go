package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOverrideFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadResolver_MergesOverridesOverDefaults(t *testing.T) {
	path := writeOverrideFile(t, `
overrides:
  spar-uk: Spar
  whitbread-group: Premier Inn UK
`)

	r, err := LoadResolver(path)
	require.NoError(t, err)

	assert.Equal(t, "Spar", r.Overrides["spar-uk"])
	// file entries win over the built-ins
	assert.Equal(t, "Premier Inn UK", r.Overrides["whitbread-group"])
	// untouched built-ins survive
	assert.Equal(t, "McDonald's", r.Overrides["mcdonalds-restaurants"])
	// no suffixes in the file keeps the defaults
	assert.Equal(t, DefaultSuffixes, r.Suffixes)
}

func TestLoadResolver_CustomSuffixes(t *testing.T) {
	path := writeOverrideFile(t, `
suffixes:
  - bakeries
  - limited
`)

	r, err := LoadResolver(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bakeries", "limited"}, r.Suffixes)

	// The replacement list drives Clean: "bakeries" is not a default suffix.
	assert.Equal(t, "Greggs", r.Clean("Greggs Bakeries Limited"))
	// Defaults no longer apply once replaced.
	assert.Equal(t, "Boots PLC", r.Clean("Boots PLC"))
}

func TestLoadResolver_EmptyPath(t *testing.T) {
	r, err := LoadResolver("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOverrides(), r.Overrides)
	assert.Equal(t, DefaultSuffixes, r.Suffixes)
}

func TestLoadResolver_BadYAML(t *testing.T) {
	path := writeOverrideFile(t, ":\n  - [broken")

	_, err := LoadResolver(path)
	require.Error(t, err)
}

func TestLoadResolver_MissingFile(t *testing.T) {
	_, err := LoadResolver(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
