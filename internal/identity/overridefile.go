package identity

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// OverrideFile is the YAML shape for identity configuration: extra slug to
// search-name overrides merged over the built-in table, and an optional
// replacement for the brand-derivation suffix list.
type OverrideFile struct {
	Overrides map[string]string `yaml:"overrides"`
	Suffixes  []string          `yaml:"suffixes"`
}

// LoadResolver builds a Resolver from an optional YAML file. An empty path
// returns a resolver on the built-in overrides and suffixes.
func LoadResolver(path string) (*Resolver, error) {
	if path == "" {
		return NewResolver(nil, nil), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "identity: read overrides file %s", path)
	}

	var file OverrideFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, eris.Wrapf(err, "identity: parse overrides file %s", path)
	}

	overrides := DefaultOverrides()
	for slug, name := range file.Overrides {
		overrides[slug] = name
	}
	return NewResolver(overrides, file.Suffixes), nil
}
