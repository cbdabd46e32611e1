package classify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadRules reads a YAML rule file and compiles it over the built-in
// defaults. An empty path returns the defaults unchanged.
func LoadRules(path string) (Rules, error) {
	defaults := DefaultRules()
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "classify: read rule file %s", path)
	}

	var file RuleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Rules{}, eris.Wrapf(err, "classify: parse rule file %s", path)
	}

	return file.Compile(defaults)
}
