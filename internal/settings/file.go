package settings

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MergeFile reads a YAML settings file and applies the keys it contains on
// top of base. Keys absent from the file keep their base value.
//
//	owner: example
//	repository: city-data
//	branch: main
//	token: ghp_...
//	cache_minutes: 30
func MergeFile(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}
	merged, err := Merge(data, base)
	if err != nil {
		return Settings{}, fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	return merged, nil
}

// Merge applies a YAML document on top of base.
func Merge(data []byte, base Settings) (Settings, error) {
	merged := base
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return Settings{}, err
	}
	return merged.Normalize(), nil
}

// Export renders st in the settings file format. The token is left out
// unless includeToken is set.
func Export(st Settings, includeToken bool, now time.Time) ([]byte, error) {
	if !includeToken {
		st.Token = ""
	}
	var doc yaml.Node
	if err := doc.Encode(st); err != nil {
		return nil, err
	}
	doc.HeadComment = "crdashboard settings exported " + now.UTC().Format(time.RFC3339)
	return yaml.Marshal(&doc)
}
