package installed

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// currentAPIVersion is the manifest API generation expected from
// non-legacy modules. Anything older is served but flagged legacy.
const currentAPIVersion = 2

// manifest is the module.yaml file shipped inside each installed
// module version directory.
type manifest struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Manufacturer string   `yaml:"manufacturer"`
	Shortname    string   `yaml:"shortname"`
	Products     []string `yaml:"products"`
	Version      string   `yaml:"version"`
	Prerelease   bool     `yaml:"prerelease"`
	APIVersion   int      `yaml:"api_version"`
	HasHelp      bool     `yaml:"help"`
}

// loadManifest reads and validates a module.yaml file.
func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s has empty module id", path)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("manifest %s has empty version", path)
	}

	return &m, nil
}
