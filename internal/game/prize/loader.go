package prize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalogFile is the top-level YAML structure for catalog files.
type yamlCatalogFile struct {
	Prizes []Prize `yaml:"prizes"`
}

// LoadFromFile reads and validates a catalog YAML file.
//
// Precondition: path must point to a YAML catalog file.
// Postcondition: Returns a validated prize list or a non-nil error.
func LoadFromFile(path string) ([]Prize, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prize catalog %s: %w", path, err)
	}
	prizes, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prizes, nil
}

// LoadFromBytes parses and validates a catalog from YAML bytes.
//
// Postcondition: Returns a validated prize list or a non-nil error.
func LoadFromBytes(data []byte) ([]Prize, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing prize catalog YAML: %w", err)
	}
	if err := Validate(file.Prizes); err != nil {
		return nil, err
	}
	return file.Prizes, nil
}

// Load returns the catalog at path, or Default() when path is empty.
//
// Postcondition: Returns a validated prize list or a non-nil error.
func Load(path string) ([]Prize, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}
