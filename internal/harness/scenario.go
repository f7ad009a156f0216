package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recsnap/internal/record"
)

// Scenario defines a projection scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schemas is the directory of CUE model declarations. Relative paths are
	// resolved against the scenario file. May be left empty when the caller
	// supplies a registry.
	Schemas string `yaml:"schemas,omitempty"`

	// Record is the document projected by the scenario.
	Record record.Document `yaml:"record"`

	// Expect is a subset match against the snapshot: every listed key must be
	// present with an equal value. Nested objects are matched as subsets too.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Exact switches Expect to whole-snapshot equality.
	Exact bool `yaml:"exact,omitempty"`

	// Absent lists keys that must not appear in the snapshot.
	Absent []string `yaml:"absent,omitempty"`

	// ExpectError is a substring of the projection error. When set, the
	// scenario passes only if projection fails with a matching message.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the schemas path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := DecodeScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schemas != "" && !filepath.IsAbs(scenario.Schemas) && basePath != "" {
		scenario.Schemas = filepath.Join(basePath, scenario.Schemas)
	}
	if scenario.Schemas != "" {
		if _, err := os.Stat(scenario.Schemas); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: schemas directory not found: %s", scenario.Schemas)
		}
	}

	return scenario, nil
}

// DecodeScenario parses scenario YAML with strict field validation.
func DecodeScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Record.Model == "" {
		return fmt.Errorf("record.model is required")
	}

	if s.ExpectError != "" && (len(s.Expect) > 0 || len(s.Absent) > 0) {
		return fmt.Errorf("expect_error cannot be combined with expect or absent")
	}

	if s.Exact && s.Expect == nil {
		return fmt.Errorf("exact requires expect")
	}

	for i, key := range s.Absent {
		if key == "" {
			return fmt.Errorf("absent[%d]: key is required", i)
		}
		if _, ok := s.Expect[key]; ok {
			return fmt.Errorf("absent[%d]: %q is also expected", i, key)
		}
	}

	return nil
}
