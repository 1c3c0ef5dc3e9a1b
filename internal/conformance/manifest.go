// Package conformance drives the end-to-end scenario corpus and the
// pipeline-wide invariants spec.md §8 calls "testable properties": it
// reads a YAML manifest of named scenarios, an optional JSON sidecar per
// scenario for expectations too open-ended for a fixed YAML schema, and
// runs each scenario through internal/driver.
package conformance

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Scenario is one named case: a source snippet plus the handful of
// observable outcomes spec.md §8's concrete end-to-end examples check.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Source      string `yaml:"source"`

	// ExpectError, when true, means Source is expected to fail somewhere
	// in the pipeline (parse, build, or emit); WantErrorSubstr then names
	// a substring the resulting error message must contain.
	ExpectError     bool   `yaml:"expectError"`
	WantErrorSubstr string `yaml:"wantErrorSubstr"`

	// WantSource and WantIR list substrings the emitted C source / IR
	// dump must contain, for a scenario that is expected to succeed.
	// WantSourceNot lists substrings that must NOT appear in the emitted
	// source (e.g. asserting an intrinsic call was statically eliminated).
	WantSource    []string `yaml:"wantSource"`
	WantIR        []string `yaml:"wantIR"`
	WantSourceNot []string `yaml:"wantSourceNot"`

	// WantIRCount asserts an exact occurrence count for an IR substring,
	// for cases where "appears at all" (WantIR) is too weak to catch a
	// missing re-lowering on one of several exit paths.
	WantIRCount map[string]int `yaml:"wantIRCount"`

	// Sidecar, if set, names a JSON file (relative to the manifest's own
	// directory) read via internal/conformance's gjson-backed
	// Expectations for this scenario's less structured assertions.
	Sidecar string `yaml:"sidecar"`
}

// Manifest is the top-level YAML document: an ordered list of scenarios.
type Manifest struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadManifest reads and parses a YAML scenario manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}
