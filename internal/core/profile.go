package core

// profile.go loads reusable pipeline configurations from YAML:
//
//	columns: [id, name, email]
//	encoding: utf-8
//	transforms:
//	  - column: id
//	    name: prefix
//	    args: ["USER-"]
//	  - column: name
//	    name: title

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/csvcut/internal/transform"
)

// Profile is a saved column selection and set of transformer assignments.
type Profile struct {
	Columns    []string           `yaml:"columns,omitempty"`
	Encoding   string             `yaml:"encoding,omitempty"`
	Transforms []ProfileTransform `yaml:"transforms,omitempty"`
}

// ProfileTransform assigns a registered transformer to a column.
type ProfileTransform struct {
	Column string   `yaml:"column"`
	Name   string   `yaml:"name"`
	Args   []string `yaml:"args,omitempty"`
}

// LoadProfile reads and parses a YAML profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile parses YAML profile data and checks that every transform
// names a column and a registered transformer.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	for i, t := range p.Transforms {
		if t.Column == "" {
			return nil, fmt.Errorf("profile transform %d: missing column", i+1)
		}
		if _, ok := transform.Lookup(t.Name); !ok {
			return nil, fmt.Errorf("profile transform %d: unknown transformer %q", i+1, t.Name)
		}
	}
	return &p, nil
}

// Apply configures pipe from the profile. Columns replace the pipeline's
// output list only when the profile names some.
func (p *Profile) Apply(pipe *Pipeline) error {
	if len(p.Columns) > 0 {
		pipe.SetOutputColumns(p.Columns...)
	}
	for _, t := range p.Transforms {
		tr, err := transform.Build(t.Name, t.Args...)
		if err != nil {
			return fmt.Errorf("profile column %q: %w", t.Column, err)
		}
		pipe.AddTransformer(t.Column, tr)
	}
	return nil
}

// Marshal serializes the profile to YAML.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
