// Package mapping collects attribute metadata from YAML mapping files into a
// schema.Registry ready for binding.
package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a mapping description
type File struct {
	// DefaultEnumStrategy applies to every enum in the file without a hint
	DefaultEnumStrategy string `yaml:"default_enum_strategy,omitempty"`

	// Enums declares enumerations by name, constants in declaration order
	Enums map[string][]string `yaml:"enums,omitempty"`

	Resources []ResourceMapping `yaml:"resources"`
}

// ResourceMapping describes one mapped resource
type ResourceMapping struct {
	Name       string             `yaml:"name"`
	Table      string             `yaml:"table,omitempty"`
	Attributes []AttributeMapping `yaml:"attributes"`
}

// AttributeMapping describes one attribute. Type uses the "base!" / "base?"
// nullability suffixes; enum attributes name their enumeration in Enum.
type AttributeMapping struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Enum      string `yaml:"enum,omitempty"`
	Strategy  string `yaml:"strategy,omitempty"`
	Converter string `yaml:"converter,omitempty"`
	StoreType string `yaml:"store_type,omitempty"`
	Length    *int   `yaml:"length,omitempty"`
	Precision *int   `yaml:"precision,omitempty"`
	Scale     *int   `yaml:"scale,omitempty"`
}

// LoadFile loads and parses a YAML mapping file from the given path
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	return &f, nil
}
