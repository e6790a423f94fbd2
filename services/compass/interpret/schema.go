// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package interpret converts free-text user answers into typed values
// bounded to a variable schema. Tier 1 is a deterministic extractor
// (numeric patterns, unit conversion, qualitative lexicon) that never
// calls a model; Tier 2 is a ReAct tool-use fallback for answers that
// need reasoning, such as salary-by-role estimation.
package interpret

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var schemasYAML []byte

// Schema defines the bounds and type of one conversation variable.
type Schema struct {
	Key         string  `yaml:"key" json:"key" validate:"required"`
	Type        string  `yaml:"type" json:"type" validate:"required,oneof=number string boolean"`
	Min         float64 `yaml:"min" json:"min"`
	Max         float64 `yaml:"max" json:"max" validate:"gtefield=Min"`
	Description string  `yaml:"description" json:"description"`
}

// Clamp bounds a value to [Min, Max].
func (s Schema) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Span returns the width of the schema's range.
func (s Schema) Span() float64 { return s.Max - s.Min }

type schemaFile struct {
	Schemas []Schema `yaml:"schemas" validate:"required,min=1,dive"`
}

// LoadSchemas parses and validates a schema document.
func LoadSchemas(raw []byte) (map[string]Schema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing schema config: %w", err)
	}
	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid schema config: %w", err)
	}
	out := make(map[string]Schema, len(file.Schemas))
	for _, s := range file.Schemas {
		if _, dup := out[s.Key]; dup {
			return nil, fmt.Errorf("duplicate schema key %q", s.Key)
		}
		out[s.Key] = s
	}
	return out, nil
}

// StandardSchemas returns the built-in variable schemas. The embedded
// config is validated at init; a broken build is caught immediately.
func StandardSchemas() map[string]Schema {
	return standardSchemas
}

// SchemaFor returns the schema for a variable, falling back to a 1-5
// numeric scale for unknown variables.
func SchemaFor(variable string) Schema {
	if s, ok := standardSchemas[variable]; ok {
		return s
	}
	return Schema{Key: variable, Type: "number", Min: 1, Max: 5, Description: variable}
}

var standardSchemas map[string]Schema

func init() {
	var err error
	standardSchemas, err = LoadSchemas(schemasYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded schema config is invalid: %v", err))
	}
}
