// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for untrusted
// identifiers.
//
// Question plans are generated by a model, so variable names arriving
// from a plan are untrusted input: they end up as map keys in user
// profiles and as attributes in logs and events. Validating them here
// keeps malformed or adversarial strings out of stored profiles.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// variablePattern matches valid preference variable names.
// Allows: lowercase letters, digits, underscores; must start with a letter.
// Max length: 40 characters.
var variablePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,39}$`)

// ValidateVariable validates a preference variable name.
//
// Valid names:
//   - 1-40 characters
//   - Lowercase letters a-z
//   - Digits 0-9
//   - Underscores (_) as separators, e.g. "min_salary"
//   - Must start with a letter
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateVariable(name); err != nil {
//	    return nil, fmt.Errorf("invalid variable: %w", err)
//	}
//	// Safe to use as a profile key
func ValidateVariable(name string) error {
	if name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}

	if !variablePattern.MatchString(name) {
		return fmt.Errorf("invalid variable name: %q (must be 1-40 lowercase alphanumeric chars or underscores, starting with a letter)", name)
	}

	return nil
}

// ValidateVariables validates multiple variable names.
// Returns an error listing all invalid names if any fail validation.
func ValidateVariables(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateVariable(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid variable names: %v", invalid)
	}
	return nil
}

// SanitizeVariable normalizes and validates a variable name.
// Returns the lowercase name if valid, or an error if invalid.
//
// Use this when the name comes straight from model output:
//
//	name, err := validation.SanitizeVariable(planField)
//	if err != nil {
//	    continue // skip this plan entry
//	}
func SanitizeVariable(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if err := ValidateVariable(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
