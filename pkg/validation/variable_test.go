package validation

import (
	"testing"
)

func TestValidateVariable(t *testing.T) {
	tests := []struct {
		name     string
		variable string
		wantErr  bool
	}{
		// Valid names
		{"simple", "min_salary", false},
		{"single char", "x", false},
		{"with digit", "q1_weight", false},
		{"long but legal", "work_life_balance_weight", false},

		// Invalid names - injection attempts and noise
		{"empty", "", true},
		{"injection attempt", `salary"); drop--`, true},
		{"newline injection", "salary\nweight", true},
		{"uppercase", "MIN_SALARY", true},
		{"starts with digit", "1salary", true},
		{"starts with underscore", "_salary", true},
		{"spaces", "min salary", true},
		{"special chars", "salary@#$", true},
		{"unicode", "salaryâ„¢", true},
		{"too long", "a_very_long_variable_name_that_keeps_going_on", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVariable(tt.variable)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVariable(%q) error = %v, wantErr %v", tt.variable, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVariables(t *testing.T) {
	tests := []struct {
		name      string
		variables []string
		wantErr   bool
	}{
		{"all valid", []string{"min_salary", "risk_tolerance"}, false},
		{"one invalid", []string{"min_salary", "bad!"}, true},
		{"all invalid", []string{"BAD", "also bad"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVariables(tt.variables)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVariables(%v) error = %v, wantErr %v", tt.variables, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeVariable(t *testing.T) {
	tests := []struct {
		name     string
		variable string
		want     string
		wantErr  bool
	}{
		{"lowercase passthrough", "min_salary", "min_salary", false},
		{"uppercase normalized", "MIN_SALARY", "min_salary", false},
		{"mixed case", "Min_Salary", "min_salary", false},
		{"spaces become underscores", "remote work weight", "remote_work_weight", false},
		{"surrounding whitespace trimmed", "  min_salary  ", "min_salary", false},
		{"invalid rejected", "bad!", "", true},
		{"empty rejected", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeVariable(tt.variable)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeVariable(%q) error = %v, wantErr %v", tt.variable, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeVariable(%q) = %q, want %q", tt.variable, got, tt.want)
			}
		})
	}
}
