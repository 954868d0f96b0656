package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "unset uses default true", value: "", def: true, expected: true},
		{name: "unset uses default false", value: "", def: false, expected: false},
		{name: "true", value: "true", def: false, expected: true},
		{name: "TRUE", value: "TRUE", def: false, expected: true},
		{name: "1", value: "1", def: false, expected: true},
		{name: "yes", value: "yes", def: false, expected: true},
		{name: "on", value: "on", def: false, expected: true},
		{name: "false", value: "false", def: true, expected: false},
		{name: "0", value: "0", def: true, expected: false},
		{name: "no", value: "no", def: true, expected: false},
		{name: "off", value: "off", def: true, expected: false},
		{name: "whitespace trimmed", value: " true ", def: false, expected: true},
		{name: "garbage uses default", value: "maybe", def: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const key = "COURSEPILOT_TEST_BOOL"
			if tt.value != "" {
				t.Setenv(key, tt.value)
			}
			if got := ParseBoolEnv(key, tt.def); got != tt.expected {
				t.Errorf("ParseBoolEnv(%q=%q, %v) = %v, want %v", key, tt.value, tt.def, got, tt.expected)
			}
		})
	}
}
