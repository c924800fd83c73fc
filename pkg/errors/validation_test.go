package errors

import (
	"strings"
	"testing"
)

func TestValidateDocumentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "counter", false},
		{"valid with dash", "door-opener", false},
		{"valid with space", "My Script", false},
		{"valid with dot", "v1.2", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 200), true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"traversal", "a..b", true},
		{"hidden", ".secret", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateDocumentName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "scripts/counter.flux.json", false},
		{"absolute", "/tmp/counter.flux.json", false},
		{"empty", "", true},
		{"null byte", "foo\x00bar", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
