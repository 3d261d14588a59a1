package errors

import (
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"word", "Slant", false},
		{"digits", "3D", false},
		{"inner space", "Slant 3D", false},
		{"unicode", "Größe", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"newline", "Slant\n3D", true},
		{"tab", "a\tb", true},
		{"invalid utf8", "\xff\xfe", true},
		{"too long", strings.Repeat("x", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFeature) {
				t.Errorf("ValidateText(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidFeature)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative file", "tower.stl", false},
		{"nested", "out/tower.json", false},
		{"absolute", "/tmp/tower.svg", false},

		{"empty", "", true},
		{"directory", "out/", true},
		{"dot", ".", true},
		{"parent", "..", true},
		{"null byte", "tower\x00.stl", true},
		{"newline", "tower\n.stl", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
