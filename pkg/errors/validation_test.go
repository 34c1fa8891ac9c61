package errors

import (
	"testing"
)

func TestValidateIdentityPart(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "my-plugin", false},
		{"valid group", "org.gephi", false},
		{"valid version", "1.0.0-SNAPSHOT", false},
		{"valid underscore", "my_plugin", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentityPart("name", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentityPart(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateIdentityPart(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"png", "screenshot.png", false},
		{"dashes", "main-window.jpg", false},

		{"empty", "", true},
		{"space", "main window.png", true},
		{"tab", "main\twindow.png", true},
		{"path", "img/main.png", true},
		{"backslash", "img\\main.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
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
		{"simple", "0.9/plugin-1.0.0.nbm", false},
		{"nested", "imgs/plugin/shot.png", false},
		{"dotted name", "0.9/plugin.v2-1.0.nbm", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"inner traversal", "0.9/../../secret", true},
		{"backslash", "imgs\\shot.png", true},
		{"null", "a\x00b", true},
		{"too long", string(make([]byte, 600)), true},
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

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://plugins.example.org/", false},
		{"http://localhost:8080/", false},
		{"", true},
		{"ftp://example.org/", true},
		{"example.org", true},
		{"https://", true},
		{"https://plugins.example.org/%zz", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidatePluginID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"graph-streaming", false},
		{"Leiden.Algorithm_2", false},
		{"", true},
		{"-leading", true},
		{"with space", true},
		{"a/b", true},
	}

	for _, tt := range tests {
		err := ValidatePluginID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePluginID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
