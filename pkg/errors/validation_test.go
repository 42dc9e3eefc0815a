package errors

import (
	"testing"
)

func TestValidateRefName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "main", false},
		{"nested", "feature/login", false},
		{"remote", "origin/main", false},
		{"tag prefix", "tag: v1.0", false},
		{"dotted", "release-1.2.3", false},

		{"empty", "", true},
		{"only prefix", "tag: ", true},
		{"too long", string(make([]byte, 300)), true},
		{"double dot", "a..b", true},
		{"reflog", "main@{1}", true},
		{"double slash", "a//b", true},
		{"space", "my branch", true},
		{"tilde", "main~1", true},
		{"caret", "main^", true},
		{"colon", "a:b", true},
		{"glob", "rel*", true},
		{"trailing slash", "feature/", true},
		{"lock", "main.lock", true},
		{"dash", "-rf", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRefName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRefName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRef) {
				t.Errorf("ValidateRefName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRef)
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
		{"relative", "git.dot", false},
		{"nested", "out/git.dot", false},
		{"absolute", "/tmp/git.dot", false},

		{"empty", "", true},
		{"directory", "out/", true},
		{"null byte", "git\x00.dot", true},
		{"control char", "git\x01.dot", true},
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

func TestValidateVariableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"at signs", "@CHID@", false},
		{"dollar", "$ISSUE", false},

		{"empty", "", true},
		{"pipe", "@A|B@", true},
		{"placeholder", "%h", true},
		{"space", "A B", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVariableName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVariableName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
