package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateRefName validates a branch or tag name given on the command line.
// It follows the parts of git check-ref-format that matter for matching:
//   - No empty names
//   - No control characters or spaces
//   - No "..", "@{", "//" or a trailing "/" or ".lock"
//   - None of ~ ^ : ? * [ \
//
// A leading "tag: " is accepted for tags.
func ValidateRefName(name string) error {
	name = strings.TrimPrefix(name, "tag: ")
	if name == "" {
		return New(ErrCodeInvalidRef, "ref name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidRef, "ref name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || r == ' ' {
			return New(ErrCodeInvalidRef, "ref name %q contains invalid characters", name)
		}
	}

	for _, pattern := range []string{"..", "@{", "//"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidRef, "ref name %q contains %q", name, pattern)
		}
	}
	if strings.ContainsAny(name, "~^:?*[\\") {
		return New(ErrCodeInvalidRef, "ref name %q contains invalid characters", name)
	}
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".lock") || strings.HasPrefix(name, "-") {
		return New(ErrCodeInvalidRef, "ref name %q is not a valid ref", name)
	}

	return nil
}

// ValidateOutputPath validates the path of a file gitdot writes.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (no trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "path %q names a directory", path)
	}

	return nil
}

// variableNameRegex matches variable names such as @CHID@ or $ISSUE.
var variableNameRegex = regexp.MustCompile(`^[^\s|%]+$`)

// ValidateVariableName validates the name of a -D variable. Names are
// substituted literally into label fields, so they must not contain the field
// separator, a format placeholder or whitespace.
func ValidateVariableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "variable name cannot be empty")
	}
	if !variableNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid variable name: %q", name)
	}
	return nil
}
