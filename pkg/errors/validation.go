package errors

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxTextLength bounds a single relief text line.
const maxTextLength = 64

// ValidateText validates a line of relief text.
//
// Validation rules:
//   - No empty or whitespace-only lines
//   - Valid UTF-8
//   - No control characters (including newlines: one line per entry)
//   - Maximum length of 64 runes
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidFeature, "text line cannot be empty")
	}
	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidFeature, "text line is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(text); n > maxTextLength {
		return New(ErrCodeInvalidFeature, "text line too long (%d runes, max %d)", n, maxTextLength)
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFeature, "text line contains control characters")
		}
	}
	return nil
}

// ValidateOutputPath validates a path an artifact will be written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must name a file, not a directory
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must name a file: %q", path)
	}
	base := filepath.Base(path)
	if base == "." || base == ".." {
		return New(ErrCodeInvalidPath, "output path must name a file: %q", path)
	}

	return nil
}
