package errors

import (
	"strings"
	"unicode"
)

const (
	maxShapeIDLength = 256
	maxPageIDLength  = 128
)

// ValidateShapeID validates a shape identifier before it enters a tree.
//
// The rules are intentionally small:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateShapeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "shape id cannot be empty")
	}
	if len(id) > maxShapeIDLength {
		return New(ErrCodeInvalidInput, "shape id too long (max %d characters)", maxShapeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "shape id contains invalid control characters")
		}
	}
	return nil
}

// ValidatePageID validates a page identifier for use as a storage key.
// Page ids become file names and key suffixes in the store backends, so
// path traversal sequences and separators are rejected.
func ValidatePageID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "page id cannot be empty")
	}
	if len(id) > maxPageIDLength {
		return New(ErrCodeInvalidInput, "page id too long (max %d characters)", maxPageIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "page id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "page id contains invalid characters: %q", pattern)
		}
	}
	if strings.HasPrefix(id, ".") {
		return New(ErrCodeInvalidInput, "page id cannot start with a dot")
	}
	return nil
}
