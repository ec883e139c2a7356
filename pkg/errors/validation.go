package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxIDLength   = 128
	maxNameLength = 256
)

// idRegex matches identifiers that are safe to use as file names and
// storage keys.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateID validates a layout or widget identifier.
// File-backed stores use ids as file names, so the rules reject anything
// that could escape the storage directory:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Only letters, digits, '.', '_', ':' and '-', starting with a letter or digit
//   - No ".." sequences
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxIDLength)
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "id cannot contain path traversal sequences (..)")
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid id: %q", id)
	}
	return nil
}

// ValidateName validates a human-readable layout name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "layout name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "layout name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "layout name contains invalid control characters")
		}
	}
	return nil
}
