package errors

import (
	"strings"
	"unicode"
)

// maxDocumentNameLength bounds stored document names.
const maxDocumentNameLength = 128

// ValidateDocumentName validates a stored document name for safety.
// Names become file names and redis keys, so the rules are conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No leading dot (hidden files)
//   - Maximum length of 128 characters
func ValidateDocumentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}

	if len(name) > maxDocumentNameLength {
		return New(ErrCodeInvalidName, "document name too long (max %d characters)", maxDocumentNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "document name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidName, "document name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "document name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "document name cannot be a hidden file")
	}

	return nil
}

// ValidatePath validates a local document path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
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

	return nil
}
