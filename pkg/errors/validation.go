package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// documentIDRegex matches document IDs accepted by the stores and the API.
var documentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentID validates a document ID. IDs end up in file names,
// SQL parameters and URL paths, so only a conservative character set is
// accepted:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-', starting with a letter or digit
//   - No ".." sequences
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "document id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "document id too long (max 128 characters)")
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "document id cannot contain %q", "..")
	}
	if !documentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid document id: %q", id)
	}
	return nil
}

// ValidateCellID validates a cell ID read from a document or change log.
// Cell IDs are free-form but must be non-empty printable text.
func ValidateCellID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "cell id cannot be empty")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "cell id %q contains control characters", id)
		}
	}
	return nil
}

// ValidatePath validates a relative path below a store or cache root.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateURI validates a backend connection string against the schemes
// the backend accepts, e.g. "mongodb://" and "mongodb+srv://".
func ValidateURI(uri string, schemes ...string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "URI cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(uri, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URI must use one of the schemes %s", strings.Join(schemes, ", "))
}
