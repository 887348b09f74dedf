package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath validates a file path the CLI or HTTP host is about to
// write an artifact to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) once cleaned, for relative paths
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) && (clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))) {
		return New(ErrCodeInvalidPath, "path traversal detected in output path: %s", path)
	}

	return nil
}

// ValidateDPI checks that an export resolution is a positive integer within a
// sane upper bound.
func ValidateDPI(dpi int) error {
	const maxDPI = 2400
	if dpi <= 0 {
		return New(ErrCodeInvalidInput, "dpi must be positive, got %d", dpi)
	}
	if dpi > maxDPI {
		return New(ErrCodeInvalidInput, "dpi too large (max %d), got %d", maxDPI, dpi)
	}
	return nil
}
