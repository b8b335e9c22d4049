package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateNodeID validates a scene node identifier for safety and
// correctness. Importers vet every ID at the input boundary: IDs end up
// in SVG text, continuation references and error output, so the rules
// are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node ID too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node ID contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "node ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateSheetName validates a generated sheet name. Sheet names become
// output file basenames, so they must be simple names without path
// components.
func ValidateSheetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "sheet name cannot be empty")
	}
	if filepath.Base(name) != name {
		return New(ErrCodeInvalidPath, "sheet name must not contain path components: %q", name)
	}
	if strings.ContainsAny(name, "\x00") {
		return New(ErrCodeInvalidPath, "sheet name contains null byte")
	}
	return nil
}

// ValidateOutputDir validates an output directory path. Relative and
// absolute paths are both allowed; empty paths and null bytes are not.
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}
	if strings.ContainsAny(dir, "\x00") {
		return New(ErrCodeInvalidPath, "output directory contains null byte")
	}
	return nil
}
