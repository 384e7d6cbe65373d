package errors

import (
	"strings"
	"unicode"
)

// ValidateModulePath validates a module path received from an untrusted
// caller (the HTTP API). The path is resolved against a served root, so it
// must be relative and must not climb out of that root.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateModulePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "module path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "module path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "module path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "module path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "module path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "module path cannot contain backslashes")
	}

	return nil
}

// ValidateMethodName validates a fully-qualified method name used to select a
// call-graph entry point.
func ValidateMethodName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "method name cannot be empty")
	}
	if len(name) > 1024 {
		return New(ErrCodeInvalidInput, "method name too long (max 1024 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "method name contains invalid control characters")
		}
	}
	return nil
}
