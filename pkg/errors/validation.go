package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeName validates a device/node name for safety and correctness.
// Node names end up in lab-topology documents and file names, so the rules
// are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTopology, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidTopology, "node name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTopology, "node name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidTopology, "node name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// interfaceNameRegex matches port, connector, and LAG interface names as they
// appear in vendor topologies (e.g. "1/1/c2/1", "eth3", "lag-10").
var interfaceNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// ValidateInterfaceName validates a port or LAG interface name.
// Slashes are legitimate in chassis port paths, so only traversal
// sequences and unexpected characters are rejected.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTopology, "interface name cannot be empty")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidTopology, "interface name cannot contain path traversal sequences (..)")
	}

	if !interfaceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidTopology, "invalid interface name: %q", name)
	}

	return nil
}

// ValidateProfileName validates a connection profile name.
// It ensures the name is a simple identifier without path components.
func ValidateProfileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "profile name cannot be empty")
	}

	// Must be a simple name, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "profile name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "profile name cannot be a hidden file")
	}

	return nil
}

// ValidatePath validates an output file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateServerURL validates a management platform base URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateServerURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidServer, "server URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidServer, "server URL must use http or https scheme")
	}

	return nil
}
