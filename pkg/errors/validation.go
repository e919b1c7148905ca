package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// Package names become directory names inside the packages directory, so
// anything that could escape it is rejected:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	return nil
}

// ValidateGitURL validates a package source URL.
//
// Accepted forms:
//   - scheme URLs with http, https, ssh, git or file schemes
//   - scp-like SSH addresses (git@host:owner/repo.git)
//
// An optional "#revision" suffix is allowed and not inspected.
func ValidateGitURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	for _, r := range raw {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidURL, "URL contains whitespace or control characters")
		}
	}

	if !strings.Contains(raw, "://") {
		// scp-like syntax: user@host:path
		at := strings.Index(raw, "@")
		colon := strings.Index(raw, ":")
		if at > 0 && colon > at+1 && colon < len(raw)-1 {
			return nil
		}
		return New(ErrCodeInvalidURL, "unsupported URL: %q", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "malformed URL")
	}

	switch u.Scheme {
	case "http", "https", "ssh", "git":
		if u.Host == "" {
			return New(ErrCodeInvalidURL, "URL has no host: %q", raw)
		}
	case "file":
		if u.Path == "" {
			return New(ErrCodeInvalidURL, "file URL has no path: %q", raw)
		}
	default:
		return New(ErrCodeInvalidURL, "URL must use http, https, ssh, git or file scheme")
	}

	return nil
}
