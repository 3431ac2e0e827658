package utils

import (
	"net/url"
	"strings"
)

// EncodeMediaPath percent-encodes each path segment individually so
// spaces and non-ASCII catalog paths survive as URLs while the path
// structure is preserved. Absolute and data URLs pass through untouched.
func EncodeMediaPath(path string) string {
	if path == "" || strings.HasPrefix(path, "http") || strings.HasPrefix(path, "data:") {
		return path
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
