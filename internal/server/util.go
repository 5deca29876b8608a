package server

import "strings"

// sanitizeBase normalizes a base path: leading '/', no trailing '/'.
func sanitizeBase(base string) string {
	b := strings.TrimSpace(base)
	if b == "" {
		return ""
	}
	if !strings.HasPrefix(b, "/") {
		b = "/" + b
	}
	for strings.HasSuffix(b, "/") {
		b = strings.TrimSuffix(b, "/")
	}
	return b
}

// isSafeName accepts task names of [A-Za-z0-9._-] without traversal.
func isSafeName(name string) bool {
	if name == "" || len(name) > 128 {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
