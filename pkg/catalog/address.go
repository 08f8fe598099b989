package catalog

import "strings"

const (
	// DefaultAddress is used when no address is configured.
	DefaultAddress = "localhost:8500"
	// DefaultScheme is prepended to addresses that carry none.
	DefaultScheme = "http"
)

// NormalizeAddress returns the canonical base address: no leading or
// trailing slash and an explicit scheme. Empty input yields DefaultAddress.
func NormalizeAddress(raw string) string {
	addr := RemoveLeadingTrailingSlash(strings.TrimSpace(raw))
	if addr == "" {
		addr = DefaultAddress
	}
	return EnsureScheme(addr)
}

// RemoveLeadingTrailingSlash strips every leading and trailing "/".
func RemoveLeadingTrailingSlash(s string) string {
	return strings.Trim(s, "/")
}

// EnsureScheme prefixes DefaultScheme when s has no "scheme://" prefix.
func EnsureScheme(s string) string {
	if hasScheme(s) {
		return s
	}
	return DefaultScheme + "://" + s
}

func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for _, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9', r == '+', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
