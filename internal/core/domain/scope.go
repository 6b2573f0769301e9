package domain

import "strings"

const (
	ScopeItemsRead  = "items:read"
	ScopeItemsWrite = "items:write"
	ScopeUsersAdmin = "users:admin"
)

// HasScopes reports whether every scope in required is present in granted.
// An empty requirement is always satisfied.
func HasScopes(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		set[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

// IntersectScopes returns the scopes of requested that are also in allowed,
// preserving the order of requested and dropping duplicates.
func IntersectScopes(requested, allowed []string) []string {
	out := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, s := range requested {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if HasScopes(allowed, []string{s}) {
			out = append(out, s)
		}
	}
	return out
}

// ParseScopes splits an OAuth2 space-delimited scope string.
func ParseScopes(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
