// Package strings provides small string and slice helpers
package strings

import (
	std "strings"

	"golang.org/x/text/cases"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustPrefix normalizes and asserts a root path like /circles
// ensures a single leading slash and no trailing slash
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Fold returns the trimmed, case-folded form of s for case-insensitive identity
// Folding is locale independent so hex identifiers compare equal in any case
func Fold(s string) string {
	return cases.Fold().String(std.TrimSpace(s))
}

// FirstNonEmpty returns the first argument with non whitespace content
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if std.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
