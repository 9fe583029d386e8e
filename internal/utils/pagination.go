// Package utils holds small helpers shared by the HTTP layer, free of any
// domain logic.
package utils

import "strconv"

// AtoiDefault parses s as a decimal int, returning def when s is empty or
// not a number.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampLimit parses a list limit: def when s is missing, unparsable or
// below 1, and at most max.
func ClampLimit(s string, def, max int) int {
	n := AtoiDefault(s, def)
	if n < 1 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
