package util

import "strings"

// DefaultString returns fallback if v is empty or whitespace-only; otherwise v
// unchanged.
//
//	DefaultString("hello", "world") → "hello"
//	DefaultString("  ", "world")    → "world"
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash returns "-" for blank values. Used for optional columns in the
// doctor report.
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}
