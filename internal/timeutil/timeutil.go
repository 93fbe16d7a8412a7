// Package timeutil holds small duration helpers for profile fields.
package timeutil

import (
	"strings"
	"time"
)

// ParseDurationOrDefault parses value as a duration, tolerating surrounding
// whitespace. Blank or malformed values yield fallback.
func ParseDurationOrDefault(value string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
