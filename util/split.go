package util

import "strings"

// Split splits s on sep and trims each field. An empty sep keeps s whole.
// When min is positive the result is padded with pad up to min fields; when
// max is positive it is cut to max fields.
func Split(s, sep string, min, max int, pad string) []string {
	var parts []string
	switch {
	case sep == "":
		parts = []string{s}
	case strings.Contains(s, sep):
		for _, p := range strings.Split(s, sep) {
			parts = append(parts, strings.TrimSpace(p))
		}
	default:
		parts = []string{strings.TrimSpace(s)}
	}
	for min > 0 && len(parts) < min {
		parts = append(parts, pad)
	}
	if max > 0 && len(parts) > max {
		parts = parts[:max]
	}
	return parts
}
