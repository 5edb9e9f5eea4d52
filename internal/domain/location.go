package domain

import "strings"

// MatchesLocation reports whether a free-text disruption title concerns the
// given location. The title matches when it contains the town name
// (case-insensitively), the full postal code, its 4-digit prefix, or the
// spaced "1234 AB" variant. Prefix-only matching is deliberately permissive:
// it trades precision for recall within a narrow service area, and two towns
// sharing a postal prefix can cross-match. Tighten only with product input.
func MatchesLocation(title string, loc Location) bool {
	postalCode := loc.PostalCode
	prefix := postalCode
	spaced := postalCode
	if len(postalCode) > 4 {
		prefix = postalCode[:4]
		spaced = prefix + " " + postalCode[4:]
	}

	if strings.Contains(strings.ToLower(title), strings.ToLower(loc.Town)) {
		return true
	}
	return strings.Contains(title, postalCode) ||
		strings.Contains(title, prefix) ||
		strings.Contains(title, spaced)
}
