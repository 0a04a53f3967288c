// Package normalize holds the single source of truth for how loosely
// formatted user input is canonicalized before it touches the database.
// Every store normalizes on write so queries can compare exact values.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are stored and
// compared in this form everywhere; redemption matching relies on it.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string. It does not validate; the
// stores reject anything outside member|moderator|admin.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status string.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-text query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
