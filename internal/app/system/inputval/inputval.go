// Package inputval enforces the input contract for free-text fields
// crossing the API boundary: strip HTML, trim, truncate to a
// field-specific maximum, and reject anything left empty. Email
// addresses get their own validator and length cap.
package inputval

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
)

// Field-specific maximum lengths, applied after sanitizing.
const (
	MaxNameLen    = 100
	MaxTokenLen   = 150
	MaxDefaultLen = 200

	// MaxEmailLen is the RFC 5321 path limit.
	MaxEmailLen = 254
)

// strict strips every tag and attribute; only text content survives.
var strict = bluemonday.StrictPolicy()

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Sanitize strips HTML tags and stray angle brackets, trims whitespace,
// and truncates to max runes. The result may be empty; use Require when
// the field is mandatory.
func Sanitize(s string, max int) string {
	if max <= 0 {
		max = MaxDefaultLen
	}
	s = strict.Sanitize(s)
	// bluemonday escapes loose brackets rather than removing them.
	s = strings.ReplaceAll(s, "&lt;", "")
	s = strings.ReplaceAll(s, "&gt;", "")
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > max {
		s = strings.TrimSpace(string(r[:max]))
	}
	return s
}

// Require sanitizes s and fails with InvalidArgument when nothing
// usable remains. field names the offending input in the error message.
func Require(field, s string, max int) (string, error) {
	out := Sanitize(s, max)
	if out == "" {
		return "", apperr.Newf(apperr.InvalidArgument, "%s is required", field)
	}
	return out, nil
}

// IsValidEmail reports whether s looks like a deliverable address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxEmailLen {
		return false
	}
	return emailRe.MatchString(s)
}

// Email validates and returns the trimmed address (caller normalizes
// case via the normalize package before storage).
func Email(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !IsValidEmail(s) {
		return "", apperr.New(apperr.InvalidArgument, "invalid email address")
	}
	return s, nil
}
