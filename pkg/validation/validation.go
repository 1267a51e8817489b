package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

const maxSongField = 255

// ValidateUsername validates username format
func ValidateUsername(username string) bool {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return false
	}
	return usernameRegex.MatchString(username)
}

// ValidateSongField accepts a non-blank title or artist that fits the column.
func ValidateSongField(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && utf8.RuneCountInString(s) <= maxSongField
}

// ValidateSongID checks a slug-shaped song key: lowercase, no whitespace,
// hyphen separated.
func ValidateSongID(id string) bool {
	if id == "" || len(id) > maxSongField {
		return false
	}
	return !strings.ContainsAny(id, " \t\n") && strings.ToLower(id) == id && !strings.HasPrefix(id, "-")
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	// Basic sanitization
	input = strings.TrimSpace(input)
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
