package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits on operator supplied message fields.
const (
	MaxHeaderLength      = 200
	MaxDescriptionLength = 2000
	MaxReferenceLength   = 100
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	// Route and stop references shown next to a message.
	referencePattern = regexp.MustCompile(`^[\p{L}0-9 _.,/'-]*$`)
)

// SanitizeInput removes HTML tags and surrounding whitespace.
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
}

// ValidateText checks that s is valid UTF-8 and at most max runes long.
func ValidateText(field, s string, max int) error {
	if !utf8.ValidString(s) {
		return errors.New(field + " is not valid UTF-8")
	}
	if utf8.RuneCountInString(s) > max {
		return errors.New(field + " too long")
	}
	return nil
}

// ValidateReference validates the routes and stop labels attached to a
// message, e.g. "171, 180" or "Gare Bois-de-Boulogne".
func ValidateReference(field, s string) error {
	if err := ValidateText(field, s, MaxReferenceLength); err != nil {
		return err
	}
	if !referencePattern.MatchString(s) {
		return errors.New(field + " contains invalid characters")
	}
	return nil
}
