// Package validate provides centralized input validation and sanitization
// for the Turnpage API. User-generated text is length-checked and
// HTML-escaped before it reaches the content store.
package validate

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if
// validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}

	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// SanitizeHTML escapes HTML special characters to prevent XSS.
// Called on all user-generated text that will be rendered in HTML.
func SanitizeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeString performs both validation and HTML sanitization.
func SanitizeString(s string, constraints StringConstraints) (string, error) {
	validated, err := String(s, constraints)
	if err != nil {
		return "", err
	}
	return SanitizeHTML(validated), nil
}

// ReviewBody validates the text of a book review:
// - Required (not empty)
// - Max 5000 characters
func ReviewBody(body string) (string, error) {
	return SanitizeString(body, StringConstraints{
		MinLength:  1,
		MaxLength:  5000,
		AllowEmpty: false,
		TrimSpace:  true,
	})
}

// ReviewerName validates a display name on a review or reply:
// - Optional (defaults elsewhere when empty)
// - Max 80 characters, letters, numbers, spaces, and common punctuation
func ReviewerName(name string) (string, error) {
	pattern := regexp.MustCompile(`^[\p{L}\p{N} _\-\.']+$`)
	return SanitizeString(name, StringConstraints{
		MaxLength:      80,
		AllowedPattern: pattern,
		AllowEmpty:     true,
		TrimSpace:      true,
	})
}

// ReplyContent validates the text of a threaded reply:
// - Required (not empty)
// - Max 2000 characters
func ReplyContent(content string) (string, error) {
	return SanitizeString(content, StringConstraints{
		MinLength:  1,
		MaxLength:  2000,
		AllowEmpty: false,
		TrimSpace:  true,
	})
}

// SearchQuery validates a free-text search query:
// - Required (not empty)
// - Max 300 characters
func SearchQuery(query string) (string, error) {
	return String(query, StringConstraints{
		MinLength:  1,
		MaxLength:  300,
		AllowEmpty: false,
		TrimSpace:  true,
	})
}

// SuggestionField validates a field on a book suggestion (title, author):
// - Required (not empty)
// - Max 200 characters
func SuggestionField(s string) (string, error) {
	return SanitizeString(s, StringConstraints{
		MinLength:  1,
		MaxLength:  200,
		AllowEmpty: false,
		TrimSpace:  true,
	})
}

// SuggestionReason validates the optional reason on a book suggestion:
// - Optional
// - Max 2000 characters
func SuggestionReason(s string) (string, error) {
	return SanitizeString(s, StringConstraints{
		MaxLength:  2000,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

// ChatMessage validates a message sent to the club assistant:
// - Required (not empty)
// - Max 1000 characters
func ChatMessage(s string) (string, error) {
	return String(s, StringConstraints{
		MinLength:  1,
		MaxLength:  1000,
		AllowEmpty: false,
		TrimSpace:  true,
	})
}
