package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	travelerNameRegex = regexp.MustCompile(`^\p{L}[\p{L} .'\-]*$`)
	idProofRegex      = regexp.MustCompile(`^[A-Za-z0-9\- ]{4,32}$`)
	htmlTagRegex      = regexp.MustCompile(`<[^>]*>`)
	scriptRegex       = regexp.MustCompile(`(?i)(<script|javascript:|vbscript:|on\w+\s*=)`)
)

// MaxSpecialRequestsLength bounds the free text a traveler can attach to a booking
const MaxSpecialRequestsLength = 1000

// SanitizeString strips HTML tags and escapes what is left
func SanitizeString(input string) string {
	return strings.TrimSpace(html.EscapeString(htmlTagRegex.ReplaceAllString(input, "")))
}

// ValidateTravelerName checks a traveler's full name
func ValidateTravelerName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "name is required"
	}
	if len(name) < 2 {
		return false, "name must be at least 2 characters long"
	}
	if len(name) > 100 {
		return false, "name must not exceed 100 characters"
	}
	if !travelerNameRegex.MatchString(name) {
		return false, "name can only contain letters, spaces, dots, apostrophes and hyphens"
	}
	return true, ""
}

// ValidateIDProof checks an optional identity document number
func ValidateIDProof(idProof string) (bool, string) {
	if idProof == "" {
		return true, ""
	}
	if !idProofRegex.MatchString(idProof) {
		return false, "ID proof must be 4 to 32 letters, digits or hyphens"
	}
	return true, ""
}

// ValidateEmail checks an optional contact email
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return true, ""
	}
	if !emailRegex.MatchString(email) {
		return false, "Invalid email format. Please enter a valid email address"
	}
	return true, ""
}

// ValidateFreeText rejects script content and overlong input
func ValidateFreeText(field, text string, max int) error {
	if scriptRegex.MatchString(text) {
		return fmt.Errorf("%s contains disallowed content", field)
	}
	if len(text) > max {
		return fmt.Errorf("%s must not exceed %d characters", field, max)
	}
	return nil
}
