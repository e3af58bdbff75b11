package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength = 2
	MaxNameLength = 50

	MinPasswordLength      = 6
	MinResetPasswordLength = 8
)

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[cC][oO][mM]$`)
	lowerRegex  = regexp.MustCompile(`[a-z]`)
	upperRegex  = regexp.MustCompile(`[A-Z]`)
	letterRegex = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex  = regexp.MustCompile(`\d`)
	symbolRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateEmail accepts only addresses ending in .com, as registration always has.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// ValidatePassword is the registration rule: at least 6 characters with an
// uppercase letter, a lowercase letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength ||
		!lowerRegex.MatchString(password) ||
		!upperRegex.MatchString(password) ||
		!digitRegex.MatchString(password) {
		return &ValidationError{
			Field:   "password",
			Message: "Password must be at least 6 characters long and contain at least one uppercase letter, one lowercase letter, and one number",
		}
	}
	return nil
}

// ValidateStrongPassword is the stricter rule for password changes and resets.
func ValidateStrongPassword(password string) error {
	if len(password) < MinResetPasswordLength ||
		!letterRegex.MatchString(password) ||
		!digitRegex.MatchString(password) ||
		!symbolRegex.MatchString(password) {
		return &ValidationError{
			Field:   "password",
			Message: "Password must be at least 8 characters long and include a mix of letters, numbers, and symbols.",
		}
	}
	return nil
}

// ValidateName trims the name and checks its length; it returns the trimmed value.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinNameLength || n > MaxNameLength {
		return name, &ValidationError{Field: "name", Message: "Name must be between 2 and 50 characters long"}
	}
	return name, nil
}
