// Package validation provides form validation for the application.
package validation

import (
	"errors"
	"regexp"
	"unicode"
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+_-]+$`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?~]`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < 12 {
		return errors.New("password must be at least 12 characters long")
	}
	if n > 128 {
		return errors.New("password must not exceed 128 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	switch {
	case !hasUpper:
		return errors.New("password must contain at least one uppercase letter")
	case !hasLower:
		return errors.New("password must contain at least one lowercase letter")
	case !hasDigit:
		return errors.New("password must contain at least one digit")
	case !specialPattern.MatchString(password):
		return errors.New("password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// ValidateUsername accepts up to 150 letters, digits and @ . + - _ characters.
// Usernames appear in profile URLs.
func ValidateUsername(username string) error {
	n := len([]rune(username))
	if n == 0 {
		return errors.New("username is required")
	}
	if n > 150 {
		return errors.New("username must not exceed 150 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username can only contain letters, digits and @/./+/-/_ characters")
	}
	return nil
}
