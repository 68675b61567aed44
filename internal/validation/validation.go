// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
	MinPasswordLength = 3
	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

// ValidateUsername checks the length bounds of a username.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	if n == 0 {
		return fmt.Errorf("username is required")
	}
	if n < MinUsernameLength {
		return fmt.Errorf("username length must be at least %d characters", MinUsernameLength)
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidatePassword checks the length bounds of a raw password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password length must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateTitle requires a non-blank blog title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// ValidateComment requires a non-blank comment.
func ValidateComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return fmt.Errorf("comment must not be empty")
	}
	return nil
}
