package util

import (
	"regexp"
	"strings"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 72 // bcrypt input limit
	UsernameMinLength = 3
	UsernameMaxLength = 32
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,18}$`)
)

func ValidUsername(username string) bool {
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength {
		return false
	}
	return usernamePattern.MatchString(username)
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidPassword(password string) bool {
	return len(password) >= PasswordMinLength && len(password) <= PasswordMaxLength
}

// ValidPhone accepts an empty phone; the field is optional.
func ValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phone)
}

func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
