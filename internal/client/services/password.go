package services

import (
	"strings"
	"unicode/utf8"
)

// PasswordSpecialChars is the set a password must draw at least one
// character from.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordMinLength is the shortest accepted password, in characters.
const PasswordMinLength = 8

// Password policy violations, in the order ValidatePassword reports them.
const (
	PwTooShort  = "password must be at least 8 characters long"
	PwNoUpper   = "password must contain at least one uppercase letter"
	PwNoLower   = "password must contain at least one lowercase letter"
	PwNoDigit   = "password must contain at least one number"
	PwNoSpecial = `password must contain at least one special character (!@#$%^&*(),.?":{}|<>)`
)

// ValidatePassword checks pw against the password policy and returns every
// rule it violates. An empty result means the password is acceptable. The
// server remains authoritative; this only saves a round trip.
func ValidatePassword(pw string) []string {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		}
	}

	var problems []string
	if utf8.RuneCountInString(pw) < PasswordMinLength {
		problems = append(problems, PwTooShort)
	}
	if !upper {
		problems = append(problems, PwNoUpper)
	}
	if !lower {
		problems = append(problems, PwNoLower)
	}
	if !digit {
		problems = append(problems, PwNoDigit)
	}
	if !special {
		problems = append(problems, PwNoSpecial)
	}
	return problems
}

func checkPassword(field, pw string) error {
	if problems := ValidatePassword(pw); len(problems) > 0 {
		return invalid(field, problems...)
	}
	return nil
}
