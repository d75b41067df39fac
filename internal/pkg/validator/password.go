package validator

import (
	"unicode"
	"unicode/utf8"
)

const (
	// PasswordMinLength is the minimum number of characters.
	PasswordMinLength = 8
	// PasswordMaxBytes is the bcrypt input limit.
	PasswordMaxBytes = 72
)

// Requirement is one rule of the password policy.
type Requirement struct {
	Key  string
	Text string
}

// PasswordPolicy lists every rule in the order it is reported.
var PasswordPolicy = []Requirement{
	{Key: "length", Text: "8 characters"},
	{Key: "uppercase", Text: "1 uppercase letter"},
	{Key: "lowercase", Text: "1 lowercase letter"},
	{Key: "number", Text: "1 number"},
	{Key: "special", Text: "1 special character"},
}

// PasswordLimit is reported after the policy rules when a password exceeds
// PasswordMaxBytes.
var PasswordLimit = Requirement{Key: "maxLength", Text: "at most 72 bytes"}

// UnmetRequirements returns the rules s violates, in policy order, followed
// by PasswordLimit when s is too long.
func UnmetRequirements(s string) []Requirement {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsSpace(r) && !unicode.IsLetter(r):
			special = true
		}
	}

	length := utf8.RuneCountInString(s) >= PasswordMinLength

	var unmet []Requirement
	for i, ok := range []bool{length, upper, lower, digit, special} {
		if !ok {
			unmet = append(unmet, PasswordPolicy[i])
		}
	}
	if len(s) > PasswordMaxBytes {
		unmet = append(unmet, PasswordLimit)
	}
	return unmet
}

// IsComplexPassword reports whether s satisfies the whole policy.
func IsComplexPassword(s string) bool {
	return len(UnmetRequirements(s)) == 0
}
