package util

import (
	"strings"
)

// IsValidEmail applies the contact form's deliberately loose check: at least
// five characters after trimming and exactly one '@' that is neither first nor
// last.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) < 5 {
		return false
	}
	if strings.Count(email, "@") != 1 {
		return false
	}
	return !strings.HasPrefix(email, "@") && !strings.HasSuffix(email, "@")
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
