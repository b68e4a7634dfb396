package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/user-lifecycle/pkg/util"
)

const (
	maxNameLength  = 100
	maxEmailLength = 100
	minAge         = 0
	maxAge         = 150
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// UserData validates all three user fields in a fixed order so error
// messages are deterministic: name, then email, then age. Age is a pointer
// because a missing age must be reported after name and email problems.
func UserData(name, email string, age *int) error {
	if err := Name(name); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if age == nil {
		return util.NewValidationError("age is required", map[string]any{"field": "age"})
	}
	return Age(*age)
}

// Name checks that a name is non-blank and within length limits.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return util.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
	}
	// Rune count, not byte length: Cyrillic names must get the full limit.
	if utf8.RuneCountInString(name) > maxNameLength {
		return util.NewValidationError("name cannot exceed 100 characters", map[string]any{"field": "name"})
	}
	return nil
}

// Email checks syntax and length of an email address.
func Email(email string) error {
	if strings.TrimSpace(email) == "" {
		return util.NewValidationError("email cannot be empty", map[string]any{"field": "email"})
	}
	if !emailPattern.MatchString(email) {
		return util.NewValidationError("invalid email format", map[string]any{"field": "email"})
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return util.NewValidationError("email cannot exceed 100 characters", map[string]any{"field": "email"})
	}
	return nil
}

// Age checks that age is within the allowed range.
func Age(age int) error {
	if age < minAge || age > maxAge {
		return util.NewValidationError("age must be between 0 and 150", map[string]any{"field": "age"})
	}
	return nil
}
