// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"aurachat/internal/models"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MaxEmailLength    = 120
	MaxContentLength  = 5000
)

var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePassword enforces the length bounds. bcrypt ignores bytes past 72,
// so the upper bound only rejects absurd input.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateUsername allows letters, digits and underscores, 3 to 20 characters.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func ValidateTheme(theme string) error {
	switch theme {
	case models.ThemeLight, models.ThemeDark:
		return nil
	}
	return fmt.Errorf("theme must be one of: %s, %s", models.ThemeLight, models.ThemeDark)
}

func ValidateVisibility(visibility string) error {
	switch visibility {
	case models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate:
		return nil
	}
	return fmt.Errorf("profile_visibility must be one of: %s, %s, %s",
		models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate)
}

// ValidateContent requires non-blank text of at most MaxContentLength runes.
func ValidateContent(field, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return fmt.Errorf("%s must not exceed %d characters", field, MaxContentLength)
	}
	return nil
}

// ValidateMaxLength rejects values longer than max runes.
func ValidateMaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must not exceed %d characters", field, max)
	}
	return nil
}

// ValidateWebsite accepts an empty value or an absolute http(s) URL.
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}
	u, err := url.Parse(website)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("website must be an http or https URL")
	}
	return ValidateMaxLength("website", website, 255)
}

// Required returns "<field> is required" for the first blank field, in order.
// Pairs are field name then value.
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%s is required", pairs[i])
		}
	}
	return nil
}
