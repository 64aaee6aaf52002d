package secgate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxTextLength = 10000

var (
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
	jsSchemePattern     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
)

var weakPasswords = []string{
	"password", "123456", "password123", "admin", "qwerty",
	"letmein", "welcome", "monkey", "dragon", "master",
}

// ValidatePasswordStrength enforces the account password policy. It
// returns a human-readable reason on failure.
func ValidatePasswordStrength(password string) (bool, string) {
	if utf8.RuneCountInString(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}

	var hasUpper, hasLower, hasDigit, hasPunct bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			hasPunct = true
		}
	}
	switch {
	case !hasUpper:
		return false, "Password must contain at least one uppercase letter"
	case !hasLower:
		return false, "Password must contain at least one lowercase letter"
	case !hasDigit:
		return false, "Password must contain at least one number"
	case !hasPunct:
		return false, "Password must contain at least one special character"
	}

	lowered := strings.ToLower(password)
	for _, weak := range weakPasswords {
		if lowered == weak {
			return false, "Password is too common. Please choose a stronger password"
		}
	}
	return true, ""
}

// SanitizeText strips markup and script vectors from free-form user text,
// then truncates and trims it.
func SanitizeText(text string) string {
	if text == "" {
		return text
	}
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = jsSchemePattern.ReplaceAllString(text, "")
	text = eventHandlerPattern.ReplaceAllString(text, "")
	// The cap counts characters, not bytes: Devanagari and Urdu text runs
	// three bytes per rune and must never be cut mid-rune.
	if len(text) > maxTextLength {
		if runes := []rune(text); len(runes) > maxTextLength {
			text = string(runes[:maxTextLength])
		}
	}
	return strings.TrimSpace(text)
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var reservedUsernames = []string{
	"admin", "root", "api", "www", "mail", "ftp", "localhost",
	"test", "demo", "guest", "anonymous", "null", "undefined",
}

// ValidateUsername enforces the pen-name format rules.
func ValidateUsername(username string) (bool, string) {
	if len(username) < 3 {
		return false, "Username must be at least 3 characters long"
	}
	if len(username) > 30 {
		return false, "Username must be less than 30 characters"
	}
	if !usernamePattern.MatchString(username) {
		return false, "Username can only contain letters, numbers, and underscores"
	}
	if strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_") {
		return false, "Username cannot start or end with underscore"
	}
	lowered := strings.ToLower(username)
	for _, reserved := range reservedUsernames {
		if lowered == reserved {
			return false, "Username is reserved. Please choose another"
		}
	}
	return true, ""
}
